package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	ToggleLogs key.Binding

	// Set-point inputs
	NextField key.Binding
	PrevField key.Binding
	Commit    key.Binding
	Leave     key.Binding

	// Device actions
	ToggleOutput    key.Binding
	ToggleInterlock key.Binding
	ResetInterlock  key.Binding
	Confirm         key.Binding
	Decline         key.Binding

	// Log pane
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle log pane"),
		),

		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Edit next set-point"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Edit previous set-point"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Apply set-point"),
		),
		Leave: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Apply and leave field"),
		),

		ToggleOutput: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Toggle output"),
		),
		ToggleInterlock: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Toggle interlock"),
		),
		ResetInterlock: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reset interlock"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Confirm reset"),
		),
		Decline: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Decline (output off)"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "Page down"),
		),
	}
}

// ShortHelp returns key bindings for the command bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.ToggleOutput, k.ToggleInterlock, k.ResetInterlock, k.ToggleLogs, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.PrevField, k.Commit, k.Leave},
		{k.ToggleOutput, k.ToggleInterlock, k.ResetInterlock, k.Confirm, k.Decline},
		{k.ToggleLogs, k.Up, k.Down, k.PageUp, k.PageDown},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
