package ui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ticontrol/internal/state"
)

const (
	defaultTick  = time.Second
	logTailLines = 200
	noFocus      = -1
)

var (
	errInvalidNumber = errors.New("not a number")
	errOutOfRange    = errors.New("out of range")
)

// Intents is what the UI asks of the controller. Every call returns
// immediately; results arrive as new views.
type Intents interface {
	Focus(f state.Field)
	Change(f state.Field, v float64)
	Blur(f state.Field)
	ToggleOutput()
	ToggleInterlock()
	RequestInterlockReset()
	ResolveInterlockReset(confirmed bool)
}

// Options configures the UI.
type Options struct {
	Intents   Intents
	Updates   <-chan state.View
	Initial   state.View
	ThemeName string
	LogPath   string
	API       string
	Version   string
	Tick      time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	intents Intents
	updates <-chan state.View
	logPath string
	api     string
	version string
	tick    time.Duration

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	width    int
	height   int
	ready    bool
	showHelp bool
	showLogs bool
	now      time.Time

	// Data state
	view state.View

	// Set-point inputs, indexed by state.Field
	inputs [len(state.Fields)]textinput.Model
	focus  int
	// focusConfirmed is set once a view shows the controller editing the
	// focused field; edited once a Change has been sent for it.
	focusConfirmed bool
	edited         bool

	// Log pane
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = defaultThemeName
	}
	theme := GetTheme(themeName)

	m := Model{
		intents: opts.Intents,
		updates: opts.Updates,
		logPath: opts.LogPath,
		api:     opts.API,
		version: opts.Version,
		tick:    tick,
		theme:   theme,
		keys:    DefaultKeyMap(),
		help:    newHelp(theme),
		view:    opts.Initial,
		focus:   noFocus,
		now:     time.Now(),
	}
	for _, f := range state.Fields {
		m.inputs[f] = newFieldInput()
	}
	m.syncInputs()
	return m
}

func newFieldInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 7
	ti.Width = 8
	ti.Placeholder = "0"
	return ti
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.tick),
		waitForView(m.updates),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case viewMsg:
		m.view = state.View(msg)
		m.reconcileFocus()
		m.syncInputs()
		return m, waitForView(m.updates)

	case tickMsg:
		m.now = time.Time(msg)
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if m.showLogs && m.logState.follow {
			cmds = append(cmds, m.refreshLogs())
		}
		return m, tea.Batch(cmds...)

	case logBatchMsg:
		m.handleLogBatch(msg)
		return m, nil

	case logErrorMsg:
		m.logState.err = msg.err
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.blurActive()
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.focus != noFocus {
		return m.handleFieldKey(msg)
	}

	if m.view.Prompt.Open {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.intents.ResolveInterlockReset(true)
			return m, nil
		case key.Matches(msg, m.keys.Decline):
			m.intents.ResolveInterlockReset(false)
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.help = newHelp(m.theme)
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = !m.showLogs
		m.resizeLogViewport()
		if m.showLogs {
			m.logState.follow = true
			return m, m.refreshLogs()
		}
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.focusField(state.Fields[0])
		return m, textinput.Blink

	case key.Matches(msg, m.keys.PrevField):
		m.focusField(state.Fields[len(state.Fields)-1])
		return m, textinput.Blink

	case key.Matches(msg, m.keys.ToggleOutput):
		if m.view.Snapshot.Connected {
			m.intents.ToggleOutput()
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleInterlock):
		if m.view.Snapshot.Connected {
			m.intents.ToggleInterlock()
		}
		return m, nil

	case key.Matches(msg, m.keys.ResetInterlock):
		m.intents.RequestInterlockReset()
		return m, nil
	}

	if m.showLogs {
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// handleFieldKey routes keys while a set-point input has focus. Leaving the
// input in any way commits it.
func (m Model) handleFieldKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := state.Field(m.focus)
	switch {
	case key.Matches(msg, m.keys.NextField):
		m.blurActive()
		m.focusField(nextField(f))
		return m, textinput.Blink
	case key.Matches(msg, m.keys.PrevField):
		m.blurActive()
		m.focusField(prevField(f))
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Commit), key.Matches(msg, m.keys.Leave):
		m.blurActive()
		return m, nil
	}

	if !m.view.Field(f).Enabled {
		return m, nil
	}

	before := m.inputs[f].Value()
	var cmd tea.Cmd
	m.inputs[f], cmd = m.inputs[f].Update(msg)
	after := m.inputs[f].Value()
	if after == before || after == "" {
		return m, cmd
	}
	v, err := parseSetPoint(f, after)
	if err != nil {
		// Out of range or not a number: the keystroke never happened.
		m.inputs[f].SetValue(before)
		return m, cmd
	}
	m.intents.Change(f, v)
	m.edited = true
	return m, cmd
}

// focusField starts editing f. Disabled fields cannot take focus.
func (m *Model) focusField(f state.Field) {
	if !m.view.Field(f).Enabled {
		return
	}
	m.focus = int(f)
	m.focusConfirmed = false
	m.edited = false
	m.inputs[f].SetValue(formatValue(m.view.Field(f).Display))
	m.inputs[f].CursorEnd()
	m.inputs[f].Focus()
	m.intents.Focus(f)
}

func (m *Model) blurActive() {
	if m.focus == noFocus {
		return
	}
	f := state.Field(m.focus)
	m.focus = noFocus
	m.inputs[f].Blur()
	m.intents.Blur(f)
}

// reconcileFocus lines the focused input up with the controller. Focus was
// decided on a view that may have been stale: if the field is idle and
// disabled the controller refused it, and once the edit is confirmed an
// untouched input takes the controller's seed.
func (m *Model) reconcileFocus() {
	if m.focus == noFocus {
		return
	}
	f := state.Field(m.focus)
	fv := m.view.Field(f)
	switch {
	case fv.Phase == state.PhaseIdle && !fv.Enabled:
		m.focus = noFocus
		m.focusConfirmed = false
		m.edited = false
		m.inputs[f].Blur()
	case fv.Phase == state.PhaseEditing && !m.focusConfirmed:
		m.focusConfirmed = true
		if !m.edited {
			m.inputs[f].SetValue(formatValue(fv.Pending.Value))
			m.inputs[f].CursorEnd()
		}
	}
}

func nextField(f state.Field) state.Field {
	return state.Fields[(int(f)+1)%len(state.Fields)]
}

func prevField(f state.Field) state.Field {
	return state.Fields[(int(f)+len(state.Fields)-1)%len(state.Fields)]
}

// syncInputs shows the displayed value in every input that is not being typed into.
func (m *Model) syncInputs() {
	for _, f := range state.Fields {
		if int(f) == m.focus {
			continue
		}
		m.inputs[f].SetValue(formatValue(m.view.Field(f).Display))
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderDevice())
	if m.view.Prompt.Open {
		b.WriteString("\n")
		b.WriteString(m.renderPrompt())
	}
	if m.showLogs {
		b.WriteString("\n")
		b.WriteString(m.renderLogs())
	}
	return b.String()
}

// parseSetPoint parses typed text and checks it against the field's range.
func parseSetPoint(f state.Field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errInvalidNumber
	}
	if !f.Accepts(v) {
		return 0, errOutOfRange
	}
	return v, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Messages

type tickMsg time.Time

type viewMsg state.View

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForView(ch <-chan state.View) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return viewMsg(v)
	}
}

// Run starts the Bubble Tea program and blocks until the operator quits or
// the program is killed.
func Run(opts Options, progOpts ...tea.ProgramOption) error {
	m := New(opts)
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	return err
}
