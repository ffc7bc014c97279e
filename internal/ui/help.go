package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// newHelp builds the help renderer styled for t.
func newHelp(t Theme) help.Model {
	h := help.New()
	h.ShortSeparator = " • "
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning))
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning))
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text))
	h.Styles.FullSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
	h.Styles.Ellipsis = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
	return h
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	h := m.help
	h.ShowAll = true
	h.FullSeparator = "   "
	b.WriteString(h.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("Set-points: voltage 0–42 V, current 0–10 A."))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Themes: " + strings.Join(ThemeNames(), ", ") + " (current " + m.theme.Name + ")."))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Any key closes this help."))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
