package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: connection, output and interlock
// badges plus the age of the last confirmed update.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	snap := m.view.Snapshot

	parts := []string{bg.Render("ticontrol", styles.Logo)}
	if m.width >= 80 && m.version != "" {
		parts = append(parts, bg.Render(m.version, styles.FaintText))
	}

	if snap.Connected {
		parts = append(parts, bg.Render("● CONNECTED", styles.SuccessText))
	} else {
		parts = append(parts, bg.Render("● DISCONNECTED", styles.DangerText))
	}

	if snap.Connected {
		if snap.OutputOn {
			parts = append(parts, styles.Badge(m.theme.Success).Render("OUTPUT ON"))
		} else {
			parts = append(parts, styles.Badge(m.theme.Muted).Render("OUTPUT OFF"))
		}
		if snap.InterlockEngaged {
			parts = append(parts, styles.Badge(m.theme.Warning).Render("INTERLOCK"))
		} else {
			parts = append(parts, styles.Badge(m.theme.Muted).Render("INTERLOCK OFF"))
		}
	}

	if !m.view.PushConnected {
		parts = append(parts, bg.Render("push offline", styles.WarningText))
	}

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if m.width >= 100 && m.api != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.api, 40), styles.FaintText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// formatTimestamp formats the last update time with relative indicator.
func (m Model) formatTimestamp() string {
	updated := m.view.Snapshot.UpdatedAt
	if updated.IsZero() {
		return ""
	}
	timeStr := updated.Format("15:04:05")
	if age := formatAge(m.now.Sub(updated)); age != "" {
		return timeStr + " (" + age + ")"
	}
	return timeStr
}

// formatAge renders how long ago something happened; empty under a second.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return ""
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

// renderCommandBar renders the short key help line.
func (m Model) renderCommandBar() string {
	h := m.help
	h.Width = m.width - 2
	return m.theme.Styles().Footer.Width(m.width).Render(h.ShortHelpView(m.keys.ShortHelp()))
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

func truncateMiddle(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 5 {
		return truncate(s, max)
	}
	head := (max - 1) / 2
	tail := max - 1 - head
	return string(r[:head]) + "…" + strings.TrimSpace(string(r[len(r)-tail:]))
}
