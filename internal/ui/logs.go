package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ticontrol/internal/logtail"
)

// logPaneHeight is the number of log lines shown below the device panel.
const logPaneHeight = 10

// logState holds all log-related state.
type logState struct {
	rawLines []string
	follow   bool
	err      error
}

type logBatchMsg struct {
	lines []string
}

type logErrorMsg struct {
	err error
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(m.width-4, logPaneHeight)
	m.logState.follow = true
}

func (m *Model) resizeLogViewport() {
	if !m.ready {
		return
	}
	m.logViewport.Width = max(m.width-4, 10)
	m.logViewport.Height = logPaneHeight
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// refreshLogs reads the tail of the log file off the update loop.
func (m Model) refreshLogs() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logBatchMsg{}
		}
		lines, err := logtail.Read(path, logTailLines)
		if err != nil {
			return logErrorMsg{err: err}
		}
		return logBatchMsg{lines: lines}
	}
}

func (m *Model) handleLogBatch(msg logBatchMsg) {
	m.logState.err = nil
	m.logState.rawLines = msg.lines
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// handleLogsKey scrolls the log pane. Scrolling up pauses follow mode;
// reaching the bottom resumes it.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.logViewport.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.ViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.ViewDown()
	default:
		return m, nil
	}
	m.logState.follow = m.logViewport.AtBottom()
	return m, nil
}

// renderLogs renders the log pane with its status line.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Width(max(m.width-2, 12)).
		Render(m.logViewport.View())

	follow := "off"
	if m.logState.follow {
		follow = "on"
	}
	status := fmt.Sprintf("log %d lines  follow %s", len(m.logState.rawLines), follow)
	if m.logPath != "" {
		status += "  " + truncateMiddle(m.logPath, 50)
	}
	if m.logState.err != nil {
		status += "  " + styles.DangerText.Render(m.logState.err.Error())
	}
	return box + "\n" + styles.FaintText.Render(status)
}

// renderLogContent colors each parsed line by level.
func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if m.logPath == "" {
		return styles.MutedText.Render("Logging to file is disabled")
	}
	if len(m.logState.rawLines) == 0 {
		return styles.MutedText.Render("No log output yet")
	}

	width := m.logViewport.Width
	lines := make([]string, 0, len(m.logState.rawLines))
	for _, raw := range m.logState.rawLines {
		rec, ok := logtail.Parse(raw)
		if !ok {
			lines = append(lines, styles.Text.Render(truncate(raw, width)))
			continue
		}
		level := levelStyle(rec.Level, styles).Width(6).Render(rec.Level)
		lines = append(lines, level+styles.Text.Render(truncate(rec.Summary(), width-6)))
	}
	return strings.Join(lines, "\n")
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "ERROR":
		return styles.DangerText
	case "WARN":
		return styles.WarningText.Bold(true)
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.SuccessText
	}
}
