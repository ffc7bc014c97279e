package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ticontrol/internal/state"
)

const labelWidth = 10

// renderDevice renders the set-point inputs and the LED readouts.
func (m Model) renderDevice() string {
	styles := m.theme.Styles()

	var b strings.Builder
	for i, f := range state.Fields {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderField(f, styles))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLED(styles))

	panel := styles.Panel
	if m.focus != noFocus {
		panel = styles.PanelFocus
	}
	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return panel.Width(width).Render(b.String())
}

func (m Model) renderField(f state.Field, styles Styles) string {
	fv := m.view.Field(f)
	label := styles.MutedText.Width(labelWidth).Render(fieldLabel(f))

	var box string
	switch {
	case int(f) == m.focus:
		box = lipgloss.NewStyle().
			Background(lipgloss.Color(m.theme.FocusBg)).
			Foreground(lipgloss.Color(m.theme.Text)).
			Render(m.inputs[f].View())
	case !fv.Enabled:
		box = styles.FaintText.Render(padRight(m.inputs[f].Value(), m.inputs[f].Width))
	default:
		box = styles.Text.Bold(true).Render(padRight(m.inputs[f].Value(), m.inputs[f].Width))
	}
	unit := styles.MutedText.Render(f.Unit())

	lo, hi := f.Range()
	details := []string{
		styles.FaintText.Render("actual") + " " + styles.Text.Render(formatReading(m.view.Snapshot.Actual(f), f)),
		styles.FaintText.Render("set") + " " + styles.Text.Render(formatReading(fv.SetPoint, f)),
		styles.FaintText.Render(fmt.Sprintf("[%s–%s]", formatValue(lo), formatValue(hi))),
	}
	if tag := m.phaseTag(fv, styles); tag != "" {
		details = append(details, tag)
	}
	return label + box + " " + unit + "   " + strings.Join(details, "  ")
}

func (m Model) phaseTag(fv state.FieldView, styles Styles) string {
	switch {
	case fv.Locked() && !fv.Enabled:
		return styles.WarningText.Render("held (offline)")
	case fv.Phase == state.PhaseEditing:
		return styles.AccentText.Render("editing")
	default:
		return ""
	}
}

func (m Model) renderLED(styles Styles) string {
	snap := m.view.Snapshot
	mode := "continuous"
	if snap.LEDPulsed {
		mode = "pulsed"
	}
	line := styles.MutedText.Width(labelWidth).Render("LED") +
		styles.Text.Render(mode)
	if snap.LEDPulsed || snap.LEDShape != [2]int{} {
		line += "  " + styles.FaintText.Render("shape") + " " +
			styles.Text.Render(fmt.Sprintf("%d ms on / %d ms off", snap.LEDShape[0], snap.LEDShape[1]))
	}
	return line
}

// renderPrompt renders the interlock reset question.
func (m Model) renderPrompt() string {
	styles := m.theme.Styles()
	p := m.view.Prompt

	var b strings.Builder
	b.WriteString(styles.WarningText.Bold(true).Render("Reset interlock?"))
	if p.TimeToTrip > 0 {
		remaining := p.TimeToTrip - m.now.Sub(p.RaisedAt)
		if remaining < 0 {
			remaining = 0
		}
		b.WriteString("  ")
		b.WriteString(styles.Text.Render("trips in " + formatCountdown(remaining)))
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("y reset the interlock timer   n switch the output off"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Warning)).
		Padding(0, 1)
	return box.Render(b.String())
}

func fieldLabel(f state.Field) string {
	switch f {
	case state.FieldVoltage:
		return "Voltage"
	case state.FieldCurrent:
		return "Current"
	default:
		return f.String()
	}
}

func formatReading(v float64, f state.Field) string {
	return fmt.Sprintf("%.2f %s", v, f.Unit())
}

func formatCountdown(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
