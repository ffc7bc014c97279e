package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ticontrol/internal/state"
)

type fakeIntents struct {
	calls []string
}

func (f *fakeIntents) Focus(fd state.Field) { f.calls = append(f.calls, "focus "+fd.String()) }
func (f *fakeIntents) Change(fd state.Field, v float64) {
	f.calls = append(f.calls, fmt.Sprintf("change %s %v", fd, v))
}
func (f *fakeIntents) Blur(fd state.Field) { f.calls = append(f.calls, "blur "+fd.String()) }
func (f *fakeIntents) ToggleOutput() { f.calls = append(f.calls, "toggle output") }
func (f *fakeIntents) ToggleInterlock() { f.calls = append(f.calls, "toggle interlock") }
func (f *fakeIntents) RequestInterlockReset() {
	f.calls = append(f.calls, "request reset")
}
func (f *fakeIntents) ResolveInterlockReset(confirmed bool) {
	f.calls = append(f.calls, fmt.Sprintf("resolve %v", confirmed))
}

func connectedView() state.View {
	return state.View{
		Snapshot: state.Snapshot{Connected: true, ActualVoltage: 0, ActualCurrent: 1.5},
		Voltage:  state.FieldView{Field: state.FieldVoltage, Display: 0, Enabled: true},
		Current:  state.FieldView{Field: state.FieldCurrent, Display: 1.5, Enabled: true},
	}
}

func newTestModel(v state.View) (Model, *fakeIntents) {
	fi := &fakeIntents{}
	m := New(Options{Intents: fi, Initial: v})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), fi
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) []tea.KeyMsg {
	out := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		out = append(out, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return out
}

var (
	keyTab       = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter     = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc       = tea.KeyMsg{Type: tea.KeyEsc}
	keyBackspace = tea.KeyMsg{Type: tea.KeyBackspace}
)

func assertCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %q, want %q", got, want)
		}
	}
}

func TestModelEditVoltage(t *testing.T) {
	m, fi := newTestModel(connectedView())

	m = press(t, m, keyTab, keyBackspace)
	m = press(t, m, runes("36")...)
	m = press(t, m, runes("0")...) // 360 is out of range
	if got := m.inputs[state.FieldVoltage].Value(); got != "36" {
		t.Fatalf("input = %q, want 36", got)
	}
	m = press(t, m, keyEnter)

	assertCalls(t, fi.calls, []string{
		"focus voltage",
		"change voltage 3",
		"change voltage 36",
		"blur voltage",
	})
	if m.focus != noFocus {
		t.Fatalf("focus = %d, want none after enter", m.focus)
	}
}

func TestModelRejectsNonNumericInput(t *testing.T) {
	m, fi := newTestModel(connectedView())
	m = press(t, m, keyTab)
	m = press(t, m, runes("x.")...)
	m = press(t, m, keyEsc)

	if got := m.inputs[state.FieldVoltage].Value(); got != "0." && got != "0" {
		t.Fatalf("input = %q, want 0 or 0.", got)
	}
	for _, c := range fi.calls {
		if strings.HasPrefix(c, "change") && c != "change voltage 0" {
			t.Fatalf("unexpected change call %q", c)
		}
	}
	if last := fi.calls[len(fi.calls)-1]; last != "blur voltage" {
		t.Fatalf("last call = %q, want blur voltage", last)
	}
}

func TestModelTabMovesBetweenFields(t *testing.T) {
	m, fi := newTestModel(connectedView())
	m = press(t, m, keyTab, keyTab, keyTab)

	assertCalls(t, fi.calls, []string{
		"focus voltage",
		"blur voltage",
		"focus current",
		"blur current",
		"focus voltage",
	})
	if got := m.inputs[state.FieldCurrent].Value(); got != "1.5" {
		t.Fatalf("current input = %q, want 1.5", got)
	}
}

func TestModelDisconnectedIgnoresControls(t *testing.T) {
	m, fi := newTestModel(state.View{})
	m = press(t, m, keyTab)
	m = press(t, m, runes("oi")...)

	if m.focus != noFocus {
		t.Fatalf("focused a disabled field")
	}
	if len(fi.calls) != 0 {
		t.Fatalf("calls = %q, want none while disconnected", fi.calls)
	}
}

func TestModelToggles(t *testing.T) {
	m, fi := newTestModel(connectedView())
	press(t, m, runes("oir")...)
	assertCalls(t, fi.calls, []string{"toggle output", "toggle interlock", "request reset"})
}

func TestModelInterlockPrompt(t *testing.T) {
	v := connectedView()
	v.Prompt = state.InterlockPrompt{Open: true, TimeToTrip: 10 * time.Minute, RaisedAt: time.Now()}
	m, fi := newTestModel(v)

	if out := m.View(); !strings.Contains(out, "Reset interlock?") {
		t.Fatalf("prompt not rendered:\n%s", out)
	}
	press(t, m, runes("n")...)
	press(t, m, runes("y")...)
	assertCalls(t, fi.calls, []string{"resolve false", "resolve true"})
}

func TestModelViewUpdatesIdleInputsOnly(t *testing.T) {
	m, _ := newTestModel(connectedView())
	m = press(t, m, keyTab, keyBackspace)
	m = press(t, m, runes("12")...)

	v := connectedView()
	v.Voltage.Display = 30
	v.Voltage.Phase = state.PhaseEditing
	v.Current.Display = 2.25
	next, cmd := m.Update(viewMsg(v))
	m = next.(Model)

	if got := m.inputs[state.FieldVoltage].Value(); got != "12" {
		t.Fatalf("voltage input = %q, want 12 while typing", got)
	}
	if got := m.inputs[state.FieldCurrent].Value(); got != "2.25" {
		t.Fatalf("current input = %q, want 2.25", got)
	}
	if cmd != nil {
		t.Fatalf("waitForView without updates channel returned a command")
	}
}

func TestModelQuitCommitsActiveEdit(t *testing.T) {
	m, fi := newTestModel(connectedView())
	m = press(t, m, keyTab)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("ctrl+c command is not quit")
	}
	if last := fi.calls[len(fi.calls)-1]; last != "blur voltage" {
		t.Fatalf("last call = %q, want blur voltage", last)
	}
}

func TestModelRendersHeader(t *testing.T) {
	m, _ := newTestModel(state.View{})
	out := m.View()
	for _, want := range []string{"ticontrol", "DISCONNECTED", "Voltage", "Current"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q:\n%s", want, out)
		}
	}

	m, _ = newTestModel(connectedView())
	out = m.View()
	if !strings.Contains(out, "CONNECTED") || !strings.Contains(out, "OUTPUT OFF") {
		t.Fatalf("View() missing connected badges:\n%s", out)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, ""},
		{5 * time.Second, "5s ago"},
		{3 * time.Minute, "3m ago"},
		{2 * time.Hour, "2h ago"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Fatalf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestParseSetPoint(t *testing.T) {
	tests := []struct {
		field state.Field
		in    string
		ok    bool
	}{
		{state.FieldVoltage, "42", true},
		{state.FieldVoltage, "42.5", false},
		{state.FieldVoltage, "0.", true},
		{state.FieldCurrent, "10", true},
		{state.FieldCurrent, "11", false},
		{state.FieldCurrent, "abc", false},
		{state.FieldCurrent, "-1", false},
	}
	for _, tt := range tests {
		_, err := parseSetPoint(tt.field, tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("parseSetPoint(%s, %q) err = %v, want ok=%v", tt.field, tt.in, err, tt.ok)
		}
	}
}

func TestModelDropsFocusRefusedByController(t *testing.T) {
	m, fi := newTestModel(connectedView())
	m = press(t, m, keyTab)
	if m.focus != int(state.FieldVoltage) {
		t.Fatalf("focus = %d, want voltage", m.focus)
	}

	// A disconnect reached the controller before the focus did.
	next, _ := m.Update(viewMsg(state.View{}))
	m = next.(Model)
	if m.focus != noFocus {
		t.Fatalf("focus = %d, want none after the controller refused it", m.focus)
	}

	m = press(t, m, runes("5")...)
	for _, c := range fi.calls {
		if strings.HasPrefix(c, "change") {
			t.Fatalf("unexpected %q after focus was dropped", c)
		}
	}
}

func TestModelKeepsHeldEditWhileDisconnected(t *testing.T) {
	m, _ := newTestModel(connectedView())
	m = press(t, m, keyTab)

	v := state.View{}
	v.Voltage = state.FieldView{
		Field:   state.FieldVoltage,
		Phase:   state.PhaseEditing,
		Pending: state.PendingEdit{Field: state.FieldVoltage, Value: 7, Active: true},
		Display: 7,
	}
	next, _ := m.Update(viewMsg(v))
	m = next.(Model)
	if m.focus != int(state.FieldVoltage) {
		t.Fatalf("focus = %d, want voltage kept while the edit is held", m.focus)
	}
}

func TestModelSeedsFromControllerPending(t *testing.T) {
	m, _ := newTestModel(connectedView())
	m = press(t, m, keyTab)
	if got := m.inputs[state.FieldVoltage].Value(); got != "0" {
		t.Fatalf("input = %q, want 0 before confirmation", got)
	}

	v := connectedView()
	v.Voltage.Phase = state.PhaseEditing
	v.Voltage.Pending = state.PendingEdit{Field: state.FieldVoltage, Value: 24, Active: true}
	v.Voltage.Display = 24
	next, _ := m.Update(viewMsg(v))
	m = next.(Model)

	if got := m.inputs[state.FieldVoltage].Value(); got != "24" {
		t.Fatalf("input = %q, want controller seed 24", got)
	}
}

func TestModelHelpListsThemes(t *testing.T) {
	m, _ := newTestModel(state.View{})
	m = press(t, m, runes("?")...)
	out := m.View()
	for _, name := range ThemeNames() {
		if !strings.Contains(out, name) {
			t.Fatalf("help missing theme %q:\n%s", name, out)
		}
	}
	m = press(t, m, keyEsc)
	if m.showHelp {
		t.Fatalf("help still open after a key press")
	}
}
