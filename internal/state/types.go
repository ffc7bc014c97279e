package state

import (
	"time"

	"github.com/five82/ticontrol/internal/device"
)

// Field identifies an editable set-point.
type Field int

const (
	FieldVoltage Field = iota
	FieldCurrent
)

// Fields lists the editable set-points in display order.
var Fields = [...]Field{FieldVoltage, FieldCurrent}

func (f Field) String() string {
	switch f {
	case FieldVoltage:
		return "voltage"
	case FieldCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// Valid reports whether f names a known field.
func (f Field) Valid() bool {
	return f == FieldVoltage || f == FieldCurrent
}

// Unit returns the display unit for the field.
func (f Field) Unit() string {
	if f == FieldCurrent {
		return "A"
	}
	return "V"
}

// Range returns the closed interval of accepted values.
func (f Field) Range() (lo, hi float64) {
	if f == FieldCurrent {
		return device.MinCurrent, device.MaxCurrent
	}
	return device.MinVoltage, device.MaxVoltage
}

// Accepts reports whether v lies within the field's range.
func (f Field) Accepts(v float64) bool {
	lo, hi := f.Range()
	return v >= lo && v <= hi
}

// Phase is the edit state of a single field.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEditing
	// PhaseCommitting is held only while a commit is captured; published
	// views show Idle or Editing.
	PhaseCommitting
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseCommitting:
		return "committing"
	default:
		return "idle"
	}
}

// Snapshot is the last server-confirmed device state. It is a value type and
// is replaced wholesale on every update.
type Snapshot struct {
	Connected        bool
	OutputOn         bool
	LEDPulsed        bool
	LEDShape         [2]int
	ActualVoltage    float64
	ActualCurrent    float64
	SetVoltage       float64
	SetCurrent       float64
	InterlockEngaged bool
	UpdatedAt        time.Time
}

// Actual returns the measured value backing f.
func (s Snapshot) Actual(f Field) float64 {
	if f == FieldCurrent {
		return s.ActualCurrent
	}
	return s.ActualVoltage
}

// SetPoint returns the confirmed set-point for f.
func (s Snapshot) SetPoint(f Field) float64 {
	if f == FieldCurrent {
		return s.SetCurrent
	}
	return s.SetVoltage
}

// PendingEdit is the operator's unconfirmed input for one field.
type PendingEdit struct {
	Field  Field
	Value  float64
	Active bool
}

// FieldView is the presentation state of one editable field.
type FieldView struct {
	Field   Field
	Phase   Phase
	Pending PendingEdit
	// Display is the pending value while editing, otherwise the snapshot's actual value.
	Display  float64
	SetPoint float64
	Enabled  bool
}

// Locked reports whether incoming snapshots are held off this field.
func (v FieldView) Locked() bool {
	return v.Phase != PhaseIdle
}

// InterlockPrompt is the pending "reset interlock?" question.
type InterlockPrompt struct {
	Open       bool
	TimeToTrip time.Duration // zero when unknown
	RaisedAt   time.Time
}

// View is the merged, immutable state handed to the presentation layer.
type View struct {
	Snapshot Snapshot
	Voltage  FieldView
	Current  FieldView
	Prompt   InterlockPrompt
	// PushConnected reflects the push channel itself, independent of Snapshot.Connected.
	PushConnected bool
	Revision      uint64
}

// Field returns the view for f.
func (v View) Field(f Field) FieldView {
	if f == FieldCurrent {
		return v.Current
	}
	return v.Voltage
}
