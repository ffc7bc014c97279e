package control

import (
	"github.com/five82/ticontrol/internal/device"
	"github.com/five82/ticontrol/internal/state"
)

// Locks records which fields are currently held by an operator edit.
type Locks struct {
	Voltage bool
	Current bool
}

// Held reports whether f is locked.
func (l Locks) Held(f state.Field) bool {
	if f == state.FieldCurrent {
		return l.Current
	}
	return l.Voltage
}

// Reconcile folds ev into cur and returns the new snapshot.
//
// A failed event only clears Connected. A successful event marks the device
// connected and copies every field present in the message, except the
// voltage or current values of a locked field; those keep their current
// value until a later event arrives after the lock is released. The initial
// fetch and live pushes both go through here.
func Reconcile(cur state.Snapshot, locks Locks, ev device.Event) state.Snapshot {
	next := cur
	if !ev.Success {
		next.Connected = false
		return next
	}
	next.Connected = true

	m := ev.Message
	if on, ok := m.OutputState(); ok {
		next.OutputOn = on
	}
	if m.LEDPulsed != nil {
		next.LEDPulsed = bool(*m.LEDPulsed)
	}
	if m.LEDShape != nil {
		next.LEDShape = [2]int(*m.LEDShape)
	}
	if m.Interlock != nil {
		next.InterlockEngaged = bool(*m.Interlock)
	}

	if !locks.Held(state.FieldVoltage) {
		copyNumber(&next.ActualVoltage, m.ActualVoltage)
		copyNumber(&next.SetVoltage, m.SetVoltage)
	}
	if !locks.Held(state.FieldCurrent) {
		copyNumber(&next.ActualCurrent, m.ActualCurrent)
		copyNumber(&next.SetCurrent, m.SetCurrent)
	}
	return next
}

func copyNumber(dst *float64, src *device.Number) {
	if src != nil {
		*dst = src.Float()
	}
}
