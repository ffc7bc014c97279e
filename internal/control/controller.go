package control

import (
	"time"

	"github.com/five82/ticontrol/internal/device"
	"github.com/five82/ticontrol/internal/logging"
	"github.com/five82/ticontrol/internal/state"
)

// Dispatcher sends commands without waiting for their outcome.
// Implementations must not block the caller.
type Dispatcher interface {
	Dispatch(cmd device.Command)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(cmd device.Command)

// Dispatch calls f(cmd).
func (f DispatcherFunc) Dispatch(cmd device.Command) { f(cmd) }

type fieldState struct {
	phase   state.Phase
	pending float64
}

// Controller owns the client-side view of the device: the confirmed
// snapshot, the per-field edit state machines and the interlock prompt.
//
// Controller is not safe for concurrent use. Drive it from a single
// goroutine; Runner does that for the application.
type Controller struct {
	snapshot      state.Snapshot
	fields        [len(state.Fields)]fieldState
	prompt        state.InterlockPrompt
	pushConnected bool
	revision      uint64

	dispatcher Dispatcher
	logger     *logging.Logger
	now        func() time.Time
}

// New creates a Controller with an empty, disconnected snapshot.
func New(dispatcher Dispatcher, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		dispatcher: dispatcher,
		logger:     logger.With("component", "controller"),
		now:        time.Now,
	}
}

// Focus starts editing f with the currently displayed value. It is refused
// while the device is disconnected (the input is disabled) and is a no-op
// when f is already being edited.
func (c *Controller) Focus(f state.Field) bool {
	if !f.Valid() {
		return false
	}
	fs := &c.fields[f]
	if fs.phase != state.PhaseIdle || !c.snapshot.Connected {
		return false
	}
	fs.pending = c.snapshot.Actual(f)
	fs.phase = state.PhaseEditing
	c.logger.Debug("edit started", "field", f, "value", fs.pending)
	return true
}

// Change updates the pending value of f. Values outside the field's range
// are dropped silently, as are changes while disconnected.
func (c *Controller) Change(f state.Field, v float64) bool {
	if !f.Valid() {
		return false
	}
	fs := &c.fields[f]
	if fs.phase != state.PhaseEditing || !c.snapshot.Connected {
		return false
	}
	if !f.Accepts(v) {
		return false
	}
	fs.pending = v
	return true
}

// Blur commits the pending value of f. The lock is released before the
// command is dispatched so the next push event is adopted immediately.
func (c *Controller) Blur(f state.Field) bool {
	if !f.Valid() {
		return false
	}
	fs := &c.fields[f]
	if fs.phase != state.PhaseEditing {
		return false
	}

	// Committing lasts only for the body of Blur: the value is captured and
	// the lock released before the command leaves, so no View ever shows it.
	fs.phase = state.PhaseCommitting
	cmd := setPointCommand(f, fs.pending)

	fs.phase = state.PhaseIdle
	fs.pending = 0

	c.logger.Debug("edit committed", "field", f, "command", cmd.Path())
	c.dispatch(cmd)
	return true
}

// ToggleOutput requests the inverse of the last confirmed output state.
// Nothing changes locally; the next snapshot shows the result.
func (c *Controller) ToggleOutput() bool {
	if !c.snapshot.Connected {
		return false
	}
	c.dispatch(device.Power(!c.snapshot.OutputOn))
	return true
}

// ToggleInterlock requests the inverse of the last confirmed interlock state.
func (c *Controller) ToggleInterlock() bool {
	if !c.snapshot.Connected {
		return false
	}
	c.dispatch(device.ToggleInterlock(!c.snapshot.InterlockEngaged))
	return true
}

// RequestInterlockReset opens the reset prompt. timeToTrip may be zero when
// unknown. Re-requesting while open refreshes the countdown.
func (c *Controller) RequestInterlockReset(timeToTrip time.Duration) {
	c.prompt = state.InterlockPrompt{
		Open:       true,
		TimeToTrip: timeToTrip,
		RaisedAt:   c.now(),
	}
}

// ResolveInterlockReset answers the open prompt. Confirming resets the
// interlock; declining switches the output off. Without an open prompt it
// does nothing.
func (c *Controller) ResolveInterlockReset(confirmed bool) bool {
	if !c.prompt.Open {
		return false
	}
	c.prompt = state.InterlockPrompt{}
	if confirmed {
		c.dispatch(device.ResetInterlock())
	} else {
		c.dispatch(device.Power(false))
	}
	return true
}

// HandleEvent reconciles a device state event, live or from the initial fetch.
func (c *Controller) HandleEvent(ev device.Event) {
	wasConnected := c.snapshot.Connected
	c.snapshot = Reconcile(c.snapshot, c.Locks(), ev)
	if ev.Success {
		c.snapshot.UpdatedAt = c.now()
	}
	switch {
	case wasConnected && !c.snapshot.Connected:
		c.logger.Warn("device reported failure", "detail", ev.Text)
	case !wasConnected && c.snapshot.Connected:
		c.logger.Info("device connected")
	}
}

// HandleInterlockWarning reacts to the server's advance warning that the
// interlock is about to trip by opening the reset prompt.
func (c *Controller) HandleInterlockWarning(ev device.Event) {
	if !ev.Success {
		c.HandleEvent(ev)
		return
	}
	var ttt time.Duration
	if n := ev.Message.TimeToTrip; n != nil && n.Float() > 0 {
		ttt = time.Duration(n.Float() * float64(time.Second))
	}
	c.logger.Info("interlock warning", "time_to_trip", ttt)
	c.RequestInterlockReset(ttt)
}

// SetPushConnected records push channel lifecycle changes. Losing the channel
// marks the device disconnected; regaining it does not mark it connected,
// only a successful event does.
func (c *Controller) SetPushConnected(up bool) {
	c.pushConnected = up
	if !up {
		c.HandleEvent(device.Failure())
	}
}

// Locks reports which fields are currently locked.
func (c *Controller) Locks() Locks {
	return Locks{
		Voltage: c.fields[state.FieldVoltage].phase != state.PhaseIdle,
		Current: c.fields[state.FieldCurrent].phase != state.PhaseIdle,
	}
}

// Snapshot returns the confirmed device state.
func (c *Controller) Snapshot() state.Snapshot {
	return c.snapshot
}

// View merges the pending overlay onto the snapshot. Each call returns a
// fresh value with an incremented revision.
func (c *Controller) View() state.View {
	c.revision++
	return state.View{
		Snapshot:      c.snapshot,
		Voltage:       c.fieldView(state.FieldVoltage),
		Current:       c.fieldView(state.FieldCurrent),
		Prompt:        c.prompt,
		PushConnected: c.pushConnected,
		Revision:      c.revision,
	}
}

func (c *Controller) fieldView(f state.Field) state.FieldView {
	fs := c.fields[f]
	active := fs.phase != state.PhaseIdle
	v := state.FieldView{
		Field:    f,
		Phase:    fs.phase,
		Display:  c.snapshot.Actual(f),
		SetPoint: c.snapshot.SetPoint(f),
		Enabled:  c.snapshot.Connected,
	}
	if active {
		v.Pending = state.PendingEdit{Field: f, Value: fs.pending, Active: true}
		v.Display = fs.pending
	}
	return v
}

func (c *Controller) dispatch(cmd device.Command) {
	if c.dispatcher == nil {
		c.logger.Warn("no dispatcher, command dropped", "command", cmd.Path())
		return
	}
	c.dispatcher.Dispatch(cmd)
}

func setPointCommand(f state.Field, v float64) device.Command {
	if f == state.FieldCurrent {
		return device.SetCurrent(v)
	}
	return device.SetVoltage(v)
}
