package control

import (
	"context"
	"time"

	"github.com/five82/ticontrol/internal/device"
	"github.com/five82/ticontrol/internal/logging"
	"github.com/five82/ticontrol/internal/state"
)

const defaultInboxSize = 64

// input is one unit of work for the run loop. applied, when set, is closed
// once the resulting view has been published.
type input struct {
	apply   func(*Controller)
	applied chan struct{}
}

// Runner serialises every input to a Controller on one goroutine. Transport
// callbacks and UI intents post into its inbox from any goroutine; after each
// input the merged View is written to the Store and offered on Updates.
type Runner struct {
	ctrl    *Controller
	store   *state.Store
	logger  *logging.Logger
	inbox   chan input
	updates chan state.View
	done    chan struct{}
}

// NewRunner wraps ctrl. store may be nil when only Updates is consumed.
func NewRunner(ctrl *Controller, store *state.Store, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	if store == nil {
		store = &state.Store{}
	}
	return &Runner{
		ctrl:    ctrl,
		store:   store,
		logger:  logger.With("component", "runner"),
		inbox:   make(chan input, defaultInboxSize),
		updates: make(chan state.View, 1),
		done:    make(chan struct{}),
	}
}

// Run applies posted inputs until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)
	r.publish()
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("runner stopped", "reason", ctx.Err())
			return
		case in := <-r.inbox:
			if in.apply != nil {
				in.apply(r.ctrl)
			}
			r.publish()
			if in.applied != nil {
				close(in.applied)
			}
		}
	}
}

// Updates delivers the latest View. Intermediate views may be skipped when
// the reader falls behind; the most recent one is always delivered.
func (r *Runner) Updates() <-chan state.View {
	return r.updates
}

// Store returns the store the runner publishes into.
func (r *Runner) Store() *state.Store {
	return r.store
}

func (r *Runner) publish() {
	v := r.ctrl.View()
	r.store.Update(v)
	select {
	case <-r.updates:
	default:
	}
	r.updates <- v
}

// post enqueues fn. After Run has returned, inputs are dropped.
func (r *Runner) post(fn func(*Controller)) {
	select {
	case r.inbox <- input{apply: fn}:
	case <-r.done:
	}
}

// Focus posts a focus intent for f.
func (r *Runner) Focus(f state.Field) {
	r.post(func(c *Controller) { c.Focus(f) })
}

// Change posts an input change for f.
func (r *Runner) Change(f state.Field, v float64) {
	r.post(func(c *Controller) { c.Change(f, v) })
}

// Blur posts the commit of f.
func (r *Runner) Blur(f state.Field) {
	r.post(func(c *Controller) { c.Blur(f) })
}

// ToggleOutput posts an output toggle.
func (r *Runner) ToggleOutput() {
	r.post(func(c *Controller) { c.ToggleOutput() })
}

// ToggleInterlock posts an interlock toggle.
func (r *Runner) ToggleInterlock() {
	r.post(func(c *Controller) { c.ToggleInterlock() })
}

// RequestInterlockReset opens the reset prompt.
func (r *Runner) RequestInterlockReset() {
	r.post(func(c *Controller) { c.RequestInterlockReset(0) })
}

// ResolveInterlockReset answers the reset prompt.
func (r *Runner) ResolveInterlockReset(confirmed bool) {
	r.post(func(c *Controller) { c.ResolveInterlockReset(confirmed) })
}

// HandleEvent posts a device state event.
func (r *Runner) HandleEvent(ev device.Event) {
	r.post(func(c *Controller) { c.HandleEvent(ev) })
}

// HandleInterlockWarning posts an interlock warning event.
func (r *Runner) HandleInterlockWarning(ev device.Event) {
	r.post(func(c *Controller) { c.HandleInterlockWarning(ev) })
}

// SetPushConnected posts a push channel lifecycle change.
func (r *Runner) SetPushConnected(up bool) {
	r.post(func(c *Controller) { c.SetPushConnected(up) })
}

// Sync blocks until every input posted before it has been applied and
// published, or ctx ends.
func (r *Runner) Sync(ctx context.Context) error {
	applied := make(chan struct{})
	select {
	case r.inbox <- input{applied: applied}:
	case <-r.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-applied:
		return nil
	case <-r.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SyncTimeout is Sync with a deadline.
func (r *Runner) SyncTimeout(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return r.Sync(ctx)
}
