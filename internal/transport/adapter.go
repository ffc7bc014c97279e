package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/five82/ticontrol/internal/device"
	"github.com/five82/ticontrol/internal/logging"
)

// Handler receives a decoded push event.
type Handler func(ev device.Event)

// PushHandlers are the callbacks a PushChannel drives. Frame is called from a
// single goroutine per channel, in arrival order.
type PushHandlers struct {
	Frame func(event string, data []byte)
	Up    func()
	Down  func(err error)
}

// PushChannel delivers server-initiated events until ctx is cancelled.
type PushChannel interface {
	Run(ctx context.Context, h PushHandlers) error
}

// Adapter combines the push channel and the command channel behind one API.
//
// Handlers registered with Subscribe run on the push channel's goroutine and
// must not block; the application posts them straight into the control loop.
type Adapter struct {
	commander device.Commander
	push      PushChannel
	logger    *logging.Logger

	mu           sync.RWMutex
	handlers     map[string][]Handler
	onConnect    []func()
	onDisconnect []func(error)

	connected atomic.Bool
	inflight  sync.WaitGroup

	queueMu sync.Mutex
	queues  map[string]*commandQueue
}

// commandQueue holds dispatched commands of one name in submission order.
type commandQueue struct {
	pending  []device.Command
	draining bool
}

// New creates an Adapter. push may be nil, in which case only commands work.
func New(commander device.Commander, push PushChannel, logger *logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Adapter{
		commander: commander,
		push:      push,
		logger:    logger.With("component", "transport"),
		handlers:  make(map[string][]Handler),
		queues:    make(map[string]*commandQueue),
	}
}

// Subscribe registers h for the named server event. Handlers for one event
// name are called in registration order for every event.
func (a *Adapter) Subscribe(event string, h Handler) {
	if h == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers[event] = append(a.handlers[event], h)
}

// OnConnect registers fn to run whenever the push channel comes up.
func (a *Adapter) OnConnect(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onConnect = append(a.onConnect, fn)
}

// OnDisconnect registers fn to run whenever the push channel goes down.
func (a *Adapter) OnDisconnect(fn func(error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onDisconnect = append(a.onDisconnect, fn)
}

// Connected reports whether the push channel is currently up.
func (a *Adapter) Connected() bool {
	return a.connected.Load()
}

// Run drives the push channel until ctx is cancelled.
func (a *Adapter) Run(ctx context.Context) error {
	if a.push == nil {
		<-ctx.Done()
		return nil
	}
	err := a.push.Run(ctx, PushHandlers{
		Frame: a.deliver,
		Up:    a.handleUp,
		Down:  a.handleDown,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("push channel: %w", err)
	}
	return nil
}

// Send issues cmd and waits for the reply.
func (a *Adapter) Send(ctx context.Context, cmd device.Command) (device.Event, error) {
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	ev, err := a.commander.Do(ctx, cmd)
	if err != nil {
		a.logger.Warn("command failed", "command", cmd.Path(), "request_id", cmd.ID, "error", err)
		return device.Failure(), err
	}
	if !ev.Success {
		a.logger.Warn("command rejected", "command", cmd.Path(), "request_id", cmd.ID, "detail", ev.Text)
	} else {
		a.logger.Debug("command sent", "command", cmd.Path(), "request_id", cmd.ID)
	}
	return ev, nil
}

// Dispatch sends cmd in the background. The outcome is only logged.
// Commands with the same name reach the server in dispatch order, so a
// later set-point always lands last; different names do not wait on each
// other.
func (a *Adapter) Dispatch(cmd device.Command) {
	a.inflight.Add(1)

	a.queueMu.Lock()
	q := a.queues[cmd.Name]
	if q == nil {
		q = &commandQueue{}
		a.queues[cmd.Name] = q
	}
	q.pending = append(q.pending, cmd)
	start := !q.draining
	q.draining = true
	a.queueMu.Unlock()

	if start {
		go a.drain(q)
	}
}

func (a *Adapter) drain(q *commandQueue) {
	for {
		a.queueMu.Lock()
		if len(q.pending) == 0 {
			q.draining = false
			a.queueMu.Unlock()
			return
		}
		cmd := q.pending[0]
		q.pending = q.pending[1:]
		a.queueMu.Unlock()

		_, _ = a.Send(context.Background(), cmd)
		a.inflight.Done()
	}
}

// Wait blocks until every dispatched command has finished.
func (a *Adapter) Wait() {
	a.inflight.Wait()
}

// Fetch requests a full snapshot. Failures of any kind come back as an
// unsuccessful event so callers can reconcile it like a push.
func (a *Adapter) Fetch(ctx context.Context) device.Event {
	ev, err := a.Send(ctx, device.Get())
	if err != nil {
		return device.Failure()
	}
	return ev
}

func (a *Adapter) deliver(event string, data []byte) {
	a.mu.RLock()
	handlers := a.handlers[event]
	a.mu.RUnlock()
	if len(handlers) == 0 {
		a.logger.Debug("unhandled push event", "event", event)
		return
	}

	ev, err := device.DecodeEvent(data)
	if err != nil {
		a.logger.Warn("malformed push event", "event", event, "error", err)
		ev = device.Failure()
	}
	for _, h := range handlers {
		a.safeCall(event, h, ev)
	}
}

func (a *Adapter) safeCall(event string, h Handler, ev device.Event) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("push handler panic recovered", "event", event, "panic", r)
		}
	}()
	h(ev)
}

func (a *Adapter) handleUp() {
	a.connected.Store(true)
	a.logger.Info("push channel connected")

	a.mu.RLock()
	callbacks := append([]func(){}, a.onConnect...)
	a.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
}

func (a *Adapter) handleDown(err error) {
	a.connected.Store(false)
	a.logger.Warn("push channel disconnected", "error", err)

	a.mu.RLock()
	callbacks := append([]func(error){}, a.onDisconnect...)
	a.mu.RUnlock()
	for _, fn := range callbacks {
		fn(err)
	}
}
