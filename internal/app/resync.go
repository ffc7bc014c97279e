package app

import (
	"context"
	"time"

	"github.com/five82/ticontrol/internal/device"
	"github.com/five82/ticontrol/internal/logging"
)

const fetchTimeout = 5 * time.Second

// Fetcher requests a full device snapshot. Failures come back as an
// unsuccessful event.
type Fetcher interface {
	Fetch(ctx context.Context) device.Event
}

// Resyncer pulls a full snapshot on demand and, optionally, at a fixed
// cadence. Requests that arrive while a fetch is running collapse into one.
type Resyncer struct {
	fetcher  Fetcher
	deliver  func(device.Event)
	interval time.Duration
	trigger  chan struct{}
	logger   *logging.Logger
}

// NewResyncer creates a Resyncer. An interval of zero disables periodic
// fetches; Trigger still works.
func NewResyncer(fetcher Fetcher, deliver func(device.Event), interval time.Duration, logger *logging.Logger) *Resyncer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Resyncer{
		fetcher:  fetcher,
		deliver:  deliver,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		logger:   logger.With("component", "resync"),
	}
}

// Trigger requests a fetch. It never blocks.
func (r *Resyncer) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run serves fetch requests until ctx is cancelled.
func (r *Resyncer) Run(ctx context.Context) {
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.trigger:
		case <-tick:
		}
		r.refresh(ctx)
	}
}

// refresh fetches once and delivers the result unless ctx ended meanwhile.
func (r *Resyncer) refresh(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	ev := r.fetcher.Fetch(fetchCtx)
	if ctx.Err() != nil {
		return
	}
	if !ev.Success {
		r.logger.Warn("resync failed")
	}
	r.deliver(ev)
}
