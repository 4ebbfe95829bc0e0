package process

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/core/report"
	"github.com/charleschow/draft-lottery/internal/core/sim"
	"github.com/charleschow/draft-lottery/internal/events"
	"github.com/charleschow/draft-lottery/internal/telemetry"
)

const defaultInterval = time.Hour

// Refresher loads teams, simulates and publishes the outcome on the bus.
// Runs never overlap; a refresh requested while one is in flight runs
// once it finishes.
type Refresher struct {
	source  league.Source
	params  sim.Params
	workers int
	season  string
	bus     *events.Bus

	mu      sync.Mutex
	trigger chan struct{}
	now     func() time.Time
}

func NewRefresher(source league.Source, params sim.Params, workers int, season string, bus *events.Bus) *Refresher {
	r := &Refresher{
		source:  source,
		params:  params,
		workers: max(1, workers),
		season:  season,
		bus:     bus,
		trigger: make(chan struct{}, 1),
		now:     time.Now,
	}
	bus.Subscribe(events.EventRefreshRequested, r.onRefreshRequested)
	return r
}

func (r *Refresher) onRefreshRequested(evt events.Event) error {
	reason := ""
	if rr, ok := evt.Payload.(events.RefreshRequest); ok {
		reason = rr.Reason
	}
	select {
	case r.trigger <- struct{}{}:
		telemetry.Infof("refresh requested (%s)", reason)
	default:
		telemetry.Debugf("refresh already pending, ignoring (%s)", reason)
	}
	return nil
}

// RunOnce performs a single load + simulate cycle and publishes either a
// run_completed or a run_failed event.
func (r *Refresher) RunOnce(ctx context.Context) (*report.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	teams, err := r.source.Load(ctx)
	if err != nil {
		r.fail("load", err)
		return nil, fmt.Errorf("load teams from %s: %w", r.source.Name(), err)
	}

	res, err := sim.RunSharded(ctx, teams, r.params, r.workers)
	if err != nil {
		r.fail("simulate", err)
		return nil, fmt.Errorf("simulate: %w", err)
	}

	doc, err := report.NewDocument(res, teams, report.Options{
		Season:    r.season,
		Source:    r.source.Name(),
		Generated: r.now(),
	})
	if err != nil {
		r.fail("simulate", err)
		return nil, err
	}

	elapsed := time.Since(start)
	r.bus.Publish(events.Event{
		ID:        fmt.Sprintf("run-%d", doc.Generated.UnixNano()),
		Type:      events.EventRunCompleted,
		Season:    r.season,
		Source:    r.source.Name(),
		Timestamp: doc.Generated,
		Payload:   events.RunCompletedEvent{DurationMS: elapsed.Milliseconds(), Document: doc},
	})
	telemetry.Infof("refresh: %d trials from %s in %s (seed=%d)", res.Trials, r.source.Name(), elapsed.Round(time.Millisecond), res.Seed)
	return doc, nil
}

func (r *Refresher) fail(stage string, err error) {
	telemetry.Errorf("refresh %s failed: %v", stage, err)
	r.bus.Publish(events.Event{
		Type:      events.EventRunFailed,
		Season:    r.season,
		Source:    r.source.Name(),
		Timestamp: r.now().UTC(),
		Payload:   events.RunFailedEvent{Stage: stage, Error: err.Error()},
	})
}

// Loop runs immediately, then on every tick of interval and on every
// refresh request, until ctx is cancelled. Failed runs are published and
// retried on the next tick.
func (r *Refresher) Loop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-r.trigger:
		}
	}
}
