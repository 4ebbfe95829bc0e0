package telemetry

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

type Counter struct {
	val atomic.Int64
}

func (c *Counter) Inc()         { c.val.Add(1) }
func (c *Counter) Add(n int64)  { c.val.Add(n) }
func (c *Counter) Value() int64 { return c.val.Load() }

type Gauge struct {
	val atomic.Int64
}

func (g *Gauge) Set(v int64)  { g.val.Store(v) }
func (g *Gauge) Inc()         { g.val.Add(1) }
func (g *Gauge) Dec()         { g.val.Add(-1) }
func (g *Gauge) Value() int64 { return g.val.Load() }

// LatencyTracker keeps the most recent maxKeep samples.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	maxKeep int
}

func NewLatencyTracker(maxKeep int) *LatencyTracker {
	return &LatencyTracker{maxKeep: maxKeep}
}

func (lt *LatencyTracker) Record(d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.samples = append(lt.samples, d)
	if len(lt.samples) > lt.maxKeep {
		lt.samples = lt.samples[len(lt.samples)-lt.maxKeep:]
	}
}

// Since records the time elapsed from start. Meant for defer.
func (lt *LatencyTracker) Since(start time.Time) { lt.Record(time.Since(start)) }

func (lt *LatencyTracker) Count() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return len(lt.samples)
}

func (lt *LatencyTracker) P50() time.Duration { return lt.percentile(0.50) }
func (lt *LatencyTracker) P99() time.Duration { return lt.percentile(0.99) }

func (lt *LatencyTracker) percentile(p float64) time.Duration {
	lt.mu.Lock()
	sorted := slices.Clone(lt.samples)
	lt.mu.Unlock()
	if len(sorted) == 0 {
		return 0
	}
	slices.Sort(sorted)
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// Metrics is the global metrics registry.
var Metrics = struct {
	TrialsSimulated  Counter
	RunsCompleted    Counter
	RunErrors        Counter
	StatsFetches     Counter
	StatsFetchErrors Counter
	ActiveWatchers   Gauge
	RunLatency       *LatencyTracker
	FetchLatency     *LatencyTracker
}{
	RunLatency:   NewLatencyTracker(500),
	FetchLatency: NewLatencyTracker(500),
}

// Summary renders the registry as a single log line.
func Summary() string {
	m := &Metrics
	return fmt.Sprintf("runs=%d run_errors=%d trials=%d fetches=%d fetch_errors=%d watchers=%d run_p50=%s fetch_p50=%s",
		m.RunsCompleted.Value(), m.RunErrors.Value(), m.TrialsSimulated.Value(),
		m.StatsFetches.Value(), m.StatsFetchErrors.Value(), m.ActiveWatchers.Value(),
		m.RunLatency.P50().Round(time.Millisecond), m.FetchLatency.P50().Round(time.Millisecond))
}
