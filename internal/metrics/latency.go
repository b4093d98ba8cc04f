// Package metrics tracks catalog fetch latency for the status bar and the
// tree subcommand.
package metrics

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/VividCortex/ewma"
)

// LatencySnapshot is a point-in-time view of one tracker.
type LatencySnapshot struct {
	Calls    uint64
	Failures uint64
	Average  time.Duration // exponentially weighted moving average
	Last     time.Duration
	Max      time.Duration
}

// LatencyTracker records call latencies. Safe for concurrent use.
type LatencyTracker struct {
	mu       sync.Mutex
	avg      ewma.MovingAverage
	calls    uint64
	failures uint64
	max      time.Duration
	samples  *SampleBuffer
}

// NewLatencyTracker creates a tracker keeping the last capacity samples.
func NewLatencyTracker(capacity int) *LatencyTracker {
	return &LatencyTracker{
		avg:     ewma.NewMovingAverage(),
		samples: NewSampleBuffer(capacity),
	}
}

// Observe records one call that took d and failed when err is non-nil.
func (t *LatencyTracker) Observe(d time.Duration, err error) {
	if d < 0 {
		d = 0
	}

	t.mu.Lock()
	t.calls++
	if err != nil {
		t.failures++
	}
	t.avg.Add(float64(d))
	if d > t.max {
		t.max = d
	}
	t.mu.Unlock()

	t.samples.Push(Sample{Timestamp: time.Now(), Latency: d, Failed: err != nil})
}

// Time returns a function that observes the time elapsed since Time was
// called. Typical use: defer with the call's error.
func (t *LatencyTracker) Time() func(err error) {
	start := time.Now()
	return func(err error) { t.Observe(time.Since(start), err) }
}

// Snapshot returns the current counters.
func (t *LatencyTracker) Snapshot() LatencySnapshot {
	t.mu.Lock()
	s := LatencySnapshot{
		Calls:    t.calls,
		Failures: t.failures,
		Average:  time.Duration(t.avg.Value()),
		Max:      t.max,
	}
	t.mu.Unlock()

	if last, ok := t.samples.Latest(); ok {
		s.Last = last.Latency
	}
	return s
}

// Samples returns the buffered samples, oldest first.
func (t *LatencyTracker) Samples() []Sample {
	return t.samples.GetRecent(t.samples.Cap())
}

// Registry holds one tracker per operation name.
type Registry struct {
	mu       sync.RWMutex
	trackers map[string]*LatencyTracker
	capacity int
}

// NewRegistry creates an empty registry whose trackers keep capacity
// samples each.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		trackers: make(map[string]*LatencyTracker),
		capacity: capacity,
	}
}

// Tracker returns the tracker for op, creating it on first use.
func (r *Registry) Tracker(op string) *LatencyTracker {
	r.mu.RLock()
	t, ok := r.trackers[op]
	r.mu.RUnlock()
	if ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.trackers[op]; ok {
		return t
	}
	t = NewLatencyTracker(r.capacity)
	r.trackers[op] = t
	return t
}

// Names returns the tracked operation names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.trackers))
}

// Snapshot returns a snapshot of every tracker keyed by operation.
func (r *Registry) Snapshot() map[string]LatencySnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]LatencySnapshot, len(r.trackers))
	for op, t := range r.trackers {
		out[op] = t.Snapshot()
	}
	return out
}

// Total sums the snapshots of every tracker. Average is weighted by calls.
func (r *Registry) Total() LatencySnapshot {
	var total LatencySnapshot
	var weighted float64
	for _, s := range r.Snapshot() {
		total.Calls += s.Calls
		total.Failures += s.Failures
		weighted += float64(s.Average) * float64(s.Calls)
		total.Max = max(total.Max, s.Max)
	}
	if total.Calls > 0 {
		total.Average = time.Duration(weighted / float64(total.Calls))
	}
	return total
}
