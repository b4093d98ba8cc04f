package metrics

import (
	"sync"
	"time"
)

// DefaultBufferCapacity is the default number of samples kept per tracker.
const DefaultBufferCapacity = 64

// Sample is one observed catalog call.
type Sample struct {
	Timestamp time.Time
	Latency   time.Duration
	Failed    bool
}

// SampleBuffer is a fixed-size ring buffer of samples.
// It is thread-safe and evicts the oldest sample when full.
type SampleBuffer struct {
	data     []Sample
	capacity int
	head     int // Next write position
	size     int // Current element count
	mu       sync.RWMutex
}

// NewSampleBuffer creates a buffer holding up to capacity samples.
func NewSampleBuffer(capacity int) *SampleBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &SampleBuffer{
		data:     make([]Sample, capacity),
		capacity: capacity,
	}
}

// Push adds a sample, evicting the oldest if at capacity. Samples without a
// timestamp or with a negative latency are dropped.
func (b *SampleBuffer) Push(s Sample) {
	if s.Timestamp.IsZero() || s.Latency < 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.data[b.head] = s
	b.head = (b.head + 1) % b.capacity

	if b.size < b.capacity {
		b.size++
	}
}

// GetRecent returns the n most recent samples in chronological order.
func (b *SampleBuffer) GetRecent(n int) []Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || b.size == 0 {
		return nil
	}
	if n > b.size {
		n = b.size
	}

	result := make([]Sample, n)
	start := (b.head - n + b.capacity) % b.capacity
	for i := 0; i < n; i++ {
		result[i] = b.data[(start+i)%b.capacity]
	}
	return result
}

// Latencies returns every buffered latency in chronological order.
func (b *SampleBuffer) Latencies() []time.Duration {
	samples := b.GetRecent(b.Cap())
	out := make([]time.Duration, len(samples))
	for i, s := range samples {
		out[i] = s.Latency
	}
	return out
}

// Latest returns the most recent sample.
func (b *SampleBuffer) Latest() (Sample, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return Sample{}, false
	}
	// head points to next write position, so latest is at head-1
	return b.data[(b.head-1+b.capacity)%b.capacity], true
}

// Len returns the current number of samples.
func (b *SampleBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the capacity of the buffer.
func (b *SampleBuffer) Cap() int {
	return b.capacity
}

// Clear removes all samples.
func (b *SampleBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.head = 0
	b.size = 0
	clear(b.data)
}
