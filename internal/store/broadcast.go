package store

import (
	"context"
	"sync"

	"github.com/tanic-org/tanic/internal/state"
)

// broadcast holds the latest published state. Every publication closes the
// current notify channel and installs a fresh one, so waiters wake once per
// publication but always read the newest value.
type broadcast struct {
	mu      sync.RWMutex
	value   state.AppState
	version uint64
	notify  chan struct{}
	closed  bool
}

func newBroadcast(initial state.AppState) *broadcast {
	return &broadcast{
		value:   initial,
		version: 1,
		notify:  make(chan struct{}),
	}
}

func (b *broadcast) publish(s state.AppState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.value = s
	b.version++
	close(b.notify)
	b.notify = make(chan struct{})
}

func (b *broadcast) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.notify)
}

func (b *broadcast) load() (state.AppState, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value, b.version
}

// Subscription observes published states. A new subscription first yields
// the state current at the time it was created. Intermediate states may be
// skipped when publications outpace the reader.
type Subscription struct {
	b    *broadcast
	seen uint64
}

// Latest returns the most recent state and marks it as seen.
func (s *Subscription) Latest() state.AppState {
	v, ver := s.b.load()
	s.seen = ver
	return v
}

// Next blocks until a state newer than the last one seen is available and
// returns it. It returns ErrClosed once the broadcast has shut down.
func (s *Subscription) Next(ctx context.Context) (state.AppState, error) {
	for {
		s.b.mu.RLock()
		if s.b.version != s.seen {
			v, ver := s.b.value, s.b.version
			s.b.mu.RUnlock()
			s.seen = ver
			return v, nil
		}
		if s.b.closed {
			s.b.mu.RUnlock()
			return state.AppState{}, ErrClosed
		}
		ch := s.b.notify
		s.b.mu.RUnlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return state.AppState{}, ctx.Err()
		}
	}
}
