// Package store owns the canonical application state.
//
// Actions reach the store through a Dispatcher, are applied one at a time in
// arrival order by Run, and every resulting state is published to
// subscribers as an immutable snapshot.
package store

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/tanic-org/tanic/internal/logger"
	"github.com/tanic-org/tanic/internal/state"
)

// Store applies actions to the state and publishes the results.
type Store struct {
	q  *queue
	bc *broadcast

	running atomic.Bool
	applied atomic.Uint64
	ignored atomic.Uint64
}

// Stats counts processed actions.
type Stats struct {
	Applied uint64
	Ignored uint64
	Pending int
}

// New creates a store seeded with initial and the first sending handle on
// its action queue.
func New(initial state.AppState) (*Store, *Dispatcher) {
	q := newQueue()
	q.addSender()
	s := &Store{
		q:  q,
		bc: newBroadcast(initial),
	}
	return s, &Dispatcher{q: q}
}

// Current returns the latest published state.
func (s *Store) Current() state.AppState {
	v, _ := s.bc.load()
	return v
}

// Subscribe returns a new subscription. Its first Next returns the current
// state.
func (s *Store) Subscribe() *Subscription {
	return &Subscription{b: s.bc}
}

// Stats returns action counters.
func (s *Store) Stats() Stats {
	return Stats{
		Applied: s.applied.Load(),
		Ignored: s.ignored.Load(),
		Pending: s.q.len(),
	}
}

// Run processes actions until every Dispatcher is closed and the queue is
// drained, the state is terminal on both axes, or ctx is canceled. On
// return the broadcast and the queue are closed. Run must be called once.
func (s *Store) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("store: already running")
	}
	defer s.q.close()
	defer s.bc.close()

	cur := s.Current()
	logger.Debug("store: running")

	for !cur.IsTerminal() {
		a, err := s.q.pop(ctx)
		if errors.Is(err, ErrClosed) {
			logger.Debug("store: action queue closed")
			return nil
		}
		if err != nil {
			return err
		}

		next, applied := state.Apply(cur, a)
		if !applied {
			s.ignored.Add(1)
			logger.Debug("store: action ignored", "action", state.ActionName(a))
			continue
		}
		s.applied.Add(1)

		cur = next
		s.bc.publish(cur)
	}

	logger.Debug("store: state terminal", "applied", s.applied.Load(), "ignored", s.ignored.Load())
	return nil
}
