package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/tanic-org/tanic/internal/state"
)

// ErrClosed is returned once the queue or the broadcast has shut down.
var ErrClosed = errors.New("store: closed")

// queue is an unbounded many-producer single-consumer FIFO of actions. It
// closes when its last Dispatcher is closed or when the consumer stops.
type queue struct {
	mu      sync.Mutex
	items   []state.Action
	senders int
	closed  bool

	// ready holds at most one wakeup for the consumer.
	ready chan struct{}
}

func newQueue() *queue {
	return &queue{ready: make(chan struct{}, 1)}
}

func (q *queue) push(a state.Action) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, a)
	q.mu.Unlock()

	q.wake()
	return nil
}

// pop blocks until an action is available. It returns ErrClosed once the
// queue is closed and drained.
func (q *queue) pop(ctx context.Context) (state.Action, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			a := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			if len(q.items) == 0 {
				q.items = nil
			}
			q.mu.Unlock()
			return a, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil, ErrClosed
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *queue) addSender() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.senders++
	return true
}

func (q *queue) releaseSender() {
	q.mu.Lock()
	q.senders--
	last := q.senders <= 0
	if last {
		q.closed = true
	}
	q.mu.Unlock()

	if last {
		q.wake()
	}
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *queue) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Dispatcher is a sending handle on the action queue. Dispatch never blocks.
// Handles are reference counted: the queue closes once every handle
// obtained from New or Clone has been closed.
type Dispatcher struct {
	q      *queue
	closed atomic.Bool
}

// Dispatch enqueues a. It returns ErrClosed after the handle or the queue
// has been closed.
func (d *Dispatcher) Dispatch(a state.Action) error {
	if d.closed.Load() {
		return ErrClosed
	}
	return d.q.push(a)
}

// Clone returns a new handle on the same queue.
func (d *Dispatcher) Clone() *Dispatcher {
	c := &Dispatcher{q: d.q}
	if d.closed.Load() || !d.q.addSender() {
		c.closed.Store(true)
	}
	return c
}

// Close releases the handle. Closing twice is a no-op.
func (d *Dispatcher) Close() {
	if d.closed.Swap(true) {
		return
	}
	d.q.releaseSender()
}
