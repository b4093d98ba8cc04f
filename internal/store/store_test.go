package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanic-org/tanic/internal/catalog"
	"github.com/tanic-org/tanic/internal/state"
)

var testConn = state.NewConnection("test", "http://catalog")

func runStore(t *testing.T, s *Store) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("store did not stop")
		return nil
	}
}

func TestStore_AppliesInOrder(t *testing.T) {
	s, d := New(state.New())
	sub := s.Subscribe()

	require.NoError(t, d.Dispatch(state.ConnectTo{Conn: testConn}))
	require.NoError(t, d.Dispatch(state.UpdateNamespacesList{
		Conn:       testConn,
		Namespaces: []catalog.Namespace{{"a"}, {"b"}, {"c"}},
	}))
	require.NoError(t, d.Dispatch(state.FocusNextNamespace{}))
	require.NoError(t, d.Dispatch(state.FocusNextNamespace{}))
	d.Close()

	_, done := runStore(t, s)
	require.NoError(t, waitDone(t, done))

	final := sub.Latest()
	ui, ok := final.UI.(state.ViewingNamespacesList)
	require.True(t, ok, "got %T", final.UI)
	assert.Equal(t, state.Some(2), ui.Selected)

	stats := s.Stats()
	assert.Equal(t, uint64(4), stats.Applied)
	assert.Equal(t, 0, stats.Pending)
}

func TestStore_IgnoredActionsAreNotPublished(t *testing.T) {
	s, d := New(state.New())
	sub := s.Subscribe()
	_ = sub.Latest()

	require.NoError(t, d.Dispatch(state.FocusNextTable{}))
	require.NoError(t, d.Dispatch(state.Escape{}))
	d.Close()

	_, done := runStore(t, s)
	require.NoError(t, waitDone(t, done))

	assert.Equal(t, uint64(2), s.Stats().Ignored)
	_, err := sub.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_LateSubscriberSeesLatest(t *testing.T) {
	s, d := New(state.New())
	early := s.Subscribe()
	_, done := runStore(t, s)

	require.NoError(t, d.Dispatch(state.ConnectTo{Conn: testConn}))
	require.NoError(t, d.Dispatch(state.UpdateNamespacesList{Conn: testConn, Namespaces: []catalog.Namespace{{"ns"}}}))

	require.Eventually(t, func() bool {
		_, ok := s.Current().Iceberg.(state.Connected)
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	late := s.Subscribe()
	got, err := late.Next(context.Background())
	require.NoError(t, err)
	assert.IsType(t, state.Connected{}, got.Iceberg)

	// The early subscriber skips straight to the newest state.
	got, err = early.Next(context.Background())
	require.NoError(t, err)
	assert.IsType(t, state.Connected{}, got.Iceberg)

	d.Close()
	require.NoError(t, waitDone(t, done))
}

func TestStore_StopsOnTerminalState(t *testing.T) {
	s, d := New(state.New())
	defer d.Close()
	sub := s.Subscribe()

	_, done := runStore(t, s)
	require.NoError(t, d.Dispatch(state.Exit{}))
	require.NoError(t, waitDone(t, done))

	assert.True(t, s.Current().IsTerminal())
	assert.ErrorIs(t, d.Dispatch(state.Escape{}), ErrClosed)

	got, err := sub.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsTerminal())

	_, err = sub.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_StopsOnCancel(t *testing.T) {
	s, d := New(state.New())
	defer d.Close()

	cancel, done := runStore(t, s)
	cancel()
	assert.ErrorIs(t, waitDone(t, done), context.Canceled)

	_, err := s.Subscribe().Next(context.Background())
	require.NoError(t, err)
}

func TestStore_RunTwice(t *testing.T) {
	s, d := New(state.New())
	d.Close()

	require.NoError(t, s.Run(context.Background()))
	assert.Error(t, s.Run(context.Background()))
}

func TestDispatcher_CloneRefcount(t *testing.T) {
	s, d := New(state.New())
	c := d.Clone()

	d.Close()
	d.Close()
	assert.ErrorIs(t, d.Dispatch(state.Exit{}), ErrClosed)

	// The clone keeps the queue open.
	require.NoError(t, c.Dispatch(state.ConnectTo{Conn: testConn}))
	c.Close()

	_, done := runStore(t, s)
	require.NoError(t, waitDone(t, done))
	assert.IsType(t, state.ConnectingTo{}, s.Current().Iceberg)

	late := c.Clone()
	assert.ErrorIs(t, late.Dispatch(state.Exit{}), ErrClosed)
}

func TestDispatcher_ConcurrentProducers(t *testing.T) {
	s, d := New(state.New())
	require.NoError(t, d.Dispatch(state.ConnectTo{Conn: testConn}))

	const producers, each = 8, 50
	var wg sync.WaitGroup
	for range producers {
		p := d.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.Close()
			for range each {
				assert.NoError(t, p.Dispatch(state.ReportError{Conn: testConn, Message: "x"}))
			}
		}()
	}
	d.Close()

	_, done := runStore(t, s)
	wg.Wait()
	require.NoError(t, waitDone(t, done))

	assert.Equal(t, uint64(1+producers*each), s.Stats().Applied)
	assert.Len(t, s.Current().Notifications, state.MaxNotifications)
}

func TestSubscription_NextHonorsContext(t *testing.T) {
	s, d := New(state.New())
	defer d.Close()
	sub := s.Subscribe()
	_ = sub.Latest()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := sub.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
