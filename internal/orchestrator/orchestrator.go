// Package orchestrator performs every catalog fetch of a tanic session.
//
// The orchestrator watches published states and starts a fetch unit for
// each piece of metadata the state lacks. Results re-enter the store as
// actions. A unit whose connection has been superseded is cancelled, and any
// result it still produces is discarded before it reaches the store.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tanic-org/tanic/internal/catalog"
	"github.com/tanic-org/tanic/internal/logger"
	"github.com/tanic-org/tanic/internal/metrics"
	"github.com/tanic-org/tanic/internal/state"
	"github.com/tanic-org/tanic/internal/store"
)

// Source is the read side of the state store.
type Source interface {
	Current() state.AppState
	Subscribe() *store.Subscription
}

// Sink accepts actions for the store. *store.Dispatcher implements it.
type Sink interface {
	Dispatch(a state.Action) error
}

// Options tunes the orchestrator. Zero values select defaults.
type Options struct {
	// ConnectAttempts bounds connection attempts per connect request.
	ConnectAttempts int
	// RetryBaseDelay and RetryMaxDelay shape the connect backoff.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// FooterLimit is the number of parquet footers read per table. Negative
	// disables footer reads.
	FooterLimit int
	// BatchThreshold is the manifest size above which data files are
	// reported in one action instead of one action per file.
	BatchThreshold int
	// MaxConcurrent bounds catalog calls in flight.
	MaxConcurrent int

	// Footers reads footers of paths the catalog handle cannot read itself.
	Footers catalog.FooterReader
	// Metrics receives per-operation latencies.
	Metrics *metrics.Registry
}

const (
	defaultConnectAttempts = 5
	defaultFooterLimit     = 8
	defaultBatchThreshold  = 64
	defaultMaxConcurrent   = 8
)

func (o Options) withDefaults() Options {
	if o.ConnectAttempts <= 0 {
		o.ConnectAttempts = defaultConnectAttempts
	}
	if o.FooterLimit == 0 {
		o.FooterLimit = defaultFooterLimit
	}
	if o.BatchThreshold <= 0 {
		o.BatchThreshold = defaultBatchThreshold
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = defaultMaxConcurrent
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewRegistry(metrics.DefaultBufferCapacity)
	}
	return o
}

// Orchestrator is the only component that talks to the catalog.
type Orchestrator struct {
	connector catalog.Connector
	source    Source
	sink      Sink
	opts      Options
	sem       *semaphore.Weighted
	sub       *store.Subscription

	// Owned by the Run goroutine.
	current *session
	attempt uint64

	wg      sync.WaitGroup
	running bool
}

// New creates an orchestrator reading states from source and sending
// results to sink.
func New(connector catalog.Connector, source Source, sink Sink, opts Options) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		connector: connector,
		source:    source,
		sink:      sink,
		opts:      opts,
		sem:       semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		sub:       source.Subscribe(),
	}
}

// Metrics returns the registry receiving fetch latencies.
func (o *Orchestrator) Metrics() *metrics.Registry {
	return o.opts.Metrics
}

// Run reacts to published states until the state is exiting, the store
// shuts down or ctx is cancelled. Every fetch unit has returned and every
// catalog handle is closed when Run returns.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.running {
		return errors.New("orchestrator: already running")
	}
	o.running = true
	defer o.shutdown()

	for {
		s, err := o.sub.Next(ctx)
		if errors.Is(err, store.ErrClosed) {
			logger.Debug("orchestrator: state broadcast closed")
			return nil
		}
		if err != nil {
			return err
		}
		if _, ok := s.Iceberg.(state.Exiting); ok {
			logger.Debug("orchestrator: exiting")
			return nil
		}
		o.observe(ctx, s)
	}
}

func (o *Orchestrator) observe(ctx context.Context, s state.AppState) {
	if n := s.ConnectAttempts(); n != o.attempt {
		o.attempt = n
		if conn, ok := s.ActiveConnection(); ok {
			_, connecting := s.Iceberg.(state.ConnectingTo)
			o.connect(ctx, conn, connecting)
		}
	}

	md, ok := s.Metadata()
	if !ok || o.current == nil || !o.current.conn.Equal(md.Conn) {
		return
	}
	o.fetchMissing(s, md)
}

// connect handles one connect request. A request for the active uri keeps
// the handle and only lists namespaces when no listing is running.
func (o *Orchestrator) connect(ctx context.Context, conn state.ConnectionDetails, connecting bool) {
	if cur := o.current; cur != nil && cur.conn.Equal(conn) {
		key := cur.key(kindNamespaces)
		logger.Debug("orchestrator: connect request for active catalog", "uri", conn.URI, "listing", cur.running(key))
		cur.reset(key)
		if connecting {
			o.start(cur, key, func(ctx context.Context) error { return o.openAndList(ctx, cur) })
		}
		return
	}

	if o.current != nil {
		logger.Info("Switching catalog", "from", o.current.conn.URI, "to", conn.URI)
		o.retire(o.current)
	}
	sess := newSession(ctx, conn)
	o.current = sess
	o.start(sess, sess.key(kindNamespaces), func(ctx context.Context) error { return o.openAndList(ctx, sess) })
}

// fetchMissing starts a unit for every piece of metadata the UI needs and
// the state lacks.
func (o *Orchestrator) fetchMissing(s state.AppState, md state.CatalogMetadata) {
	sess := o.current
	h := sess.catalog()
	if h == nil {
		return
	}

	if loader, ok := h.(catalog.NamespaceLoader); ok {
		for name, ns := range md.Namespaces.All() {
			if ns.Properties != nil {
				continue
			}
			o.start(sess, sess.key(kindProperties, name), func(ctx context.Context) error {
				return o.fetchProperties(ctx, sess, loader, ns)
			})
		}
	}

	switch s.UI.(type) {
	case state.ViewingTablesList, state.ViewingTable:
	default:
		return
	}
	ns, ok := s.SelectedNamespace()
	if !ok {
		return
	}
	if ns.Tables == nil {
		o.start(sess, sess.key(kindTables, ns.Name), func(ctx context.Context) error {
			return o.listTables(ctx, sess, h, ns)
		})
		return
	}

	loader, ok := h.(catalog.TableLoader)
	if !ok {
		return
	}
	for _, t := range ns.Tables.All() {
		if t.Table != nil {
			continue
		}
		o.start(sess, sess.key(kindTable, ns.Name, t.Name), func(ctx context.Context) error {
			return o.loadTable(ctx, sess, loader, ns, t)
		})
	}

	if _, viewing := s.UI.(state.ViewingTable); !viewing {
		return
	}
	t, ok := s.SelectedTable()
	if !ok || t.ManifestList != nil || t.CurrentSnapshot == nil {
		return
	}
	o.start(sess, sess.key(kindManifests, ns.Name, t.Name), func(ctx context.Context) error {
		return o.readManifests(ctx, sess, loader, ns, t)
	})
}

// start runs fn as the unit for key unless one is in flight or done.
func (o *Orchestrator) start(sess *session, key string, fn func(ctx context.Context) error) {
	ctx, u, ok := sess.begin(key)
	if !ok {
		return
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer sess.finish(key, u)
		defer func() {
			// A catalog implementation that panics fails only this unit.
			if p := recover(); p != nil {
				logger.Error("Catalog fetch panicked", "key", key, "panic", p, "stack", string(debug.Stack()))
				o.fail(ctx, sess, key, catalog.Wrap(keyKind(key), keyResource(sess, key), catalog.ErrProtocol, fmt.Errorf("panic: %v", p)))
			}
		}()

		logger.Debug("orchestrator: fetch started", "key", key)
		if err := fn(ctx); err != nil {
			o.fail(ctx, sess, key, err)
		}
	}()
}

// fail logs err and reports it to the user unless the unit was cancelled.
func (o *Orchestrator) fail(ctx context.Context, sess *session, key string, err error) {
	if catalog.IsCanceled(err) || ctx.Err() != nil {
		logger.Debug("orchestrator: fetch cancelled", "key", key, "error", err)
		return
	}

	resource := key
	var ce *catalog.Error
	if errors.As(err, &ce) && ce.Resource != "" {
		resource = ce.Resource
	}
	logger.Warn("Catalog fetch failed", "key", key, "resource", resource, "error", err)
	o.emit(ctx, sess, state.ReportError{Conn: sess.conn, Resource: resource, Message: err.Error()})
}

// emit dispatches a unit's result when its connection is still the active
// one and the unit was not cancelled. It reports whether a was sent.
func (o *Orchestrator) emit(ctx context.Context, sess *session, a state.Action) bool {
	if ctx.Err() != nil {
		logger.Debug("orchestrator: result of cancelled fetch discarded", "action", state.ActionName(a))
		return false
	}
	active, ok := o.source.Current().ActiveConnection()
	if !ok || !active.Equal(sess.conn) {
		logger.Debug("orchestrator: stale result discarded", "action", state.ActionName(a), "uri", sess.conn.URI)
		return false
	}
	if err := o.sink.Dispatch(a); err != nil {
		logger.Debug("orchestrator: dispatch failed", "action", state.ActionName(a), "error", err)
		return false
	}
	return true
}

// retire cancels every unit of sess and closes its handle once they return.
func (o *Orchestrator) retire(sess *session) {
	h := sess.retire()
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		sess.wait()
		if h == nil {
			return
		}
		if err := h.Close(); err != nil {
			logger.Warn("Failed to close catalog", "uri", sess.conn.URI, "error", err)
		}
	}()
}

func (o *Orchestrator) shutdown() {
	if o.current != nil {
		o.retire(o.current)
		o.current = nil
	}
	o.wg.Wait()
	logger.Debug("orchestrator: stopped")
}

// call runs one catalog operation under the concurrency limit and records
// its latency.
func (o *Orchestrator) call(ctx context.Context, op, resource string, fn func(ctx context.Context) error) error {
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return catalog.Wrap(op, resource, catalog.ErrCanceled, err)
	}
	defer o.sem.Release(1)

	done := o.opts.Metrics.Tracker(op).Time()
	err := fn(ctx)
	done(err)
	return err
}

func (o *Orchestrator) newRetry() *catalog.ConnectRetry {
	r := catalog.NewConnectRetry(o.opts.ConnectAttempts)
	if o.opts.RetryBaseDelay > 0 {
		r.BaseDelay = o.opts.RetryBaseDelay
		r.NextDelay = o.opts.RetryBaseDelay
	}
	if o.opts.RetryMaxDelay > 0 {
		r.MaxDelay = o.opts.RetryMaxDelay
	}
	return r
}
