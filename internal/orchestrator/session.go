package orchestrator

import (
	"context"
	"strings"
	"sync"

	"github.com/tanic-org/tanic/internal/catalog"
	"github.com/tanic-org/tanic/internal/state"
)

// Fetch unit kinds, the second component of a resource key.
const (
	kindNamespaces = "namespaces"
	kindProperties = "properties"
	kindTables     = "tables"
	kindTable      = "table"
	kindManifests  = "manifests"
)

// unit is one in-flight fetch.
type unit struct {
	cancel context.CancelFunc
	gen    uint64
}

// session is everything the orchestrator holds for one connection: the
// catalog handle and the bookkeeping of its fetch units. It is retired when
// the connection is superseded.
type session struct {
	conn   state.ConnectionDetails
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	handle   catalog.Catalog
	inflight map[string]*unit
	done     map[string]struct{} // finished keys, successful or not
	gen      uint64
	retired  bool
	units    sync.WaitGroup
}

func newSession(parent context.Context, conn state.ConnectionDetails) *session {
	ctx, cancel := context.WithCancel(parent)
	return &session{
		conn:     conn,
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[string]*unit),
		done:     make(map[string]struct{}),
	}
}

// key builds the resource key conn|kind|namespace|table|path.
func (s *session) key(kind string, parts ...string) string {
	var b strings.Builder
	b.WriteString(s.conn.URI)
	b.WriteByte('|')
	b.WriteString(kind)
	for i := range 3 {
		b.WriteByte('|')
		if i < len(parts) {
			b.WriteString(parts[i])
		}
	}
	return b.String()
}

// keyKind returns the unit kind of key.
func keyKind(key string) string {
	parts := strings.Split(key, "|")
	if len(parts) < 5 {
		return key
	}
	return parts[len(parts)-4]
}

// keyResource names the resource of key for the user: the namespace, the
// table or the connection uri.
func keyResource(s *session, key string) string {
	parts := strings.Split(key, "|")
	if len(parts) < 5 {
		return s.conn.URI
	}
	var names []string
	for _, p := range parts[len(parts)-3:] {
		if p != "" {
			names = append(names, p)
		}
	}
	if len(names) == 0 {
		return s.conn.URI
	}
	return strings.Join(names, ".")
}

// begin registers a unit for key. It fails when the session is retired or
// the key is in flight or already done.
func (s *session) begin(key string) (context.Context, *unit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retired {
		return nil, nil, false
	}
	if _, ok := s.inflight[key]; ok {
		return nil, nil, false
	}
	if _, ok := s.done[key]; ok {
		return nil, nil, false
	}

	ctx, cancel := context.WithCancel(s.ctx)
	u := &unit{cancel: cancel, gen: s.gen}
	s.inflight[key] = u
	s.units.Add(1)
	return ctx, u, true
}

// finish unregisters u. The key is marked done unless the session was reset
// while u was running.
func (s *session) finish(key string, u *unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.cancel()
	if s.inflight[key] == u {
		delete(s.inflight, key)
		if u.gen == s.gen {
			s.done[key] = struct{}{}
		}
	}
	s.units.Done()
}

// running reports whether a unit for key is in flight.
func (s *session) running(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[key]
	return ok
}

// reset forgets every finished key and cancels every unit except keep. Used
// when the same connection is requested again and its metadata was dropped.
func (s *session) reset(keep string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	clear(s.done)
	for key, u := range s.inflight {
		if key == keep {
			// Its result belongs to the new request too.
			u.gen = s.gen
			continue
		}
		u.cancel()
		delete(s.inflight, key)
	}
}

func (s *session) catalog() catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// attach stores a freshly opened handle. It fails once the session is retired
// and the caller must then close h itself.
func (s *session) attach(h catalog.Catalog) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retired {
		return false
	}
	s.handle = h
	return true
}

// retire cancels every unit and returns the handle to close once they have
// all returned.
func (s *session) retire() catalog.Catalog {
	s.mu.Lock()
	s.retired = true
	h := s.handle
	s.handle = nil
	s.mu.Unlock()

	s.cancel()
	return h
}

// wait blocks until every unit of s has returned.
func (s *session) wait() {
	s.units.Wait()
}
