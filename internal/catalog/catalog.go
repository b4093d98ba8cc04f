// Package catalog defines the capability tanic consumes from a remote table
// catalog, together with the metadata types that flow back from it.
//
// The orchestrator is the only caller. Implementations live in
// subpackages: restcatalog speaks the Iceberg REST protocol, memcatalog serves
// fixed in-memory data for tests and demos.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Connector opens a catalog handle for a URI.
type Connector interface {
	Connect(ctx context.Context, uri string) (Catalog, error)
}

// Catalog is the minimal operation set every catalog handle supports.
type Catalog interface {
	// ListNamespaces returns the root namespaces in catalog order.
	ListNamespaces(ctx context.Context) ([]Namespace, error)

	// ListTables returns the tables of a namespace in catalog order.
	ListTables(ctx context.Context, ns Namespace) ([]TableIdent, error)

	// Close releases the handle. Calls after Close may fail.
	Close() error
}

// NamespaceLoader is implemented by catalogs that expose namespace properties.
type NamespaceLoader interface {
	NamespaceProperties(ctx context.Context, ns Namespace) (map[string]string, error)
}

// TableLoader is implemented by catalogs that can resolve table metadata
// down to manifests and data files.
type TableLoader interface {
	LoadTable(ctx context.Context, ident TableIdent) (Table, error)
	ReadManifestList(ctx context.Context, ident TableIdent) (ManifestList, error)
	ReadManifest(ctx context.Context, ident TableIdent, mf ManifestFile) (Manifest, error)
}

// Mux dispatches Connect to a per-scheme connector.
type Mux struct {
	mu       sync.RWMutex
	schemes  map[string]Connector
	fallback Connector
}

// NewMux creates a Mux using fallback for schemes without a handler.
// fallback may be nil.
func NewMux(fallback Connector) *Mux {
	return &Mux{
		schemes:  make(map[string]Connector),
		fallback: fallback,
	}
}

// Handle registers a connector for a URI scheme such as "memory".
func (m *Mux) Handle(scheme string, c Connector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemes[strings.ToLower(scheme)] = c
}

// Connect implements Connector.
func (m *Mux) Connect(ctx context.Context, uri string) (Catalog, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, &Error{Op: "connect", Resource: uri, Kind: ErrConnect, Err: fmt.Errorf("invalid uri: %w", err)}
	}

	m.mu.RLock()
	c, ok := m.schemes[strings.ToLower(u.Scheme)]
	m.mu.RUnlock()
	if !ok {
		c = m.fallback
	}
	if c == nil {
		return nil, &Error{Op: "connect", Resource: uri, Kind: ErrConnect, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	return c.Connect(ctx, uri)
}

// FooterReader reads parquet footers of data files.
type FooterReader interface {
	// Supports reports whether path can be read by this reader.
	Supports(path string) bool
	ReadFooter(ctx context.Context, path string) (ParquetMetadata, error)
}

// FooterReaders delegates each path to the first reader that supports it.
type FooterReaders []FooterReader

// Supports implements FooterReader.
func (rs FooterReaders) Supports(path string) bool {
	return rs.pick(path) != nil
}

// ReadFooter implements FooterReader.
func (rs FooterReaders) ReadFooter(ctx context.Context, path string) (ParquetMetadata, error) {
	r := rs.pick(path)
	if r == nil {
		return ParquetMetadata{}, &Error{Op: "read_footer", Resource: path, Kind: ErrProtocol, Err: fmt.Errorf("no reader for path")}
	}
	return r.ReadFooter(ctx, path)
}

func (rs FooterReaders) pick(path string) FooterReader {
	for _, r := range rs {
		if r != nil && r.Supports(path) {
			return r
		}
	}
	return nil
}
