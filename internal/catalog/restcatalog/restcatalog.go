// Package restcatalog adapts an Iceberg REST catalog, via apache/iceberg-go,
// to the catalog capability.
package restcatalog

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/apache/iceberg-go"
	icecat "github.com/apache/iceberg-go/catalog"
	icerest "github.com/apache/iceberg-go/catalog/rest"
	iceio "github.com/apache/iceberg-go/io"
	"github.com/apache/iceberg-go/table"
	"golang.org/x/time/rate"

	"github.com/tanic-org/tanic/internal/catalog"
	"github.com/tanic-org/tanic/internal/logger"
)

// Options configures REST catalog handles.
type Options struct {
	Name       string
	Token      string
	Credential string
	Warehouse  string

	// Timeout bounds every catalog call. Zero disables it.
	Timeout time.Duration

	// RateLimit is the sustained request rate per handle. Zero or less is
	// unlimited.
	RateLimit float64
	RateBurst int

	// IOProperties are merged under table properties when opening table
	// storage, e.g. s3.endpoint or s3.access-key-id.
	IOProperties map[string]string
}

// Connector opens REST catalog handles.
type Connector struct {
	opts Options
}

// NewConnector returns a connector using opts for every handle.
func NewConnector(opts Options) *Connector {
	if opts.Name == "" {
		opts.Name = "tanic"
	}
	return &Connector{opts: opts}
}

// Connect implements catalog.Connector. It performs the catalog's config
// handshake, so a nil error means the endpoint answered.
func (c *Connector) Connect(ctx context.Context, uri string) (catalog.Catalog, error) {
	var opts []icerest.Option
	if c.opts.Token != "" {
		opts = append(opts, icerest.WithOAuthToken(c.opts.Token))
	}
	if c.opts.Credential != "" {
		opts = append(opts, icerest.WithCredential(c.opts.Credential))
	}
	if c.opts.Warehouse != "" {
		opts = append(opts, icerest.WithWarehouseLocation(c.opts.Warehouse))
	}

	cctx, cancel := withTimeout(ctx, c.opts.Timeout)
	defer cancel()

	start := time.Now()
	rc, err := icerest.NewCatalog(cctx, c.opts.Name, uri, opts...)
	if err != nil {
		return nil, catalog.Wrap("connect", uri, catalog.ErrConnect, err)
	}
	logger.Debug("restcatalog: connected", "uri", uri, "duration", time.Since(start))

	return &Catalog{
		uri:       uri,
		rest:      rc,
		opts:      c.opts,
		limiter:   newLimiter(c.opts.RateLimit, c.opts.RateBurst),
		tables:    make(map[string]*table.Table),
		manifests: make(map[string]iceberg.ManifestFile),
	}, nil
}

func newLimiter(limit float64, burst int) *rate.Limiter {
	if limit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(limit), burst)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Catalog is one REST catalog handle. Loaded tables and manifest files are
// cached so manifest reads do not reload table metadata.
type Catalog struct {
	uri     string
	rest    *icerest.Catalog
	opts    Options
	limiter *rate.Limiter

	mu        sync.Mutex
	tables    map[string]*table.Table
	manifests map[string]iceberg.ManifestFile
}

var (
	_ catalog.Catalog         = (*Catalog)(nil)
	_ catalog.NamespaceLoader = (*Catalog)(nil)
	_ catalog.TableLoader     = (*Catalog)(nil)
)

// call waits for the rate limiter and returns a context bounded by the
// configured timeout.
func (c *Catalog) call(ctx context.Context, op, resource string) (context.Context, context.CancelFunc, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, catalog.Wrap(op, resource, catalog.ErrCanceled, err)
	}
	cctx, cancel := withTimeout(ctx, c.opts.Timeout)
	return cctx, cancel, nil
}

// ListNamespaces implements catalog.Catalog.
func (c *Catalog) ListNamespaces(ctx context.Context) ([]catalog.Namespace, error) {
	cctx, cancel, err := c.call(ctx, "list_namespaces", c.uri)
	if err != nil {
		return nil, err
	}
	defer cancel()

	idents, err := c.rest.ListNamespaces(cctx, nil)
	if err != nil {
		return nil, classify("list_namespaces", c.uri, err)
	}
	out := make([]catalog.Namespace, len(idents))
	for i, id := range idents {
		out[i] = catalog.Namespace(slices.Clone(id))
	}
	return out, nil
}

// ListTables implements catalog.Catalog.
func (c *Catalog) ListTables(ctx context.Context, ns catalog.Namespace) ([]catalog.TableIdent, error) {
	cctx, cancel, err := c.call(ctx, "list_tables", ns.String())
	if err != nil {
		return nil, err
	}
	defer cancel()

	var out []catalog.TableIdent
	for id, err := range c.rest.ListTables(cctx, table.Identifier(ns)) {
		if err != nil {
			return nil, classify("list_tables", ns.String(), err)
		}
		out = append(out, catalog.TableIdent{
			Namespace: catalog.Namespace(slices.Clone(icecat.NamespaceFromIdent(id))),
			Name:      icecat.TableNameFromIdent(id),
		})
	}
	if out == nil {
		out = []catalog.TableIdent{}
	}
	return out, nil
}

// NamespaceProperties implements catalog.NamespaceLoader.
func (c *Catalog) NamespaceProperties(ctx context.Context, ns catalog.Namespace) (map[string]string, error) {
	cctx, cancel, err := c.call(ctx, "namespace_properties", ns.String())
	if err != nil {
		return nil, err
	}
	defer cancel()

	props, err := c.rest.LoadNamespaceProperties(cctx, table.Identifier(ns))
	if err != nil {
		return nil, classify("namespace_properties", ns.String(), err)
	}
	return maps.Clone(map[string]string(props)), nil
}

// LoadTable implements catalog.TableLoader.
func (c *Catalog) LoadTable(ctx context.Context, ident catalog.TableIdent) (catalog.Table, error) {
	tbl, err := c.loadTable(ctx, ident, true)
	if err != nil {
		return catalog.Table{}, err
	}
	return convertTable(ident, tbl), nil
}

func (c *Catalog) loadTable(ctx context.Context, ident catalog.TableIdent, refresh bool) (*table.Table, error) {
	key := ident.String()
	if !refresh {
		c.mu.Lock()
		tbl, ok := c.tables[key]
		c.mu.Unlock()
		if ok {
			return tbl, nil
		}
	}

	cctx, cancel, err := c.call(ctx, "load_table", key)
	if err != nil {
		return nil, err
	}
	defer cancel()

	id := append(slices.Clone(table.Identifier(ident.Namespace)), ident.Name)
	tbl, err := c.rest.LoadTable(cctx, id, nil)
	if err != nil {
		return nil, classify("load_table", key, err)
	}

	c.mu.Lock()
	c.tables[key] = tbl
	c.mu.Unlock()
	return tbl, nil
}

func (c *Catalog) fs(ctx context.Context, tbl *table.Table) (iceio.IO, error) {
	props := maps.Clone(c.opts.IOProperties)
	if props == nil {
		props = make(map[string]string)
	}
	maps.Copy(props, tbl.Properties())
	return iceio.LoadFS(ctx, props, tbl.MetadataLocation())
}

// ReadManifestList implements catalog.TableLoader.
func (c *Catalog) ReadManifestList(ctx context.Context, ident catalog.TableIdent) (catalog.ManifestList, error) {
	tbl, err := c.loadTable(ctx, ident, false)
	if err != nil {
		return catalog.ManifestList{}, err
	}
	snap := tbl.CurrentSnapshot()
	if snap == nil {
		return catalog.ManifestList{}, nil
	}

	fs, err := c.fs(ctx, tbl)
	if err != nil {
		return catalog.ManifestList{}, catalog.Wrap("read_manifest_list", snap.ManifestList, catalog.ErrProtocol, err)
	}
	files, err := snap.Manifests(fs)
	if err != nil {
		return catalog.ManifestList{}, catalog.Wrap("read_manifest_list", snap.ManifestList, catalog.ErrProtocol, err)
	}

	out := catalog.ManifestList{Path: snap.ManifestList, Manifests: make([]catalog.ManifestFile, len(files))}
	c.mu.Lock()
	for i, mf := range files {
		out.Manifests[i] = convertManifestFile(mf)
		c.manifests[mf.FilePath()] = mf
	}
	c.mu.Unlock()
	return out, nil
}

// ReadManifest implements catalog.TableLoader.
func (c *Catalog) ReadManifest(ctx context.Context, ident catalog.TableIdent, mf catalog.ManifestFile) (catalog.Manifest, error) {
	c.mu.Lock()
	file, ok := c.manifests[mf.Path]
	c.mu.Unlock()
	if !ok {
		if _, err := c.ReadManifestList(ctx, ident); err != nil {
			return catalog.Manifest{}, err
		}
		c.mu.Lock()
		file, ok = c.manifests[mf.Path]
		c.mu.Unlock()
		if !ok {
			return catalog.Manifest{}, &catalog.Error{Op: "read_manifest", Resource: mf.Path, Kind: catalog.ErrNotFound}
		}
	}

	tbl, err := c.loadTable(ctx, ident, false)
	if err != nil {
		return catalog.Manifest{}, err
	}
	if err := ctx.Err(); err != nil {
		return catalog.Manifest{}, catalog.Wrap("read_manifest", mf.Path, catalog.ErrCanceled, err)
	}
	fs, err := c.fs(ctx, tbl)
	if err != nil {
		return catalog.Manifest{}, catalog.Wrap("read_manifest", mf.Path, catalog.ErrProtocol, err)
	}
	entries, err := file.FetchEntries(fs, false)
	if err != nil {
		return catalog.Manifest{}, catalog.Wrap("read_manifest", mf.Path, catalog.ErrProtocol, err)
	}

	m := catalog.Manifest{
		Path:    mf.Path,
		Content: manifestContent(file.ManifestContent()),
		Entries: make([]catalog.ManifestEntry, 0, len(entries)),
	}
	for _, e := range entries {
		m.Entries = append(m.Entries, convertEntry(e))
	}
	return m, nil
}

// Close implements catalog.Catalog.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.tables)
	clear(c.manifests)
	return nil
}

// classify maps iceberg-go failures onto catalog error kinds.
func classify(op, resource string, err error) error {
	kind := catalog.ErrProtocol
	switch {
	case errors.Is(err, icecat.ErrNoSuchTable), errors.Is(err, icecat.ErrNoSuchNamespace):
		kind = catalog.ErrNotFound
	case errors.Is(err, icerest.ErrUnauthorized), errors.Is(err, icerest.ErrForbidden):
		kind = catalog.ErrConnect
	}
	return catalog.Wrap(op, resource, kind, err)
}
