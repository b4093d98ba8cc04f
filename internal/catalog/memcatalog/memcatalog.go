// Package memcatalog serves catalog metadata from memory. It backs the
// memory://demo connection and the orchestrator tests, which use its call
// counters and hooks to observe and steer fetches.
package memcatalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/tanic-org/tanic/internal/catalog"
)

// Operation names passed to hooks and counted by Calls.
const (
	OpConnect             = "connect"
	OpListNamespaces      = "list_namespaces"
	OpListTables          = "list_tables"
	OpNamespaceProperties = "namespace_properties"
	OpLoadTable           = "load_table"
	OpReadManifestList    = "read_manifest_list"
	OpReadManifest        = "read_manifest"
	OpReadFooter          = "read_footer"
)

// Scheme is the URI scheme served by Connector.
const Scheme = "memory"

// Data is the content of one in-memory catalog.
type Data struct {
	Namespaces []NamespaceData
}

// NamespaceData is one namespace and its tables.
type NamespaceData struct {
	Name       catalog.Namespace
	Properties map[string]string
	Tables     []TableData
}

// TableData is one table with everything below it.
type TableData struct {
	Name         string
	Table        catalog.Table
	ManifestList catalog.ManifestList
	Manifests    map[string]catalog.Manifest
	Footers      map[string]catalog.ParquetMetadata
}

// Hook runs before every operation. A non-nil error fails the operation.
// Hooks may block; they should honor ctx.
type Hook func(ctx context.Context, op, resource string) error

// Connector hands out catalogs registered under a URI.
type Connector struct {
	mu    sync.Mutex
	data  map[string]*Data
	hook  Hook
	calls map[string]int
}

// NewConnector returns a connector with no catalogs registered.
func NewConnector() *Connector {
	return &Connector{
		data:  make(map[string]*Data),
		calls: make(map[string]int),
	}
}

// Register serves d for uri.
func (c *Connector) Register(uri string, d *Data) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key(uri)] = d
}

// SetHook installs fn as the operation hook. A nil fn removes it.
func (c *Connector) SetHook(fn Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hook = fn
}

// Calls returns how many times op was invoked.
func (c *Connector) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// ResetCalls zeroes the call counters.
func (c *Connector) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.calls)
}

// enter counts op and runs the hook outside the lock.
func (c *Connector) enter(ctx context.Context, op, resource string) error {
	c.mu.Lock()
	c.calls[op]++
	hook := c.hook
	c.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, op, resource); err != nil {
			kind := catalog.ErrProtocol
			if op == OpConnect {
				kind = catalog.ErrConnect
			}
			return catalog.Wrap(op, resource, kind, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return catalog.Wrap(op, resource, catalog.ErrCanceled, err)
	}
	return nil
}

// Connect implements catalog.Connector.
func (c *Connector) Connect(ctx context.Context, uri string) (catalog.Catalog, error) {
	if err := c.enter(ctx, OpConnect, uri); err != nil {
		return nil, err
	}

	c.mu.Lock()
	d, ok := c.data[key(uri)]
	c.mu.Unlock()
	if !ok {
		return nil, &catalog.Error{Op: OpConnect, Resource: uri, Kind: catalog.ErrConnect, Err: fmt.Errorf("no in-memory catalog registered")}
	}
	return &Catalog{conn: c, uri: uri, data: d}, nil
}

func key(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != Scheme {
		return uri
	}
	return Scheme + "://" + u.Host + strings.TrimSuffix(u.Path, "/")
}

// Catalog is a handle on one Data. It implements catalog.Catalog,
// catalog.NamespaceLoader, catalog.TableLoader and catalog.FooterReader.
type Catalog struct {
	conn *Connector
	uri  string
	data *Data

	mu     sync.Mutex
	closed bool
}

var (
	_ catalog.Catalog         = (*Catalog)(nil)
	_ catalog.NamespaceLoader = (*Catalog)(nil)
	_ catalog.TableLoader     = (*Catalog)(nil)
	_ catalog.FooterReader    = (*Catalog)(nil)
)

func (c *Catalog) enter(ctx context.Context, op, resource string) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return &catalog.Error{Op: op, Resource: resource, Kind: catalog.ErrConnect, Err: fmt.Errorf("catalog closed")}
	}
	return c.conn.enter(ctx, op, resource)
}

// ListNamespaces implements catalog.Catalog.
func (c *Catalog) ListNamespaces(ctx context.Context) ([]catalog.Namespace, error) {
	if err := c.enter(ctx, OpListNamespaces, c.uri); err != nil {
		return nil, err
	}
	out := make([]catalog.Namespace, len(c.data.Namespaces))
	for i, ns := range c.data.Namespaces {
		out[i] = ns.Name
	}
	return out, nil
}

// ListTables implements catalog.Catalog.
func (c *Catalog) ListTables(ctx context.Context, ns catalog.Namespace) ([]catalog.TableIdent, error) {
	if err := c.enter(ctx, OpListTables, ns.String()); err != nil {
		return nil, err
	}
	nd, err := c.namespace(OpListTables, ns)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.TableIdent, len(nd.Tables))
	for i, t := range nd.Tables {
		out[i] = catalog.TableIdent{Namespace: nd.Name, Name: t.Name}
	}
	return out, nil
}

// NamespaceProperties implements catalog.NamespaceLoader.
func (c *Catalog) NamespaceProperties(ctx context.Context, ns catalog.Namespace) (map[string]string, error) {
	if err := c.enter(ctx, OpNamespaceProperties, ns.String()); err != nil {
		return nil, err
	}
	nd, err := c.namespace(OpNamespaceProperties, ns)
	if err != nil {
		return nil, err
	}
	props := make(map[string]string, len(nd.Properties))
	for k, v := range nd.Properties {
		props[k] = v
	}
	return props, nil
}

// LoadTable implements catalog.TableLoader.
func (c *Catalog) LoadTable(ctx context.Context, ident catalog.TableIdent) (catalog.Table, error) {
	if err := c.enter(ctx, OpLoadTable, ident.String()); err != nil {
		return catalog.Table{}, err
	}
	td, err := c.table(OpLoadTable, ident)
	if err != nil {
		return catalog.Table{}, err
	}
	tbl := td.Table
	tbl.Ident = ident
	return tbl, nil
}

// ReadManifestList implements catalog.TableLoader.
func (c *Catalog) ReadManifestList(ctx context.Context, ident catalog.TableIdent) (catalog.ManifestList, error) {
	if err := c.enter(ctx, OpReadManifestList, ident.String()); err != nil {
		return catalog.ManifestList{}, err
	}
	td, err := c.table(OpReadManifestList, ident)
	if err != nil {
		return catalog.ManifestList{}, err
	}
	return td.ManifestList, nil
}

// ReadManifest implements catalog.TableLoader.
func (c *Catalog) ReadManifest(ctx context.Context, ident catalog.TableIdent, mf catalog.ManifestFile) (catalog.Manifest, error) {
	if err := c.enter(ctx, OpReadManifest, mf.Path); err != nil {
		return catalog.Manifest{}, err
	}
	td, err := c.table(OpReadManifest, ident)
	if err != nil {
		return catalog.Manifest{}, err
	}
	m, ok := td.Manifests[mf.Path]
	if !ok {
		return catalog.Manifest{}, &catalog.Error{Op: OpReadManifest, Resource: mf.Path, Kind: catalog.ErrNotFound}
	}
	return m, nil
}

// Supports implements catalog.FooterReader for in-memory file paths.
func (c *Catalog) Supports(path string) bool {
	return strings.HasPrefix(path, Scheme+"://")
}

// ReadFooter implements catalog.FooterReader.
func (c *Catalog) ReadFooter(ctx context.Context, path string) (catalog.ParquetMetadata, error) {
	if err := c.enter(ctx, OpReadFooter, path); err != nil {
		return catalog.ParquetMetadata{}, err
	}
	for _, ns := range c.data.Namespaces {
		for _, t := range ns.Tables {
			if md, ok := t.Footers[path]; ok {
				return md, nil
			}
		}
	}
	return catalog.ParquetMetadata{}, &catalog.Error{Op: OpReadFooter, Resource: path, Kind: catalog.ErrNotFound}
}

// Close implements catalog.Catalog.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Catalog) namespace(op string, ns catalog.Namespace) (*NamespaceData, error) {
	name := ns.String()
	for i := range c.data.Namespaces {
		if c.data.Namespaces[i].Name.String() == name {
			return &c.data.Namespaces[i], nil
		}
	}
	return nil, &catalog.Error{Op: op, Resource: name, Kind: catalog.ErrNotFound}
}

func (c *Catalog) table(op string, ident catalog.TableIdent) (*TableData, error) {
	nd, err := c.namespace(op, ident.Namespace)
	if err != nil {
		return nil, err
	}
	for i := range nd.Tables {
		if nd.Tables[i].Name == ident.Name {
			return &nd.Tables[i], nil
		}
	}
	return nil, &catalog.Error{Op: op, Resource: ident.String(), Kind: catalog.ErrNotFound}
}
