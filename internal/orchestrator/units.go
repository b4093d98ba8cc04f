package orchestrator

import (
	"context"

	"github.com/tanic-org/tanic/internal/catalog"
	"github.com/tanic-org/tanic/internal/logger"
	"github.com/tanic-org/tanic/internal/state"
)

// Operation names used for latency tracking.
const (
	OpConnect             = "connect"
	OpListNamespaces      = "list_namespaces"
	OpNamespaceProperties = "namespace_properties"
	OpListTables          = "list_tables"
	OpLoadTable           = "load_table"
	OpReadManifestList    = "read_manifest_list"
	OpReadManifest        = "read_manifest"
	OpReadFooter          = "read_footer"
)

// openAndList opens the session's handle unless it already has one, then
// lists the root namespaces.
func (o *Orchestrator) openAndList(ctx context.Context, sess *session) error {
	h := sess.catalog()
	if h == nil {
		done := o.opts.Metrics.Tracker(OpConnect).Time()
		cat, err := catalog.ConnectWithRetry(ctx, o.connector, sess.conn.URI, o.newRetry())
		done(err)
		if err != nil {
			return err
		}
		if !sess.attach(cat) {
			cat.Close()
			return catalog.Wrap(OpConnect, sess.conn.URI, catalog.ErrCanceled, context.Canceled)
		}
		logger.Info("Connected to catalog", "name", sess.conn.Name, "uri", sess.conn.URI)
		h = cat
	}

	var names []catalog.Namespace
	err := o.call(ctx, OpListNamespaces, sess.conn.URI, func(ctx context.Context) (err error) {
		names, err = h.ListNamespaces(ctx)
		return err
	})
	if err != nil {
		return err
	}
	logger.Debug("orchestrator: namespaces listed", "uri", sess.conn.URI, "count", len(names))
	o.emit(ctx, sess, state.UpdateNamespacesList{Conn: sess.conn, Namespaces: names})
	return nil
}

func (o *Orchestrator) fetchProperties(ctx context.Context, sess *session, loader catalog.NamespaceLoader, ns state.NamespaceDescriptor) error {
	var props map[string]string
	err := o.call(ctx, OpNamespaceProperties, ns.Name, func(ctx context.Context) (err error) {
		props, err = loader.NamespaceProperties(ctx, ns.Parts)
		return err
	})
	if err != nil {
		return err
	}
	if props == nil {
		props = map[string]string{}
	}
	o.emit(ctx, sess, state.UpdateNamespaceProperties{Conn: sess.conn, Namespace: ns.Name, Properties: props})
	return nil
}

func (o *Orchestrator) listTables(ctx context.Context, sess *session, h catalog.Catalog, ns state.NamespaceDescriptor) error {
	var idents []catalog.TableIdent
	err := o.call(ctx, OpListTables, ns.Name, func(ctx context.Context) (err error) {
		idents, err = h.ListTables(ctx, ns.Parts)
		return err
	})
	if err != nil {
		return err
	}

	names := make([]string, len(idents))
	for i, id := range idents {
		names[i] = id.Name
	}
	o.emit(ctx, sess, state.UpdateNamespaceTableList{Conn: sess.conn, Namespace: ns.Name, Tables: names})
	return nil
}

func (o *Orchestrator) loadTable(ctx context.Context, sess *session, loader catalog.TableLoader, ns state.NamespaceDescriptor, t state.TableDescriptor) error {
	ident := catalog.TableIdent{Namespace: ns.Parts, Name: t.Name}
	var tbl catalog.Table
	err := o.call(ctx, OpLoadTable, ident.String(), func(ctx context.Context) (err error) {
		tbl, err = loader.LoadTable(ctx, ident)
		return err
	})
	if err != nil {
		return err
	}

	ref := state.TableRef{Conn: sess.conn, Namespace: ns.Name, Table: t.Name}
	if !o.emit(ctx, sess, state.UpdateTable{TableRef: ref, Table: tbl}) {
		return nil
	}
	summary := map[string]string{}
	if snap := tbl.CurrentSnapshot; snap != nil {
		if snap.Summary != nil {
			summary = snap.Summary
		}
		if !o.emit(ctx, sess, state.UpdateTableCurrentSnapshot{TableRef: ref, Snapshot: *snap}) {
			return nil
		}
	}
	o.emit(ctx, sess, state.UpdateTableSummary{TableRef: ref, Summary: summary})
	return nil
}

// readManifests reads the current manifest list of a table, every manifest
// it references and the footers of the first parquet data files. A failed
// manifest or footer is reported and skipped.
func (o *Orchestrator) readManifests(ctx context.Context, sess *session, loader catalog.TableLoader, ns state.NamespaceDescriptor, t state.TableDescriptor) error {
	ident := catalog.TableIdent{Namespace: ns.Parts, Name: t.Name}
	ref := state.TableRef{Conn: sess.conn, Namespace: ns.Name, Table: t.Name}
	key := sess.key(kindManifests, ns.Name, t.Name)

	var list catalog.ManifestList
	err := o.call(ctx, OpReadManifestList, ident.String(), func(ctx context.Context) (err error) {
		list, err = loader.ReadManifestList(ctx, ident)
		return err
	})
	if err != nil {
		return err
	}
	if !o.emit(ctx, sess, state.UpdateTableCurrentManifestList{TableRef: ref, ManifestList: list}) {
		return nil
	}

	var parquet []string
	for _, mf := range list.Manifests {
		var m catalog.Manifest
		err := o.call(ctx, OpReadManifest, mf.Path, func(ctx context.Context) (err error) {
			m, err = loader.ReadManifest(ctx, ident, mf)
			return err
		})
		if err != nil {
			if catalog.IsCanceled(err) {
				return err
			}
			o.fail(ctx, sess, key, err)
			continue
		}
		if !o.emit(ctx, sess, state.UpdateTableManifest{TableRef: ref, Path: mf.Path, Manifest: m}) {
			return nil
		}

		files := m.DataFiles()
		if !o.emitDataFiles(ctx, sess, ref, files) {
			return nil
		}
		for _, f := range files {
			if f.IsParquet() && len(parquet) < o.opts.FooterLimit {
				parquet = append(parquet, f.Path)
			}
		}
	}

	return o.readFooters(ctx, sess, ref, key, parquet)
}

// emitDataFiles reports the data files of one manifest. Large manifests
// are sent as a single action so the store publishes one state for them.
func (o *Orchestrator) emitDataFiles(ctx context.Context, sess *session, ref state.TableRef, files []catalog.DataFile) bool {
	if len(files) > o.opts.BatchThreshold {
		return o.emit(ctx, sess, state.UpdateTableDataFiles{TableRef: ref, DataFiles: files})
	}
	for _, f := range files {
		if !o.emit(ctx, sess, state.UpdateTableDataFile{TableRef: ref, DataFile: f}) {
			return false
		}
	}
	return true
}

func (o *Orchestrator) readFooters(ctx context.Context, sess *session, ref state.TableRef, key string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	var readers catalog.FooterReaders
	if fr, ok := sess.catalog().(catalog.FooterReader); ok {
		readers = append(readers, fr)
	}
	readers = append(readers, o.opts.Footers)

	for _, path := range paths {
		if !readers.Supports(path) {
			logger.Debug("orchestrator: no footer reader for path", "path", path)
			continue
		}
		var md catalog.ParquetMetadata
		err := o.call(ctx, OpReadFooter, path, func(ctx context.Context) (err error) {
			md, err = readers.ReadFooter(ctx, path)
			return err
		})
		if err != nil {
			if catalog.IsCanceled(err) {
				return err
			}
			o.fail(ctx, sess, key, err)
			continue
		}
		if !o.emit(ctx, sess, state.UpdateTableParquetMetadata{TableRef: ref, Path: path, Metadata: md}) {
			return nil
		}
	}
	return nil
}
