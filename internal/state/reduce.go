package state

import (
	"maps"

	"github.com/tanic-org/tanic/internal/catalog"
)

// Reduce applies a to s and returns the resulting state. Actions that do not
// apply to s return s unchanged.
func Reduce(s AppState, a Action) AppState {
	next, _ := Apply(s, a)
	return next
}

// Apply is Reduce that also reports whether the action changed anything.
func Apply(s AppState, a Action) (AppState, bool) {
	if s.IsTerminal() {
		return s, false
	}

	var (
		next    AppState
		applied bool
	)
	switch a := a.(type) {
	case Exit:
		next, applied = s, true
		next.Iceberg = Exiting{}
		next.UI = UIExiting{}
		return next, applied

	case ConnectTo:
		next, applied = connectTo(s, a)
	case UpdateNamespacesList:
		next, applied = updateNamespacesList(s, a)
	case UpdateNamespaceProperties:
		next, applied = withNamespace(s, a.Conn, a.Namespace, func(ns NamespaceDescriptor) NamespaceDescriptor {
			ns.Properties = maps.Clone(a.Properties)
			if ns.Properties == nil {
				ns.Properties = map[string]string{}
			}
			return ns
		})
	case UpdateNamespaceTableList:
		next, applied = updateNamespaceTableList(s, a)

	case UpdateTable:
		next, applied = withTable(s, a.TableRef, func(t TableDescriptor) TableDescriptor {
			tbl := a.Table
			t.Table = &tbl
			return t
		})
	case UpdateTableSummary:
		next, applied = withTable(s, a.TableRef, func(t TableDescriptor) TableDescriptor {
			t.Summary = maps.Clone(a.Summary)
			if t.Summary == nil {
				t.Summary = map[string]string{}
			}
			return t
		})
	case UpdateTableCurrentSnapshot:
		next, applied = withTable(s, a.TableRef, func(t TableDescriptor) TableDescriptor {
			snap := a.Snapshot
			t.CurrentSnapshot = &snap
			return t
		})
	case UpdateTableCurrentManifestList:
		next, applied = withTable(s, a.TableRef, func(t TableDescriptor) TableDescriptor {
			ml := a.ManifestList
			t.ManifestList = &ml
			return t
		})
	case UpdateTableManifest:
		next, applied = withTable(s, a.TableRef, func(t TableDescriptor) TableDescriptor {
			path := a.Path
			if path == "" {
				path = a.Manifest.Path
			}
			t.Manifests = t.Manifests.With(path, a.Manifest)
			return t
		})
	case UpdateTableDataFile:
		next, applied = withTable(s, a.TableRef, func(t TableDescriptor) TableDescriptor {
			t = t.clone()
			if t.DataFiles == nil {
				t.DataFiles = make(map[string]catalog.DataFile, 1)
			}
			t.DataFiles[a.DataFile.Path] = a.DataFile
			return t
		})
	case UpdateTableDataFiles:
		next, applied = withTable(s, a.TableRef, func(t TableDescriptor) TableDescriptor {
			t = t.clone()
			if t.DataFiles == nil {
				t.DataFiles = make(map[string]catalog.DataFile, len(a.DataFiles))
			}
			for _, df := range a.DataFiles {
				t.DataFiles[df.Path] = df
			}
			return t
		})
	case UpdateTableParquetMetadata:
		next, applied = withTable(s, a.TableRef, func(t TableDescriptor) TableDescriptor {
			t = t.clone()
			if t.ParquetMetadata == nil {
				t.ParquetMetadata = make(map[string]catalog.ParquetMetadata, 1)
			}
			path := a.Path
			if path == "" {
				path = a.Metadata.Path
			}
			t.ParquetMetadata[path] = a.Metadata
			return t
		})

	case ReportError:
		next, applied = reportError(s, a)
	case DismissNotification:
		if len(s.Notifications) == 0 {
			return s, false
		}
		next, applied = s, true
		next.Notifications = s.Notifications[1:len(s.Notifications):len(s.Notifications)]
		return next, applied

	case FocusPrevNamespace, FocusNextNamespace, SelectNamespace,
		FocusPrevTable, FocusNextTable, SelectTable, Escape:
		next, applied = navigate(s, a)

	default:
		return s, false
	}

	if !applied {
		return s, false
	}
	return normalizeUI(next), true
}

func connectTo(s AppState, a ConnectTo) (AppState, bool) {
	next := s
	next.connectAttempts++
	next.Iceberg = ConnectingTo{Conn: a.Conn, Attempt: next.connectAttempts}
	next.UI = SplashScreen{}
	return next, true
}

func updateNamespacesList(s AppState, a UpdateNamespacesList) (AppState, bool) {
	active, ok := s.ActiveConnection()
	if !ok || !active.Equal(a.Conn) {
		return s, false
	}

	names := make([]string, len(a.Namespaces))
	parts := make(map[string]catalog.Namespace, len(a.Namespaces))
	for i, ns := range a.Namespaces {
		names[i] = ns.String()
		parts[names[i]] = ns
	}

	nsMap := orderedFrom(names, func(name string) NamespaceDescriptor {
		return NamespaceDescriptor{Name: name, Parts: parts[name]}
	})
	md := CatalogMetadata{Conn: active, Namespaces: nsMap}

	next := s
	next.Iceberg = Connected{Metadata: md}
	next.UI = ViewingNamespacesList{Selected: first(md.Namespaces.Len())}
	return next, true
}

func updateNamespaceTableList(s AppState, a UpdateNamespaceTableList) (AppState, bool) {
	next, applied := withNamespace(s, a.Conn, a.Namespace, func(ns NamespaceDescriptor) NamespaceDescriptor {
		tables := orderedFrom(a.Tables, func(name string) TableDescriptor {
			return TableDescriptor{Name: name, Namespace: ns.Parts}
		})
		ns.Tables = &tables
		return ns
	})
	if !applied {
		return s, false
	}

	// A fresh list restarts the table selection of the namespace on screen.
	if ui, ok := next.UI.(ViewingTablesList); ok {
		if cur, ok := next.SelectedNamespace(); ok && cur.Name == a.Namespace {
			ui.Selected = first(len(a.Tables))
			next.UI = ui
		}
	}
	return next, true
}

// connected returns the metadata when conn is the active connection.
func connected(s AppState, conn ConnectionDetails) (CatalogMetadata, bool) {
	md, ok := s.Metadata()
	if !ok || !md.Conn.Equal(conn) {
		return CatalogMetadata{}, false
	}
	return md, true
}

func withNamespace(s AppState, conn ConnectionDetails, name string, update func(NamespaceDescriptor) NamespaceDescriptor) (AppState, bool) {
	md, ok := connected(s, conn)
	if !ok {
		return s, false
	}
	ns, ok := md.Namespaces.Get(name)
	if !ok {
		return s, false
	}

	md.Namespaces = md.Namespaces.With(name, update(ns))
	next := s
	next.Iceberg = Connected{Metadata: md}
	return next, true
}

func withTable(s AppState, ref TableRef, update func(TableDescriptor) TableDescriptor) (AppState, bool) {
	md, ok := connected(s, ref.Conn)
	if !ok {
		return s, false
	}
	ns, ok := md.Namespaces.Get(ref.Namespace)
	if !ok || ns.Tables == nil {
		return s, false
	}
	t, ok := ns.Tables.Get(ref.Table)
	if !ok {
		return s, false
	}

	tables := ns.Tables.With(ref.Table, update(t))
	ns.Tables = &tables
	md.Namespaces = md.Namespaces.With(ref.Namespace, ns)

	next := s
	next.Iceberg = Connected{Metadata: md}
	return next, true
}

func reportError(s AppState, a ReportError) (AppState, bool) {
	if !a.Conn.IsZero() {
		active, ok := s.ActiveConnection()
		if !ok || !active.Equal(a.Conn) {
			return s, false
		}
	}

	notes := make([]Notification, 0, MaxNotifications)
	if keep := len(s.Notifications) - (MaxNotifications - 1); keep > 0 {
		notes = append(notes, s.Notifications[keep:]...)
	} else {
		notes = append(notes, s.Notifications...)
	}
	notes = append(notes, Notification{Resource: a.Resource, Message: a.Message})

	next := s
	next.Notifications = notes
	return next, true
}

func navigate(s AppState, a Action) (AppState, bool) {
	md, ok := s.Metadata()
	if !ok {
		return s, false
	}

	next := s
	switch ui := s.UI.(type) {
	case ViewingNamespacesList:
		n := md.Namespaces.Len()
		switch a.(type) {
		case FocusPrevNamespace:
			next.UI = ViewingNamespacesList{Selected: ui.Selected.prev(n)}
		case FocusNextNamespace:
			next.UI = ViewingNamespacesList{Selected: ui.Selected.next(n)}
		case SelectNamespace:
			if ui.Selected.IsNone() {
				return s, false
			}
			ns, _ := s.SelectedNamespace()
			next.UI = ViewingTablesList{Namespaces: ui, Selected: first(ns.TableCount())}
		default:
			return s, false
		}

	case ViewingTablesList:
		ns, _ := s.SelectedNamespace()
		n := ns.TableCount()
		switch a.(type) {
		case FocusPrevTable:
			ui.Selected = ui.Selected.prev(n)
			next.UI = ui
		case FocusNextTable:
			ui.Selected = ui.Selected.next(n)
			next.UI = ui
		case SelectTable:
			if ui.Selected.IsNone() {
				return s, false
			}
			next.UI = ViewingTable{Tables: ui}
		case Escape:
			next.UI = ui.Namespaces
		default:
			return s, false
		}

	case ViewingTable:
		if _, ok := a.(Escape); !ok {
			return s, false
		}
		next.UI = ui.Tables

	default:
		return s, false
	}

	if next.UI == s.UI {
		return s, false
	}
	return next, true
}

// normalizeUI keeps every selection valid for the list it indexes.
func normalizeUI(s AppState) AppState {
	md, ok := s.Metadata()
	if !ok {
		switch s.UI.(type) {
		case ViewingNamespacesList, ViewingTablesList, ViewingTable:
			s.UI = SplashScreen{}
		}
		return s
	}

	nsCount := md.Namespaces.Len()
	tableCount := func(sel Selection) int {
		idx, ok := sel.Get()
		if !ok {
			return 0
		}
		_, ns, _ := md.Namespaces.At(idx)
		return ns.TableCount()
	}

	switch ui := s.UI.(type) {
	case ViewingNamespacesList:
		ui.Selected = ui.Selected.clamp(nsCount)
		s.UI = ui
	case ViewingTablesList:
		ui.Namespaces.Selected = ui.Namespaces.Selected.clamp(nsCount)
		if ui.Namespaces.Selected.IsNone() {
			s.UI = ui.Namespaces
			break
		}
		ui.Selected = ui.Selected.clamp(tableCount(ui.Namespaces.Selected))
		s.UI = ui
	case ViewingTable:
		tl := ui.Tables
		tl.Namespaces.Selected = tl.Namespaces.Selected.clamp(nsCount)
		if tl.Namespaces.Selected.IsNone() {
			s.UI = tl.Namespaces
			break
		}
		tl.Selected = tl.Selected.clamp(tableCount(tl.Namespaces.Selected))
		if tl.Selected.IsNone() {
			s.UI = tl
			break
		}
		s.UI = ViewingTable{Tables: tl}
	}
	return s
}
