// Package state holds the application state of tanic and the reducer that
// evolves it.
//
// An AppState value is immutable once built: Reduce returns a new value and
// shares every untouched part with its input. The store owns the only
// canonical copy; everyone else receives snapshots.
package state

import (
	"maps"
	"strconv"

	"github.com/tanic-org/tanic/internal/catalog"
)

// Summary keys carrying the row count of a snapshot.
const (
	SummaryKeyTotalRecords = "total-records"
	SummaryKeyRowCount     = "row-count"
)

// MaxNotifications bounds the notification list.
const MaxNotifications = 5

// AppState is the whole application state.
type AppState struct {
	Iceberg       IcebergState
	UI            UiState
	Notifications []Notification

	// connectAttempts counts ConnectTo actions applied so far.
	connectAttempts uint64
}

// New returns the initial state.
func New() AppState {
	return AppState{
		Iceberg: Initializing{},
		UI:      SplashScreen{},
	}
}

// IsTerminal reports whether both axes reached Exiting.
func (s AppState) IsTerminal() bool {
	_, ice := s.Iceberg.(Exiting)
	_, ui := s.UI.(UIExiting)
	return ice && ui
}

// ConnectAttempts returns how many ConnectTo actions have been applied. A
// change tells observers that a new connect request was made, even when the
// uri did not change.
func (s AppState) ConnectAttempts() uint64 {
	return s.connectAttempts
}

// ActiveConnection returns the connection the state is currently bound to.
func (s AppState) ActiveConnection() (ConnectionDetails, bool) {
	switch ice := s.Iceberg.(type) {
	case ConnectingTo:
		return ice.Conn, true
	case Connected:
		return ice.Metadata.Conn, true
	}
	return ConnectionDetails{}, false
}

// Metadata returns the retrieved catalog metadata when connected.
func (s AppState) Metadata() (CatalogMetadata, bool) {
	c, ok := s.Iceberg.(Connected)
	if !ok {
		return CatalogMetadata{}, false
	}
	return c.Metadata, true
}

// SelectedNamespace returns the namespace the UI currently points at.
func (s AppState) SelectedNamespace() (NamespaceDescriptor, bool) {
	md, ok := s.Metadata()
	if !ok {
		return NamespaceDescriptor{}, false
	}

	var sel Selection
	switch ui := s.UI.(type) {
	case ViewingNamespacesList:
		sel = ui.Selected
	case ViewingTablesList:
		sel = ui.Namespaces.Selected
	case ViewingTable:
		sel = ui.Tables.Namespaces.Selected
	default:
		return NamespaceDescriptor{}, false
	}

	idx, ok := sel.Get()
	if !ok {
		return NamespaceDescriptor{}, false
	}
	_, ns, ok := md.Namespaces.At(idx)
	return ns, ok
}

// SelectedTable returns the table the UI currently points at.
func (s AppState) SelectedTable() (TableDescriptor, bool) {
	var sel Selection
	switch ui := s.UI.(type) {
	case ViewingTablesList:
		sel = ui.Selected
	case ViewingTable:
		sel = ui.Tables.Selected
	default:
		return TableDescriptor{}, false
	}

	ns, ok := s.SelectedNamespace()
	if !ok || ns.Tables == nil {
		return TableDescriptor{}, false
	}
	idx, ok := sel.Get()
	if !ok {
		return TableDescriptor{}, false
	}
	_, t, ok := ns.Tables.At(idx)
	return t, ok
}

// IcebergState is the catalog axis of the state.
type IcebergState interface {
	isIcebergState()
}

// Initializing is the state before any connection was requested.
type Initializing struct{}

// ConnectingTo waits for the namespace list of Conn. Attempt identifies the
// ConnectTo action that produced this state.
type ConnectingTo struct {
	Conn    ConnectionDetails
	Attempt uint64
}

// Connected holds everything retrieved from the active connection.
type Connected struct {
	Metadata CatalogMetadata
}

// Exiting is terminal.
type Exiting struct{}

func (Initializing) isIcebergState() {}
func (ConnectingTo) isIcebergState() {}
func (Connected) isIcebergState()    {}
func (Exiting) isIcebergState()      {}

// CatalogMetadata is the metadata retrieved so far from one connection.
type CatalogMetadata struct {
	Conn       ConnectionDetails
	Namespaces OrderedMap[NamespaceDescriptor]
}

// NamespaceDescriptor describes one namespace. A nil Properties or Tables
// means not fetched yet; an empty one means the catalog has none.
type NamespaceDescriptor struct {
	Name       string
	Parts      catalog.Namespace
	Properties map[string]string
	Tables     *OrderedMap[TableDescriptor]
}

// TableCount returns the number of known tables, 0 when not fetched.
func (n NamespaceDescriptor) TableCount() int {
	if n.Tables == nil {
		return 0
	}
	return n.Tables.Len()
}

// TableDescriptor describes one table. Each field fills in independently as
// its fetch completes; absence means not fetched yet.
type TableDescriptor struct {
	Name            string
	Namespace       catalog.Namespace
	Summary         map[string]string
	Table           *catalog.Table
	CurrentSnapshot *catalog.Snapshot
	ManifestList    *catalog.ManifestList
	Manifests       OrderedMap[catalog.Manifest]
	DataFiles       map[string]catalog.DataFile
	ParquetMetadata map[string]catalog.ParquetMetadata
}

// Ident returns the catalog identifier of the table.
func (t TableDescriptor) Ident() catalog.TableIdent {
	return catalog.TableIdent{Namespace: t.Namespace, Name: t.Name}
}

// RowCount returns the row count from the current snapshot summary.
func (t TableDescriptor) RowCount() (uint64, bool) {
	if t.Summary == nil {
		return 0, false
	}
	for _, key := range []string{SummaryKeyTotalRecords, SummaryKeyRowCount} {
		if v, ok := t.Summary[key]; ok {
			n, err := strconv.ParseUint(v, 10, 64)
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func (t TableDescriptor) clone() TableDescriptor {
	t.DataFiles = maps.Clone(t.DataFiles)
	t.ParquetMetadata = maps.Clone(t.ParquetMetadata)
	return t
}

// UiState is the navigation axis of the state.
type UiState interface {
	isUiState()
}

// SplashScreen is shown until a namespace list arrives.
type SplashScreen struct{}

// ViewingNamespacesList shows the namespaces of the active connection.
type ViewingNamespacesList struct {
	Selected Selection
}

// ViewingTablesList shows the tables of the selected namespace.
type ViewingTablesList struct {
	Namespaces ViewingNamespacesList
	Selected   Selection
}

// ViewingTable shows the metadata of the selected table.
type ViewingTable struct {
	Tables ViewingTablesList
}

// UIExiting is terminal.
type UIExiting struct{}

func (SplashScreen) isUiState()          {}
func (ViewingNamespacesList) isUiState() {}
func (ViewingTablesList) isUiState()     {}
func (ViewingTable) isUiState()          {}
func (UIExiting) isUiState()             {}

// Notification is a non-blocking error report shown to the user.
type Notification struct {
	Resource string
	Message  string
}
