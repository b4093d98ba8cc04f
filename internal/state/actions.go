package state

import (
	"fmt"

	"github.com/tanic-org/tanic/internal/catalog"
)

// Action describes one state mutation. The set of actions is closed.
type Action interface {
	isAction()
}

// Lifecycle actions.
type (
	// Exit moves both axes to Exiting.
	Exit struct{}

	// ConnectTo switches to a connection, discarding retrieved metadata.
	ConnectTo struct {
		Conn ConnectionDetails
	}
)

// Metadata arrival actions. Each carries the connection its fetch was issued
// against and is dropped when that is no longer the active one.
type (
	UpdateNamespacesList struct {
		Conn       ConnectionDetails
		Namespaces []catalog.Namespace
	}

	UpdateNamespaceProperties struct {
		Conn       ConnectionDetails
		Namespace  string
		Properties map[string]string
	}

	UpdateNamespaceTableList struct {
		Conn      ConnectionDetails
		Namespace string
		Tables    []string
	}

	UpdateTable struct {
		TableRef
		Table catalog.Table
	}

	UpdateTableSummary struct {
		TableRef
		Summary map[string]string
	}

	UpdateTableCurrentSnapshot struct {
		TableRef
		Snapshot catalog.Snapshot
	}

	UpdateTableCurrentManifestList struct {
		TableRef
		ManifestList catalog.ManifestList
	}

	UpdateTableManifest struct {
		TableRef
		Path     string
		Manifest catalog.Manifest
	}

	UpdateTableDataFile struct {
		TableRef
		DataFile catalog.DataFile
	}

	// UpdateTableDataFiles records every data file of one manifest at once.
	UpdateTableDataFiles struct {
		TableRef
		DataFiles []catalog.DataFile
	}

	UpdateTableParquetMetadata struct {
		TableRef
		Path     string
		Metadata catalog.ParquetMetadata
	}

	// ReportError surfaces a failed fetch as a notification.
	ReportError struct {
		Conn     ConnectionDetails
		Resource string
		Message  string
	}
)

// TableRef addresses a table under a connection.
type TableRef struct {
	Conn      ConnectionDetails
	Namespace string
	Table     string
}

// UI navigation actions.
type (
	FocusPrevNamespace struct{}
	FocusNextNamespace struct{}
	SelectNamespace    struct{}

	FocusPrevTable struct{}
	FocusNextTable struct{}
	SelectTable    struct{}

	Escape struct{}

	DismissNotification struct{}
)

func (Exit) isAction()                           {}
func (ConnectTo) isAction()                      {}
func (UpdateNamespacesList) isAction()           {}
func (UpdateNamespaceProperties) isAction()      {}
func (UpdateNamespaceTableList) isAction()       {}
func (UpdateTable) isAction()                    {}
func (UpdateTableSummary) isAction()             {}
func (UpdateTableCurrentSnapshot) isAction()     {}
func (UpdateTableCurrentManifestList) isAction() {}
func (UpdateTableManifest) isAction()            {}
func (UpdateTableDataFile) isAction()            {}
func (UpdateTableDataFiles) isAction()           {}
func (UpdateTableParquetMetadata) isAction()     {}
func (ReportError) isAction()                    {}
func (FocusPrevNamespace) isAction()             {}
func (FocusNextNamespace) isAction()             {}
func (SelectNamespace) isAction()                {}
func (FocusPrevTable) isAction()                 {}
func (FocusNextTable) isAction()                 {}
func (SelectTable) isAction()                    {}
func (Escape) isAction()                         {}
func (DismissNotification) isAction()            {}

// ActionName returns a short name for logging. Payloads are omitted since
// they can be large.
func ActionName(a Action) string {
	switch a := a.(type) {
	case ConnectTo:
		return "ConnectTo(" + a.Conn.URI + ")"
	case UpdateNamespaceTableList:
		return "UpdateNamespaceTableList(" + a.Namespace + ")"
	case nil:
		return "<nil>"
	}
	return fmt.Sprintf("%T", a)[len("state."):]
}
