package catalog

import (
	"strings"
	"time"
)

// Namespace identifies a namespace by its hierarchical parts.
type Namespace []string

// ParseNamespace splits a dotted namespace name into its parts.
func ParseNamespace(s string) Namespace {
	if s == "" {
		return nil
	}
	return Namespace(strings.Split(s, "."))
}

// String returns the dotted display name.
func (n Namespace) String() string {
	return strings.Join(n, ".")
}

// TableIdent identifies a table within a namespace.
type TableIdent struct {
	Namespace Namespace
	Name      string
}

func (t TableIdent) String() string {
	if len(t.Namespace) == 0 {
		return t.Name
	}
	return t.Namespace.String() + "." + t.Name
}

// Column is one top-level field of a table schema.
type Column struct {
	ID       int
	Name     string
	Type     string
	Required bool
}

// Table is the loaded handle of a table: its metadata file and current schema.
type Table struct {
	Ident            TableIdent
	Location         string
	MetadataLocation string
	FormatVersion    int
	LastUpdated      time.Time
	Properties       map[string]string
	Columns          []Column
	CurrentSnapshot  *Snapshot
}

// Snapshot is a point-in-time version of a table.
type Snapshot struct {
	ID             int64
	ParentID       *int64
	SequenceNumber int64
	Timestamp      time.Time
	ManifestList   string
	Operation      string
	Summary        map[string]string
}

// Manifest content types.
const (
	ContentData    = "data"
	ContentDeletes = "deletes"
)

// ManifestFile is one entry of a snapshot's manifest list.
type ManifestFile struct {
	Path            string
	Length          int64
	Content         string
	PartitionSpecID int32
	SnapshotID      int64
	AddedFiles      int32
	ExistingFiles   int32
	DeletedFiles    int32
	AddedRows       int64
}

// ManifestList is the index of manifests belonging to a snapshot.
type ManifestList struct {
	Path      string
	Manifests []ManifestFile
}

// Manifest entry statuses.
const (
	EntryExisting = "existing"
	EntryAdded    = "added"
	EntryDeleted  = "deleted"
)

// ManifestEntry references one data file from a manifest.
type ManifestEntry struct {
	Status     string
	SnapshotID int64
	DataFile   DataFile
}

// Manifest is a decoded manifest file.
type Manifest struct {
	Path    string
	Content string
	Entries []ManifestEntry
}

// DataFiles returns the data files referenced by the manifest.
func (m Manifest) DataFiles() []DataFile {
	files := make([]DataFile, 0, len(m.Entries))
	for _, e := range m.Entries {
		files = append(files, e.DataFile)
	}
	return files
}

// Data file contents.
const (
	FileContentData       = "data"
	FileContentPosDeletes = "position-deletes"
	FileContentEqDeletes  = "equality-deletes"
)

// FileFormatParquet is the format name Iceberg records for parquet files.
const FileFormatParquet = "PARQUET"

// DataFile is a physical file holding table rows.
type DataFile struct {
	Path          string
	Format        string
	Content       string
	RecordCount   int64
	FileSizeBytes int64
}

// IsParquet reports whether the file is stored as parquet.
func (d DataFile) IsParquet() bool {
	return strings.EqualFold(d.Format, FileFormatParquet)
}

// ParquetMetadata summarises a parquet file footer.
type ParquetMetadata struct {
	Path          string
	Version       int32
	NumRows       int64
	RowGroups     int
	TotalByteSize int64
	CreatedBy     string
	Columns       []string
	KeyValue      map[string]string
}
