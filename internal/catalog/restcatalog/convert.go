package restcatalog

import (
	"maps"
	"time"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"

	"github.com/tanic-org/tanic/internal/catalog"
)

func convertTable(ident catalog.TableIdent, tbl *table.Table) catalog.Table {
	md := tbl.Metadata()
	out := catalog.Table{
		Ident:            ident,
		Location:         tbl.Location(),
		MetadataLocation: tbl.MetadataLocation(),
		FormatVersion:    md.Version(),
		LastUpdated:      time.UnixMilli(md.LastUpdatedMillis()).UTC(),
		Properties:       maps.Clone(map[string]string(tbl.Properties())),
		Columns:          convertSchema(tbl.Schema()),
	}
	if snap := tbl.CurrentSnapshot(); snap != nil {
		s := convertSnapshot(*snap)
		out.CurrentSnapshot = &s
	}
	return out
}

func convertSchema(schema *iceberg.Schema) []catalog.Column {
	if schema == nil {
		return nil
	}
	fields := schema.Fields()
	cols := make([]catalog.Column, len(fields))
	for i, f := range fields {
		cols[i] = catalog.Column{
			ID:       f.ID,
			Name:     f.Name,
			Type:     f.Type.String(),
			Required: f.Required,
		}
	}
	return cols
}

func convertSnapshot(snap table.Snapshot) catalog.Snapshot {
	out := catalog.Snapshot{
		ID:             snap.SnapshotID,
		SequenceNumber: snap.SequenceNumber,
		Timestamp:      time.UnixMilli(snap.TimestampMs).UTC(),
		ManifestList:   snap.ManifestList,
		Summary:        map[string]string{},
	}
	if snap.ParentSnapshotID != nil {
		parent := *snap.ParentSnapshotID
		out.ParentID = &parent
	}
	if snap.Summary != nil {
		out.Operation = string(snap.Summary.Operation)
		maps.Copy(out.Summary, snap.Summary.Properties)
		out.Summary["operation"] = out.Operation
	}
	return out
}

func convertManifestFile(mf iceberg.ManifestFile) catalog.ManifestFile {
	return catalog.ManifestFile{
		Path:            mf.FilePath(),
		Length:          mf.Length(),
		Content:         manifestContent(mf.ManifestContent()),
		PartitionSpecID: mf.PartitionSpecID(),
		SnapshotID:      mf.SnapshotID(),
		AddedFiles:      mf.AddedDataFiles(),
		ExistingFiles:   mf.ExistingDataFiles(),
		DeletedFiles:    mf.DeletedDataFiles(),
		AddedRows:       mf.AddedRows(),
	}
}

func convertEntry(e iceberg.ManifestEntry) catalog.ManifestEntry {
	df := e.DataFile()
	return catalog.ManifestEntry{
		Status:     entryStatus(e.Status()),
		SnapshotID: e.SnapshotID(),
		DataFile: catalog.DataFile{
			Path:          df.FilePath(),
			Format:        string(df.FileFormat()),
			Content:       fileContent(df.ContentType()),
			RecordCount:   df.Count(),
			FileSizeBytes: df.FileSizeBytes(),
		},
	}
}

func manifestContent(c iceberg.ManifestContent) string {
	if c == iceberg.ManifestContentDeletes {
		return catalog.ContentDeletes
	}
	return catalog.ContentData
}

func entryStatus(s iceberg.ManifestEntryStatus) string {
	switch s {
	case iceberg.EntryStatusADDED:
		return catalog.EntryAdded
	case iceberg.EntryStatusDELETED:
		return catalog.EntryDeleted
	}
	return catalog.EntryExisting
}

func fileContent(c iceberg.ManifestEntryContent) string {
	switch c {
	case iceberg.EntryContentPosDeletes:
		return catalog.FileContentPosDeletes
	case iceberg.EntryContentEqDeletes:
		return catalog.FileContentEqDeletes
	}
	return catalog.FileContentData
}
