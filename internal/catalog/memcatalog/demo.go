package memcatalog

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tanic-org/tanic/internal/catalog"
)

// DemoURI is the connection uri of the built-in demo catalog.
const DemoURI = "memory://demo"

type demoTable struct {
	name    string
	columns []catalog.Column
	files   int
	rows    int64
}

var demoLayout = []struct {
	ns     string
	owner  string
	tables []demoTable
}{
	{"sales", "revenue-team", []demoTable{
		{"orders", []catalog.Column{
			{ID: 1, Name: "order_id", Type: "long", Required: true},
			{ID: 2, Name: "customer_id", Type: "long", Required: true},
			{ID: 3, Name: "amount", Type: "decimal(12,2)"},
			{ID: 4, Name: "placed_at", Type: "timestamptz"},
		}, 4, 1_250_000},
		{"refunds", []catalog.Column{
			{ID: 1, Name: "refund_id", Type: "long", Required: true},
			{ID: 2, Name: "order_id", Type: "long"},
			{ID: 3, Name: "reason", Type: "string"},
		}, 1, 8_400},
	}},
	{"marketing", "growth", []demoTable{
		{"campaigns", []catalog.Column{
			{ID: 1, Name: "campaign_id", Type: "int", Required: true},
			{ID: 2, Name: "channel", Type: "string"},
			{ID: 3, Name: "budget", Type: "double"},
		}, 2, 320},
	}},
	{"marketing.attribution", "growth", []demoTable{
		{"touches", []catalog.Column{
			{ID: 1, Name: "touch_id", Type: "uuid", Required: true},
			{ID: 2, Name: "campaign_id", Type: "int"},
			{ID: 3, Name: "ts", Type: "timestamp"},
		}, 3, 5_800_000},
	}},
	{"staging", "platform", nil},
}

// Demo returns a small fixed catalog with nested namespaces, an empty
// namespace and tables carrying snapshots, manifests and parquet footers.
func Demo() *Data {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d := &Data{}

	for i, ns := range demoLayout {
		nd := NamespaceData{
			Name: catalog.ParseNamespace(ns.ns),
			Properties: map[string]string{
				"owner":    ns.owner,
				"location": "memory://demo/warehouse/" + ns.ns,
			},
		}
		for j, t := range ns.tables {
			nd.Tables = append(nd.Tables, demoTableData(ns.ns, t, base.Add(time.Duration(i*24+j)*time.Hour)))
		}
		d.Namespaces = append(d.Namespaces, nd)
	}
	return d
}

func demoTableData(ns string, t demoTable, updated time.Time) TableData {
	loc := "memory://demo/warehouse/" + ns + "/" + t.name
	snapID := updated.UnixMilli()
	parent := snapID - 1000
	mlPath := fmt.Sprintf("%s/metadata/snap-%d.avro", loc, snapID)

	snap := catalog.Snapshot{
		ID:             snapID,
		ParentID:       &parent,
		SequenceNumber: 2,
		Timestamp:      updated,
		ManifestList:   mlPath,
		Operation:      "append",
		Summary: map[string]string{
			"operation":        "append",
			"total-records":    strconv.FormatInt(t.rows, 10),
			"total-data-files": strconv.Itoa(t.files),
			"added-data-files": "1",
		},
	}

	td := TableData{
		Name: t.name,
		Table: catalog.Table{
			Location:         loc,
			MetadataLocation: loc + "/metadata/00002.metadata.json",
			FormatVersion:    2,
			LastUpdated:      updated,
			Properties:       map[string]string{"write.format.default": "parquet"},
			Columns:          t.columns,
			CurrentSnapshot:  &snap,
		},
		Manifests: make(map[string]catalog.Manifest),
		Footers:   make(map[string]catalog.ParquetMetadata),
	}

	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}

	mfPath := fmt.Sprintf("%s/metadata/%d-m0.avro", loc, snapID)
	manifest := catalog.Manifest{Path: mfPath, Content: catalog.ContentData}
	perFile := t.rows / int64(t.files)
	for k := range t.files {
		path := fmt.Sprintf("%s/data/%05d-%d.parquet", loc, k, snapID)
		size := perFile * 24
		status := catalog.EntryExisting
		if k == t.files-1 {
			status = catalog.EntryAdded
		}
		manifest.Entries = append(manifest.Entries, catalog.ManifestEntry{
			Status:     status,
			SnapshotID: snapID,
			DataFile: catalog.DataFile{
				Path:          path,
				Format:        catalog.FileFormatParquet,
				Content:       catalog.FileContentData,
				RecordCount:   perFile,
				FileSizeBytes: size,
			},
		})
		td.Footers[path] = catalog.ParquetMetadata{
			Path:          path,
			Version:       2,
			NumRows:       perFile,
			RowGroups:     1 + int(perFile/500_000),
			TotalByteSize: size,
			CreatedBy:     "parquet-mr version 1.13.1",
			Columns:       names,
			KeyValue:      map[string]string{"iceberg.schema": "{...}"},
		}
	}
	td.Manifests[mfPath] = manifest

	td.ManifestList = catalog.ManifestList{
		Path: mlPath,
		Manifests: []catalog.ManifestFile{{
			Path:          mfPath,
			Length:        int64(4096 + 512*t.files),
			Content:       catalog.ContentData,
			SnapshotID:    snapID,
			AddedFiles:    1,
			ExistingFiles: int32(t.files - 1),
			AddedRows:     perFile,
		}},
	}
	return td
}
