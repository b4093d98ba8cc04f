package views

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/tanic-org/tanic/internal/catalog"
	"github.com/tanic-org/tanic/internal/state"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name                string
		n, selected, height int
		wantStart, wantEnd  int
	}{
		{"fits", 3, 1, 10, 0, 3},
		{"no height", 30, 5, 0, 0, 30},
		{"top", 30, 0, 10, 0, 10},
		{"middle", 30, 15, 10, 10, 20},
		{"bottom", 30, 29, 10, 20, 30},
		{"nothing selected", 30, -1, 10, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := window(tt.n, tt.selected, tt.height)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("window(%d, %d, %d) = [%d, %d), want [%d, %d)",
					tt.n, tt.selected, tt.height, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestCell(t *testing.T) {
	if got := cell("namespace", 5, false); got != "name…" {
		t.Errorf("cell truncated = %q", got)
	}
	if got := cell("ab", 4, true); got != "  ab" {
		t.Errorf("cell right aligned = %q", got)
	}
	if got := cell("ab", 4, false); got != "ab  " {
		t.Errorf("cell left aligned = %q", got)
	}
	if got := cell("x", 0, false); got != "" {
		t.Errorf("cell zero width = %q", got)
	}
}

func sampleMetadata() state.CatalogMetadata {
	tables := state.NewOrderedMap[state.TableDescriptor]().
		With("orders", state.TableDescriptor{
			Name:      "orders",
			Namespace: catalog.Namespace{"sales"},
			Summary: map[string]string{
				"total-records":    "1250000",
				"total-data-files": "12",
				"total-files-size": "3000000",
			},
		})
	namespaces := state.NewOrderedMap[state.NamespaceDescriptor]().
		With("sales", state.NamespaceDescriptor{
			Name:       "sales",
			Parts:      catalog.Namespace{"sales"},
			Properties: map[string]string{"owner": "finance"},
			Tables:     &tables,
		}).
		With("staging", state.NamespaceDescriptor{
			Name:  "staging",
			Parts: catalog.Namespace{"staging"},
		})
	return state.CatalogMetadata{
		Conn:       state.NewConnection("demo", "memory://demo"),
		Namespaces: namespaces,
	}
}

func TestNamespaces(t *testing.T) {
	out := ansi.Strip(Namespaces(sampleMetadata(), state.Some(1), 100, 20))

	for _, want := range []string{"Namespaces (2)", "sales", "finance", "staging", loading} {
		if !strings.Contains(out, want) {
			t.Errorf("namespaces view missing %q:\n%s", want, out)
		}
	}
}

func TestNamespaces_Empty(t *testing.T) {
	md := state.CatalogMetadata{Namespaces: state.NewOrderedMap[state.NamespaceDescriptor]()}
	out := ansi.Strip(Namespaces(md, state.None(), 80, 10))
	if !strings.Contains(out, "nothing here") {
		t.Errorf("empty namespaces view:\n%s", out)
	}
}

func TestTables(t *testing.T) {
	md := sampleMetadata()
	sales, _ := md.Namespaces.Get("sales")
	out := ansi.Strip(Tables(sales, state.Some(0), 120, 20))
	for _, want := range []string{"Tables in sales (1)", "orders", "1,250,000", "12", "3.0 MB"} {
		if !strings.Contains(out, want) {
			t.Errorf("tables view missing %q:\n%s", want, out)
		}
	}

	staging, _ := md.Namespaces.Get("staging")
	out = ansi.Strip(Tables(staging, state.None(), 120, 20))
	if !strings.Contains(out, "loading tables") {
		t.Errorf("unfetched tables view:\n%s", out)
	}
}

func TestTable(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := &catalog.Snapshot{ID: 42, Timestamp: ts, Operation: "append"}
	td := state.TableDescriptor{
		Name:      "orders",
		Namespace: catalog.Namespace{"sales"},
		Summary:   map[string]string{"total-records": "10"},
		Table: &catalog.Table{
			Ident:            catalog.TableIdent{Namespace: catalog.Namespace{"sales"}, Name: "orders"},
			Location:         "s3://warehouse/sales/orders",
			MetadataLocation: "s3://warehouse/sales/orders/metadata/v1.json",
			FormatVersion:    2,
			Columns:          []catalog.Column{{ID: 1, Name: "id", Type: "long", Required: true}},
			CurrentSnapshot:  snap,
		},
		CurrentSnapshot: snap,
		ManifestList: &catalog.ManifestList{
			Manifests: []catalog.ManifestFile{{Path: "m0.avro", Content: catalog.ContentData, Length: 2048}},
		},
		Manifests: state.NewOrderedMap[catalog.Manifest]().With("m0.avro", catalog.Manifest{
			Path:    "m0.avro",
			Entries: []catalog.ManifestEntry{{Status: catalog.EntryAdded}},
		}),
		DataFiles: map[string]catalog.DataFile{
			"f0.parquet": {Path: "f0.parquet", Format: "PARQUET", RecordCount: 10, FileSizeBytes: 1000},
		},
	}

	out := ansi.Strip(Table(td, "2006-01-02", 140, 60))
	for _, want := range []string{
		"sales.orders",
		"s3://warehouse/sales/orders",
		"2024-05-01",
		"append",
		"Schema (1 columns)",
		"required",
		"1 entries",
		"1 files, 10 records, 1.0 kB",
		"parquet: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table view missing %q:\n%s", want, out)
		}
	}
}

func TestTable_Loading(t *testing.T) {
	td := state.TableDescriptor{Name: "orders", Namespace: catalog.Namespace{"sales"}}
	out := ansi.Strip(Table(td, time.DateTime, 80, 20))
	if !strings.Contains(out, "loading table metadata") {
		t.Errorf("loading table view:\n%s", out)
	}
}

func TestTableLocation(t *testing.T) {
	if _, ok := TableLocation(state.TableDescriptor{}); ok {
		t.Error("TableLocation of an unloaded table reported ok")
	}
	td := state.TableDescriptor{Table: &catalog.Table{Location: "s3://a"}}
	if got, ok := TableLocation(td); !ok || got != "s3://a" {
		t.Errorf("TableLocation fallback = %q, %v", got, ok)
	}
	td.Table.MetadataLocation = "s3://a/metadata/v3.json"
	if got, _ := TableLocation(td); got != "s3://a/metadata/v3.json" {
		t.Errorf("TableLocation = %q", got)
	}
}
