package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanic-org/tanic/internal/catalog"
)

var (
	connA = NewConnection("a", "http://a")
	connB = NewConnection("b", "http://b")
)

func namespaces(names ...string) []catalog.Namespace {
	out := make([]catalog.Namespace, len(names))
	for i, n := range names {
		out[i] = catalog.ParseNamespace(n)
	}
	return out
}

func reduceAll(s AppState, actions ...Action) AppState {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

// scenarioA connects to http://a and lists ns1, ns2.
func scenarioA(t *testing.T) AppState {
	t.Helper()
	s := Reduce(New(), ConnectTo{Conn: connA})
	ct, ok := s.Iceberg.(ConnectingTo)
	require.True(t, ok, "expected ConnectingTo, got %T", s.Iceberg)
	assert.Equal(t, "http://a", ct.Conn.URI)

	return Reduce(s, UpdateNamespacesList{Conn: connA, Namespaces: namespaces("ns1", "ns2")})
}

func nsSelection(t *testing.T, s AppState) Selection {
	t.Helper()
	ui, ok := s.UI.(ViewingNamespacesList)
	require.True(t, ok, "expected ViewingNamespacesList, got %T", s.UI)
	return ui.Selected
}

func TestScenarioA_ConnectAndList(t *testing.T) {
	s := scenarioA(t)

	assert.Equal(t, Some(0), nsSelection(t, s))

	md, ok := s.Metadata()
	require.True(t, ok)
	assert.Equal(t, []string{"ns1", "ns2"}, md.Namespaces.Keys())
	for _, ns := range md.Namespaces.All() {
		assert.Nil(t, ns.Tables, "namespace %s", ns.Name)
		assert.Nil(t, ns.Properties, "namespace %s", ns.Name)
	}
}

func TestScenarioB_WrapAround(t *testing.T) {
	s := scenarioA(t)

	s = Reduce(s, FocusNextNamespace{})
	assert.Equal(t, Some(1), nsSelection(t, s))

	s = Reduce(s, FocusNextNamespace{})
	assert.Equal(t, Some(0), nsSelection(t, s))

	s = Reduce(s, FocusPrevNamespace{})
	assert.Equal(t, Some(1), nsSelection(t, s))
}

func TestScenarioC_SelectNamespaceThenTables(t *testing.T) {
	s := Reduce(scenarioA(t), SelectNamespace{})

	ui, ok := s.UI.(ViewingTablesList)
	require.True(t, ok, "expected ViewingTablesList, got %T", s.UI)
	assert.Equal(t, Some(0), ui.Namespaces.Selected)
	assert.Equal(t, None(), ui.Selected)

	s = Reduce(s, UpdateNamespaceTableList{Conn: connA, Namespace: "ns1", Tables: []string{"t1"}})

	ns, ok := s.SelectedNamespace()
	require.True(t, ok)
	assert.Equal(t, "ns1", ns.Name)
	require.NotNil(t, ns.Tables)
	assert.Equal(t, []string{"t1"}, ns.Tables.Keys())

	ui = s.UI.(ViewingTablesList)
	assert.Equal(t, Some(0), ui.Selected)
}

func TestScenarioD_EmptyNamespaceList(t *testing.T) {
	s := Reduce(scenarioA(t), UpdateNamespacesList{Conn: connA})

	assert.Equal(t, None(), nsSelection(t, s))
	md, _ := s.Metadata()
	assert.Equal(t, 0, md.Namespaces.Len())

	next, applied := Apply(s, FocusNextNamespace{})
	assert.False(t, applied)
	assert.Equal(t, s, next)

	_, applied = Apply(s, SelectNamespace{})
	assert.False(t, applied)
}

func TestScenarioE_EscapePreservesSelection(t *testing.T) {
	s := scenarioA(t)
	s = reduceAll(s,
		FocusNextNamespace{},
		SelectNamespace{},
		UpdateNamespaceTableList{Conn: connA, Namespace: "ns2", Tables: []string{"t1", "t2"}},
		FocusNextTable{},
		SelectTable{},
	)

	view, ok := s.UI.(ViewingTable)
	require.True(t, ok, "expected ViewingTable, got %T", s.UI)
	assert.Equal(t, Some(1), view.Tables.Selected)

	tbl, ok := s.SelectedTable()
	require.True(t, ok)
	assert.Equal(t, "t2", tbl.Name)

	s = Reduce(s, Escape{})
	tl, ok := s.UI.(ViewingTablesList)
	require.True(t, ok)
	assert.Equal(t, Some(1), tl.Selected)

	s = Reduce(s, Escape{})
	assert.Equal(t, Some(1), nsSelection(t, s))
}

func TestWrapAround_FullCycle(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7} {
		names := make([]string, n)
		for i := range names {
			names[i] = string(rune('a' + i))
		}
		s := Reduce(Reduce(New(), ConnectTo{Conn: connA}), UpdateNamespacesList{Conn: connA, Namespaces: namespaces(names...)})

		for range n {
			s = Reduce(s, FocusNextNamespace{})
		}
		assert.Equal(t, Some(0), nsSelection(t, s), "n=%d", n)

		for range n {
			s = Reduce(s, FocusPrevNamespace{})
		}
		assert.Equal(t, Some(0), nsSelection(t, s), "n=%d", n)
	}
}

func TestSingleElementFocusIsNoop(t *testing.T) {
	s := Reduce(Reduce(New(), ConnectTo{Conn: connA}), UpdateNamespacesList{Conn: connA, Namespaces: namespaces("only")})

	for _, a := range []Action{FocusNextNamespace{}, FocusPrevNamespace{}} {
		next, applied := Apply(s, a)
		assert.False(t, applied, "%T", a)
		assert.Equal(t, Some(0), nsSelection(t, next))
	}
}

func TestConnectToDiscardsMetadata(t *testing.T) {
	s := reduceAll(scenarioA(t),
		SelectNamespace{},
		UpdateNamespaceTableList{Conn: connA, Namespace: "ns1", Tables: []string{"t1"}},
		ConnectTo{Conn: connB},
	)

	_, ok := s.Metadata()
	assert.False(t, ok)
	assert.IsType(t, SplashScreen{}, s.UI)

	s = Reduce(s, UpdateNamespacesList{Conn: connB, Namespaces: namespaces("other")})
	md, ok := s.Metadata()
	require.True(t, ok)
	assert.Equal(t, []string{"other"}, md.Namespaces.Keys())
	assert.True(t, md.Conn.Equal(connB))
	assert.Equal(t, Some(0), nsSelection(t, s))
}

func TestConnectToBumpsAttempt(t *testing.T) {
	s := Reduce(New(), ConnectTo{Conn: connA})
	first := s.Iceberg.(ConnectingTo).Attempt

	s = Reduce(s, ConnectTo{Conn: connA})
	second := s.Iceberg.(ConnectingTo).Attempt

	assert.Greater(t, second, first)
}

func TestStaleActionsAreDropped(t *testing.T) {
	onA := scenarioA(t)
	onB := Reduce(Reduce(onA, ConnectTo{Conn: connB}), UpdateNamespacesList{Conn: connB, Namespaces: namespaces("ns1")})

	tests := []struct {
		name   string
		state  AppState
		action Action
	}{
		{"namespaces list while connecting elsewhere", Reduce(onA, ConnectTo{Conn: connB}), UpdateNamespacesList{Conn: connA, Namespaces: namespaces("x")}},
		{"table list from previous connection", onB, UpdateNamespaceTableList{Conn: connA, Namespace: "ns1", Tables: []string{"t1"}}},
		{"properties from previous connection", onB, UpdateNamespaceProperties{Conn: connA, Namespace: "ns1", Properties: map[string]string{"k": "v"}}},
		{"error from previous connection", onB, ReportError{Conn: connA, Resource: "ns1", Message: "boom"}},
		{"namespaces list from previous connection", onB, UpdateNamespacesList{Conn: connA, Namespaces: namespaces("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, applied := Apply(tt.state, tt.action)
			assert.False(t, applied)
			assert.Equal(t, tt.state, next)
		})
	}
}

func TestSameURIDifferentNameIsActive(t *testing.T) {
	s := scenarioA(t)
	alias := NewConnection("alias", connA.URI)

	s = Reduce(s, UpdateNamespaceTableList{Conn: alias, Namespace: "ns1", Tables: []string{"t1"}})
	ns, _ := s.Metadata()
	got, _ := ns.Namespaces.Get("ns1")
	assert.NotNil(t, got.Tables)
}

func TestUnknownPathsAreNoops(t *testing.T) {
	s := Reduce(scenarioA(t), UpdateNamespaceTableList{Conn: connA, Namespace: "ns1", Tables: []string{"t1"}})

	tests := []struct {
		name   string
		action Action
	}{
		{"missing namespace", UpdateNamespaceTableList{Conn: connA, Namespace: "nope", Tables: []string{"t"}}},
		{"table in unlisted namespace", UpdateTableSummary{TableRef: TableRef{Conn: connA, Namespace: "ns2", Table: "t1"}}},
		{"missing table", UpdateTable{TableRef: TableRef{Conn: connA, Namespace: "ns1", Table: "t9"}}},
		{"table nav on namespaces list", FocusNextTable{}},
		{"escape on namespaces list", Escape{}},
		{"select table on namespaces list", SelectTable{}},
		{"dismiss without notifications", DismissNotification{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, applied := Apply(s, tt.action)
			assert.False(t, applied)
			assert.Equal(t, s, next)
		})
	}
}

func TestTableUpdates(t *testing.T) {
	s := Reduce(scenarioA(t), UpdateNamespaceTableList{Conn: connA, Namespace: "ns1", Tables: []string{"t1"}})
	ref := TableRef{Conn: connA, Namespace: "ns1", Table: "t1"}

	s = reduceAll(s,
		UpdateTable{TableRef: ref, Table: catalog.Table{MetadataLocation: "s3://b/t1/metadata/v1.json"}},
		UpdateTableSummary{TableRef: ref, Summary: map[string]string{"total-records": "42"}},
		UpdateTableCurrentSnapshot{TableRef: ref, Snapshot: catalog.Snapshot{ID: 7}},
		UpdateTableCurrentManifestList{TableRef: ref, ManifestList: catalog.ManifestList{Path: "ml.avro"}},
		UpdateTableManifest{TableRef: ref, Path: "m1.avro", Manifest: catalog.Manifest{Path: "m1.avro"}},
		UpdateTableManifest{TableRef: ref, Path: "m2.avro", Manifest: catalog.Manifest{Path: "m2.avro"}},
		UpdateTableManifest{TableRef: ref, Path: "m1.avro", Manifest: catalog.Manifest{Path: "m1.avro", Content: catalog.ContentDeletes}},
		UpdateTableDataFile{TableRef: ref, DataFile: catalog.DataFile{Path: "f1.parquet"}},
		UpdateTableDataFiles{TableRef: ref, DataFiles: []catalog.DataFile{{Path: "f1.parquet", RecordCount: 3}, {Path: "f2.parquet"}}},
		UpdateTableParquetMetadata{TableRef: ref, Path: "f1.parquet", Metadata: catalog.ParquetMetadata{NumRows: 3}},
	)

	md, _ := s.Metadata()
	ns, _ := md.Namespaces.Get("ns1")
	tbl, ok := ns.Tables.Get("t1")
	require.True(t, ok)

	require.NotNil(t, tbl.Table)
	assert.Equal(t, "s3://b/t1/metadata/v1.json", tbl.Table.MetadataLocation)
	rows, ok := tbl.RowCount()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), rows)
	assert.Equal(t, int64(7), tbl.CurrentSnapshot.ID)
	assert.Equal(t, "ml.avro", tbl.ManifestList.Path)

	assert.Equal(t, []string{"m1.avro", "m2.avro"}, tbl.Manifests.Keys())
	m1, _ := tbl.Manifests.Get("m1.avro")
	assert.Equal(t, catalog.ContentDeletes, m1.Content)

	assert.Len(t, tbl.DataFiles, 2)
	assert.Equal(t, int64(3), tbl.DataFiles["f1.parquet"].RecordCount)
	assert.Equal(t, int64(3), tbl.ParquetMetadata["f1.parquet"].NumRows)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	ref := TableRef{Conn: connA, Namespace: "ns1", Table: "t1"}
	before := reduceAll(scenarioA(t),
		UpdateNamespaceTableList{Conn: connA, Namespace: "ns1", Tables: []string{"t1"}},
		UpdateTableDataFile{TableRef: ref, DataFile: catalog.DataFile{Path: "f1.parquet"}},
		UpdateTableManifest{TableRef: ref, Path: "m1.avro"},
	)

	md, _ := before.Metadata()
	ns, _ := md.Namespaces.Get("ns1")
	tbl, _ := ns.Tables.Get("t1")

	_ = reduceAll(before,
		UpdateTableDataFile{TableRef: ref, DataFile: catalog.DataFile{Path: "f2.parquet"}},
		UpdateTableManifest{TableRef: ref, Path: "m2.avro"},
		UpdateNamespaceProperties{Conn: connA, Namespace: "ns1", Properties: map[string]string{"owner": "x"}},
		UpdateNamespaceTableList{Conn: connA, Namespace: "ns2", Tables: []string{"t2"}},
	)

	md2, _ := before.Metadata()
	ns2, _ := md2.Namespaces.Get("ns1")
	tbl2, _ := ns2.Tables.Get("t1")
	assert.Len(t, tbl2.DataFiles, 1)
	assert.Equal(t, []string{"m1.avro"}, tbl2.Manifests.Keys())
	assert.Nil(t, ns2.Properties)
	other, _ := md2.Namespaces.Get("ns2")
	assert.Nil(t, other.Tables)
	assert.Equal(t, tbl, tbl2)
}

func TestTableListReplacesContents(t *testing.T) {
	s := reduceAll(scenarioA(t),
		SelectNamespace{},
		UpdateNamespaceTableList{Conn: connA, Namespace: "ns1", Tables: []string{"t1", "t2", "t3"}},
		FocusNextTable{},
		FocusNextTable{},
		UpdateNamespaceTableList{Conn: connA, Namespace: "ns1", Tables: []string{"t9"}},
	)

	ns, _ := s.SelectedNamespace()
	assert.Equal(t, []string{"t9"}, ns.Tables.Keys())
	assert.Equal(t, Some(0), s.UI.(ViewingTablesList).Selected)

	s = Reduce(s, UpdateNamespaceTableList{Conn: connA, Namespace: "ns1", Tables: nil})
	assert.Equal(t, None(), s.UI.(ViewingTablesList).Selected)
	ns, _ = s.SelectedNamespace()
	require.NotNil(t, ns.Tables)
	assert.Equal(t, 0, ns.Tables.Len())
}

func TestSelectionAlwaysValid(t *testing.T) {
	actions := []Action{
		FocusNextNamespace{}, SelectNamespace{}, FocusPrevTable{},
		UpdateNamespaceTableList{Conn: connA, Namespace: "ns1", Tables: []string{"a", "b"}},
		UpdateNamespaceTableList{Conn: connA, Namespace: "ns2", Tables: []string{"c"}},
		FocusNextTable{}, SelectTable{}, Escape{}, FocusPrevTable{}, Escape{},
		FocusPrevNamespace{}, SelectNamespace{}, FocusNextTable{}, SelectTable{},
		UpdateNamespaceTableList{Conn: connA, Namespace: "ns1", Tables: nil},
		Escape{}, Escape{}, ConnectTo{Conn: connA},
		UpdateNamespacesList{Conn: connA, Namespaces: namespaces("z")},
	}

	s := scenarioA(t)
	for i, a := range actions {
		s = Reduce(s, a)
		assertSelectionsValid(t, s, i)
	}
}

func assertSelectionsValid(t *testing.T, s AppState, step int) {
	t.Helper()
	md, ok := s.Metadata()
	if !ok {
		return
	}

	check := func(sel Selection, n int) {
		idx, ok := sel.Get()
		if n == 0 {
			assert.False(t, ok, "step %d: expected None for empty list", step)
			return
		}
		assert.True(t, ok, "step %d: expected Some for list of %d", step, n)
		assert.True(t, idx >= 0 && idx < n, "step %d: index %d out of [0,%d)", step, idx, n)
	}

	var nsSel, tblSel Selection
	hasTables := false
	switch ui := s.UI.(type) {
	case ViewingNamespacesList:
		nsSel = ui.Selected
	case ViewingTablesList:
		nsSel, tblSel, hasTables = ui.Namespaces.Selected, ui.Selected, true
	case ViewingTable:
		nsSel, tblSel, hasTables = ui.Tables.Namespaces.Selected, ui.Tables.Selected, true
	default:
		return
	}
	check(nsSel, md.Namespaces.Len())
	if hasTables {
		ns, _ := s.SelectedNamespace()
		check(tblSel, ns.TableCount())
	}
}

func TestExit(t *testing.T) {
	for _, s := range []AppState{New(), Reduce(New(), ConnectTo{Conn: connA}), scenarioA(t)} {
		next := Reduce(s, Exit{})
		assert.True(t, next.IsTerminal())

		after, applied := Apply(next, ConnectTo{Conn: connB})
		assert.False(t, applied)
		assert.True(t, after.IsTerminal())
	}
}

func TestNotificationsBounded(t *testing.T) {
	s := scenarioA(t)
	for i := range MaxNotifications + 3 {
		s = Reduce(s, ReportError{Conn: connA, Resource: "r", Message: string(rune('a' + i))})
	}

	require.Len(t, s.Notifications, MaxNotifications)
	assert.Equal(t, "d", s.Notifications[0].Message)
	assert.Equal(t, "h", s.Notifications[MaxNotifications-1].Message)

	s = Reduce(s, DismissNotification{})
	require.Len(t, s.Notifications, MaxNotifications-1)
	assert.Equal(t, "e", s.Notifications[0].Message)

	// Notifications never move the UI.
	assert.Equal(t, Some(0), nsSelection(t, s))
}

func TestActionName(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{Exit{}, "Exit"},
		{ConnectTo{Conn: connA}, "ConnectTo(http://a)"},
		{UpdateNamespaceTableList{Namespace: "ns1"}, "UpdateNamespaceTableList(ns1)"},
		{UpdateTableManifest{}, "UpdateTableManifest"},
		{nil, "<nil>"},
	}
	for _, tt := range tests {
		if got := ActionName(tt.action); got != tt.want {
			t.Errorf("ActionName(%T) = %q, want %q", tt.action, got, tt.want)
		}
	}
}
