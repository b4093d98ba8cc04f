// Package views renders the catalog browser screens from a state snapshot.
// Every function here is pure: it reads state and returns a string.
package views

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tanic-org/tanic/internal/catalog"
	"github.com/tanic-org/tanic/internal/state"
	"github.com/tanic-org/tanic/internal/ui/styles"
)

const loading = "…"

// Splash renders the screen shown while waiting for the namespace list.
func Splash(conn state.ConnectionDetails, connecting bool, spinner string, width, height int) string {
	title := styles.TitleStyle.Render("tanic")
	var line string
	switch {
	case connecting:
		line = spinner + " connecting to " + styles.AccentStyle.Render(conn.String())
	default:
		line = styles.MutedStyle.Render("no catalog selected, pass a uri or --connection")
	}
	body := lipgloss.JoinVertical(lipgloss.Center, title, "", line)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

var namespaceColumns = []column{
	{title: "NAMESPACE", width: 0},
	{title: "TABLES", width: 8, right: true},
	{title: "OWNER", width: 14},
	{title: "LOCATION", width: 0},
}

// Namespaces renders the namespace list of md.
func Namespaces(md state.CatalogMetadata, sel state.Selection, width, height int) string {
	cols := layout(namespaceColumns, width-6)
	rows := make([][]string, 0, md.Namespaces.Len())
	for _, ns := range md.Namespaces.All() {
		tables := loading
		if ns.Tables != nil {
			tables = humanize.Comma(int64(ns.TableCount()))
		}
		owner, location := loading, loading
		if ns.Properties != nil {
			owner = orDash(ns.Properties["owner"])
			location = orDash(ns.Properties["location"])
		}
		rows = append(rows, []string{ns.Name, tables, owner, location})
	}
	title := fmt.Sprintf("Namespaces (%d)", md.Namespaces.Len())
	return list(title, cols, rows, sel, width, height)
}

var tableColumns = []column{
	{title: "TABLE", width: 0},
	{title: "ROWS", width: 14, right: true},
	{title: "FILES", width: 8, right: true},
	{title: "SIZE", width: 10, right: true},
	{title: "UPDATED", width: 16},
}

// Tables renders the table list of ns.
func Tables(ns state.NamespaceDescriptor, sel state.Selection, width, height int) string {
	cols := layout(tableColumns, width-6)
	title := "Tables in " + ns.Name
	if ns.Tables == nil {
		return panel(title+" "+loading, styles.MutedStyle.Render("loading tables"), width, height)
	}

	rows := make([][]string, 0, ns.Tables.Len())
	for _, t := range ns.Tables.All() {
		rowsCell, files, size, updated := loading, loading, loading, loading
		if n, ok := t.RowCount(); ok {
			rowsCell = humanize.Comma(int64(n))
		}
		if t.Summary != nil {
			files = summaryCount(t.Summary, "total-data-files")
			size = summaryBytes(t.Summary, "total-files-size")
		}
		if t.Table != nil {
			updated = "-"
			if !t.Table.LastUpdated.IsZero() {
				updated = humanize.Time(t.Table.LastUpdated)
			}
		}
		rows = append(rows, []string{t.Name, rowsCell, files, size, updated})
	}
	title = fmt.Sprintf("%s (%d)", title, ns.Tables.Len())
	return list(title, cols, rows, sel, width, height)
}

// Table renders the detail view of one table.
func Table(t state.TableDescriptor, dateFormat string, width, height int) string {
	var b strings.Builder

	field := func(label, value string) {
		b.WriteString(styles.LabelStyle.Render(label))
		b.WriteString(cell(value, max(width-24, 8), false))
		b.WriteByte('\n')
	}
	section := func(name string) {
		b.WriteString(styles.HeaderStyle.Render(name))
		b.WriteByte('\n')
	}

	if t.Table == nil {
		field("Identifier", t.Ident().String())
		b.WriteString(styles.MutedStyle.Render("loading table metadata"))
		return panel(t.Ident().String(), b.String(), width, height)
	}

	tbl := t.Table
	field("Identifier", tbl.Ident.String())
	field("Location", tbl.Location)
	field("Metadata", tbl.MetadataLocation)
	field("Format version", strconv.Itoa(tbl.FormatVersion))
	if !tbl.LastUpdated.IsZero() {
		field("Last updated", tbl.LastUpdated.Format(dateFormat))
	}

	section("Snapshot")
	if snap := t.CurrentSnapshot; snap != nil {
		field("Id", strconv.FormatInt(snap.ID, 10))
		field("Operation", orDash(snap.Operation))
		field("Committed", snap.Timestamp.Format(dateFormat))
		if n, ok := t.RowCount(); ok {
			field("Rows", humanize.Comma(int64(n)))
		}
	} else {
		b.WriteString(styles.MutedStyle.Render("table has no snapshot"))
		b.WriteByte('\n')
	}

	section(fmt.Sprintf("Schema (%d columns)", len(tbl.Columns)))
	for _, c := range tbl.Columns {
		req := ""
		if c.Required {
			req = " required"
		}
		b.WriteString(fmt.Sprintf("  %3d %s %s%s\n", c.ID, cell(c.Name, 24, false), c.Type, req))
	}

	if t.CurrentSnapshot != nil {
		section("Manifests")
		b.WriteString(manifests(t, width))

		section("Data files")
		b.WriteString(dataFiles(t))
	}

	return panel(tbl.Ident.String(), strings.TrimRight(b.String(), "\n"), width, height)
}

func manifests(t state.TableDescriptor, width int) string {
	if t.ManifestList == nil {
		return styles.MutedStyle.Render("loading manifest list") + "\n"
	}
	var b strings.Builder
	for _, mf := range t.ManifestList.Manifests {
		entries := loading
		if m, ok := t.Manifests.Get(mf.Path); ok {
			entries = humanize.Comma(int64(len(m.Entries))) + " entries"
		}
		line := fmt.Sprintf("  %-7s %s  %s  %s",
			mf.Content, humanize.Bytes(uint64(max(mf.Length, 0))), entries, mf.Path)
		line = cell(line, max(width-4, 8), false)
		if mf.Content == catalog.ContentDeletes {
			line = styles.WarningStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(t.ManifestList.Manifests) == 0 {
		b.WriteString(styles.MutedStyle.Render("  no manifests") + "\n")
	}
	return b.String()
}

func dataFiles(t state.TableDescriptor) string {
	if t.DataFiles == nil {
		return styles.MutedStyle.Render("loading data files") + "\n"
	}
	var records, size int64
	formats := map[string]int{}
	for _, f := range t.DataFiles {
		records += f.RecordCount
		size += f.FileSizeBytes
		formats[strings.ToLower(f.Format)]++
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %s files, %s records, %s\n",
		humanize.Comma(int64(len(t.DataFiles))), humanize.Comma(records), humanize.Bytes(uint64(size)))
	for _, format := range slices.Sorted(maps.Keys(formats)) {
		fmt.Fprintf(&b, "  %s: %d\n", format, formats[format])
	}
	if len(t.ParquetMetadata) > 0 {
		var groups int
		writers := map[string]struct{}{}
		for _, pm := range t.ParquetMetadata {
			groups += pm.RowGroups
			if pm.CreatedBy != "" {
				writers[pm.CreatedBy] = struct{}{}
			}
		}
		fmt.Fprintf(&b, "  footers read: %d, row groups: %d\n", len(t.ParquetMetadata), groups)
		for _, w := range slices.Sorted(maps.Keys(writers)) {
			fmt.Fprintf(&b, "  written by %s\n", w)
		}
	}
	return b.String()
}

// list renders a titled panel with a header row and a scrolled body.
func list(title string, cols []column, rows [][]string, sel state.Selection, width, height int) string {
	selected, ok := sel.Get()
	if !ok {
		selected = -1
	}
	if len(rows) == 0 {
		return panel(title, styles.MutedStyle.Render("nothing here"), width, height)
	}

	// Border, title and the underlined header take five rows.
	start, end := window(len(rows), selected, height-5)
	lines := make([]string, 0, end-start+1)
	lines = append(lines, styles.ListHeaderStyle.Render(header(cols)))
	for i := start; i < end; i++ {
		text := row(cols, rows[i])
		if i == selected {
			lines = append(lines, styles.ListSelectedStyle.Render(text))
		} else {
			lines = append(lines, styles.ListItemStyle.Render(text))
		}
	}
	return panel(title, strings.Join(lines, "\n"), width, height)
}

func panel(title, body string, width, height int) string {
	content := styles.PanelTitleStyle.Render(title) + "\n" + body
	style := styles.PanelStyle
	if width > 2 {
		style = style.Width(width - 2)
	}
	if height > 2 {
		style = style.Height(height - 2).MaxHeight(height)
	}
	return style.Render(content)
}

func summaryCount(summary map[string]string, key string) string {
	n, err := strconv.ParseInt(summary[key], 10, 64)
	if err != nil {
		return "-"
	}
	return humanize.Comma(n)
}

func summaryBytes(summary map[string]string, key string) string {
	n, err := strconv.ParseUint(summary[key], 10, 64)
	if err != nil {
		return "-"
	}
	return humanize.Bytes(n)
}

// TableLocation returns the metadata location of t, the text copied to the
// clipboard.
func TableLocation(t state.TableDescriptor) (string, bool) {
	if t.Table == nil {
		return "", false
	}
	if t.Table.MetadataLocation != "" {
		return t.Table.MetadataLocation, true
	}
	return t.Table.Location, t.Table.Location != ""
}
