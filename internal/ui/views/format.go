package views

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column is one list column with a fixed display width. A zero width takes
// whatever is left of the line.
type column struct {
	title string
	width int
	right bool
}

// cell fits s into exactly w display cells.
func cell(s string, w int, right bool) string {
	if w <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, w, "…")
	if right {
		return runewidth.FillLeft(s, w)
	}
	return runewidth.FillRight(s, w)
}

// layout resolves zero-width columns against the total line width.
func layout(cols []column, total int) []column {
	fixed, flex := 0, 0
	for _, c := range cols {
		if c.width == 0 {
			flex++
		}
		fixed += c.width + 1
	}
	out := make([]column, len(cols))
	copy(out, cols)
	if flex == 0 {
		return out
	}
	share := (total - fixed) / flex
	if share < 8 {
		share = 8
	}
	for i := range out {
		if out[i].width == 0 {
			out[i].width = share
		}
	}
	return out
}

func row(cols []column, values []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		parts[i] = cell(v, c.width, c.right)
	}
	return strings.Join(parts, " ")
}

func header(cols []column) string {
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	return row(cols, titles)
}

// window returns the [start, end) range of n rows to show in height rows so
// that selected stays visible.
func window(n, selected, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	if selected < 0 {
		selected = 0
	}
	start := selected - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
