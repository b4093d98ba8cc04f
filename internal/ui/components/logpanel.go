package components

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/tanic-org/tanic/internal/logger"
	"github.com/tanic-org/tanic/internal/ui/styles"
)

// LogPanel shows the newest captured log entries below the main view.
type LogPanel struct {
	width   int
	lines   int
	visible bool

	// source returns at most n entries, oldest first.
	source func(n int) []logger.LogEntry
}

// NewLogPanel creates a panel of the given height reading from the logger.
func NewLogPanel(lines int) *LogPanel {
	return &LogPanel{
		lines:   lines,
		visible: lines > 0,
		source:  logger.GetRecent,
	}
}

// SetSize sets the width of the panel.
func (p *LogPanel) SetSize(width int) {
	p.width = width
}

// Toggle shows or hides the panel.
func (p *LogPanel) Toggle() {
	p.visible = !p.visible && p.lines > 0
}

// Height returns the rows the panel occupies, including its border.
func (p *LogPanel) Height() int {
	if !p.visible {
		return 0
	}
	return p.lines + 1
}

// View renders the panel. Empty when hidden.
func (p *LogPanel) View() string {
	if !p.visible {
		return ""
	}

	entries := p.source(p.lines)
	rows := make([]string, 0, p.lines)
	for _, e := range entries {
		line := styles.SeverityStyle(e.Level).Render(e.Format())
		if p.width > 0 {
			line = ansi.Truncate(line, p.width, "…")
		}
		rows = append(rows, line)
	}
	for len(rows) < p.lines {
		rows = append(rows, "")
	}

	style := styles.LogPanelStyle
	if p.width > 0 {
		style = style.Width(p.width)
	}
	return style.Render(strings.Join(rows, "\n"))
}
