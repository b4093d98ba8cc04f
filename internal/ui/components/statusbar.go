package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	humanize "github.com/dustin/go-humanize"

	"github.com/tanic-org/tanic/internal/logger"
	"github.com/tanic-org/tanic/internal/metrics"
	"github.com/tanic-org/tanic/internal/state"
	"github.com/tanic-org/tanic/internal/ui/styles"
)

// StatusBar represents the status bar component
type StatusBar struct {
	width int

	// Status data
	conn       state.ConnectionDetails
	phase      string // "", "connecting", "connected"
	attempt    uint64
	namespaces int
	timestamp  time.Time
	dateFormat string

	// Fetch latency
	latency metrics.LatencySnapshot
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	return &StatusBar{
		dateFormat: "2006-01-02 15:04:05",
	}
}

// SetSize sets the width of the status bar
func (s *StatusBar) SetSize(width int) {
	s.width = width
}

// SetState updates the connection section from a published state
func (s *StatusBar) SetState(st state.AppState) {
	s.phase = ""
	s.namespaces = 0
	switch ice := st.Iceberg.(type) {
	case state.ConnectingTo:
		s.conn = ice.Conn
		s.phase = "connecting"
		s.attempt = ice.Attempt
	case state.Connected:
		s.conn = ice.Metadata.Conn
		s.phase = "connected"
		s.namespaces = ice.Metadata.Namespaces.Len()
	}
}

// SetTimestamp sets the current timestamp
func (s *StatusBar) SetTimestamp(timestamp time.Time) {
	s.timestamp = timestamp
}

// SetDateFormat sets the date format string
func (s *StatusBar) SetDateFormat(format string) {
	s.dateFormat = format
}

// SetLatency sets the aggregated catalog fetch latency
func (s *StatusBar) SetLatency(l metrics.LatencySnapshot) {
	s.latency = l
}

// View renders the status bar
func (s *StatusBar) View() string {
	// Connection status indicator
	var statusIndicator string
	switch s.phase {
	case "connecting":
		statusIndicator = styles.StatusConnectingStyle.Render(fmt.Sprintf("● Connecting (#%d)", s.attempt))
	case "connected":
		statusIndicator = styles.StatusConnectedStyle.Render("● Connected")
	default:
		statusIndicator = styles.StatusDisconnectedStyle.Render("● Disconnected")
	}

	name := "N/A"
	if !s.conn.IsZero() {
		name = styles.StatusTitleStyle.Render(s.conn.Name) + " " + styles.MutedStyle.Render(s.conn.URI)
	}

	sections := []string{statusIndicator, name}
	if s.phase == "connected" {
		sections = append(sections, fmt.Sprintf("%s namespaces", humanize.Comma(int64(s.namespaces))))
	}
	if s.latency.Calls > 0 {
		sections = append(sections, fmt.Sprintf("fetch avg %s (%s calls)",
			s.latency.Average.Round(time.Millisecond), humanize.Comma(int64(s.latency.Calls))))
	}

	// Warning/error counts, only shown in debug mode
	if logger.IsDebugEnabled() {
		warnCount, errCount := logger.GetCounts()
		var parts []string
		if warnCount > 0 {
			parts = append(parts, styles.WarningStyle.Render(fmt.Sprintf("⚠ %d", warnCount)))
		}
		if errCount > 0 {
			parts = append(parts, styles.ErrorStyle.Render(fmt.Sprintf("✕ %d", errCount)))
		}
		if len(parts) > 0 {
			sections = append(sections, strings.Join(parts, " "))
		}
	}

	sections = append(sections, styles.StatusTimeStyle.Render(s.timestamp.Format(s.dateFormat)))
	statusLine := strings.Join(sections, " | ")

	// Pad or cut to full width if known
	if s.width > 0 {
		statusLine = ansi.Truncate(statusLine, s.width, "…")
		return lipgloss.NewStyle().Width(s.width).Render(statusLine)
	}
	return styles.StatusBarStyle.Render(statusLine)
}
