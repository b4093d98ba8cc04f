// Package styles provides centralized Lipgloss styling for the tanic UI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette for the tanic UI
var (
	// Connection state colors
	ColorConnected  = lipgloss.Color("10") // Green - connected
	ColorConnecting = lipgloss.Color("11") // Yellow - connection in progress
	ColorOffline    = lipgloss.Color("9")  // Red - no connection

	// UI element colors
	ColorBorder  = lipgloss.Color("240") // Gray - all borders
	ColorAccent  = lipgloss.Color("6")   // Cyan - titles, highlights
	ColorMuted   = lipgloss.Color("8")   // Dark gray - secondary text
	ColorText    = lipgloss.Color("7")   // Default text
	ColorSuccess = lipgloss.Color("10")  // Green - success messages
	ColorWarning = lipgloss.Color("11")  // Yellow - warnings
	ColorError   = lipgloss.Color("9")   // Red - error messages

	// Selection colors
	ColorSelectedFg = lipgloss.Color("229") // Light yellow text
	ColorSelectedBg = lipgloss.Color("57")  // Purple background

	// Manifest entry status colors
	ColorAdded   = lipgloss.Color("10")
	ColorDeleted = lipgloss.Color("9")
)

// EntryStatusColor returns the color for a manifest entry status.
func EntryStatusColor(status string) lipgloss.Color {
	switch status {
	case "added":
		return ColorAdded
	case "deleted":
		return ColorDeleted
	default:
		return ColorMuted
	}
}
