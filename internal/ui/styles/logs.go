package styles

import (
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

// Log severity colors
var (
	// ColorSeverityError is red for ERROR entries.
	ColorSeverityError = lipgloss.Color("9")
	// ColorSeverityWarning is yellow for WARN entries.
	ColorSeverityWarning = lipgloss.Color("11")
	// ColorSeverityInfo is white for INFO entries.
	ColorSeverityInfo = lipgloss.Color("7")
	// ColorSeverityDebug is gray for DEBUG entries.
	ColorSeverityDebug = lipgloss.Color("8")
)

// Log severity styles
var (
	// SeverityErrorStyle is the style for ERROR log entries.
	SeverityErrorStyle = lipgloss.NewStyle().Foreground(ColorSeverityError)
	// SeverityWarningStyle is the style for WARN log entries.
	SeverityWarningStyle = lipgloss.NewStyle().Foreground(ColorSeverityWarning)
	// SeverityInfoStyle is the style for INFO log entries.
	SeverityInfoStyle = lipgloss.NewStyle().Foreground(ColorSeverityInfo)
	// SeverityDebugStyle is the style for DEBUG log entries.
	SeverityDebugStyle = lipgloss.NewStyle().Foreground(ColorSeverityDebug)
)

// Log panel styles
var (
	// LogPanelStyle wraps the log panel; only the top border is drawn.
	LogPanelStyle = lipgloss.NewStyle().
			BorderStyle(BorderNormal).
			BorderForeground(ColorBorder).
			BorderTop(true)
)

// SeverityStyle returns the appropriate style for a log level.
func SeverityStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return SeverityErrorStyle
	case level >= slog.LevelWarn:
		return SeverityWarningStyle
	case level >= slog.LevelInfo:
		return SeverityInfoStyle
	default:
		return SeverityDebugStyle
	}
}
