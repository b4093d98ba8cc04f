package styles

import "github.com/charmbracelet/lipgloss"

// Common border styles
var (
	// BorderNormal is the standard border for most UI elements
	BorderNormal = lipgloss.NormalBorder()

	// BorderRounded is used for detail panels
	BorderRounded = lipgloss.RoundedBorder()
)

// Panel styles
var (
	// PanelStyle is the base style for detail panels
	PanelStyle = lipgloss.NewStyle().
			Border(BorderRounded).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	// PanelTitleStyle is for panel titles
	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	// LabelStyle is for key/value labels inside panels
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(18)
)

// List styles
var (
	// ListItemStyle is for unselected rows
	ListItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	// ListSelectedStyle is for the selected row
	ListSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorSelectedFg).
				Background(ColorSelectedBg).
				Padding(0, 1)

	// ListHeaderStyle is for list column headers
	ListHeaderStyle = lipgloss.NewStyle().
			BorderStyle(BorderNormal).
			BorderForeground(ColorBorder).
			BorderBottom(true).
			Foreground(ColorMuted)
)

// Status bar styles
var (
	// StatusBarStyle wraps the status bar
	StatusBarStyle = lipgloss.NewStyle().
			Border(BorderNormal).
			BorderForeground(ColorBorder)

	// StatusTitleStyle is for the connection name
	StatusTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	// StatusTimeStyle is for the timestamp
	StatusTimeStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StatusConnectedStyle is for connected status indicator
	StatusConnectedStyle = lipgloss.NewStyle().
				Foreground(ColorConnected)

	// StatusConnectingStyle is for the connecting indicator
	StatusConnectingStyle = lipgloss.NewStyle().
				Foreground(ColorConnecting)

	// StatusDisconnectedStyle is for disconnected status indicator
	StatusDisconnectedStyle = lipgloss.NewStyle().
				Foreground(ColorOffline)
)

// Footer styles
var (
	// FooterHintStyle is for keyboard hints
	FooterHintStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Notification styles
var (
	// NotificationStyle wraps one error notification
	NotificationStyle = lipgloss.NewStyle().
				Border(BorderRounded).
				BorderForeground(ColorError).
				Padding(0, 1)

	// NotificationTitleStyle is for the failing resource
	NotificationTitleStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)
)

// Message styles
var (
	// SuccessStyle is for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	// WarningStyle is for warning messages
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)
)

// Help overlay styles
var (
	// HelpKeyStyle is for keyboard shortcuts
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Width(20)

	// HelpDescStyle is for shortcut descriptions
	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// HelpDialogStyle is for the help dialog box
	HelpDialogStyle = lipgloss.NewStyle().
			Border(BorderRounded).
			BorderForeground(ColorAccent).
			Padding(1, 2)
)

// Common UI styles
var (
	// TitleStyle is for section titles
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	// HeaderStyle is for section headers
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginTop(1)

	// AccentStyle is for accented text
	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	// MutedStyle is for muted/secondary text
	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)
