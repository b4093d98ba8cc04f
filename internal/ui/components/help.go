package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/tanic-org/tanic/internal/ui/styles"
)

// HelpText represents the help component
type HelpText struct {
	width  int
	height int
	groups [][]key.Binding
}

// NewHelp creates a help component listing groups of bindings
func NewHelp(groups [][]key.Binding) *HelpText {
	return &HelpText{groups: groups}
}

// SetSize sets the size of the help component
func (h *HelpText) SetSize(width, height int) {
	h.width = width
	h.height = height
}

var helpSections = []string{"Navigation", "Actions", "General"}

// View renders the help screen
func (h *HelpText) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")

	for i, group := range h.groups {
		if i < len(helpSections) {
			b.WriteString(styles.HeaderStyle.Render(helpSections[i]))
			b.WriteString("\n")
		}
		for _, binding := range group {
			hl := binding.Help()
			b.WriteString(h.formatShortcut(hl.Key, hl.Desc))
		}
	}

	dialog := styles.HelpDialogStyle.Render(b.String())

	// Center the dialog
	if h.width > 0 {
		dialog = lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, dialog)
	}
	return dialog
}

// formatShortcut formats a keyboard shortcut with its description
func (h *HelpText) formatShortcut(keys, description string) string {
	return styles.HelpKeyStyle.Render(keys) + styles.HelpDescStyle.Render(description) + "\n"
}

// ShortHelp returns a brief help text for the bottom of the screen
func (h *HelpText) ShortHelp() string {
	return styles.FooterHintStyle.Render("Press '?' for help • 'q' to quit")
}
