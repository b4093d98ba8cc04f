package components

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"github.com/tanic-org/tanic/internal/state"
	"github.com/tanic-org/tanic/internal/ui/styles"
)

// maxNotificationLines bounds the wrapped message of one notification.
const maxNotificationLines = 3

// RenderNotifications renders pending error notifications, newest last.
// Returns "" when there are none.
func RenderNotifications(ns []state.Notification, width int) string {
	if len(ns) == 0 {
		return ""
	}

	inner := width - 4 // border and padding
	if inner < 20 {
		inner = 20
	}

	blocks := make([]string, 0, len(ns))
	for _, n := range ns {
		msg := wordwrap.WrapString(n.Message, uint(inner))
		lines := strings.Split(msg, "\n")
		if len(lines) > maxNotificationLines {
			lines = append(lines[:maxNotificationLines-1], "…")
		}
		title := styles.NotificationTitleStyle.Render(n.Resource)
		blocks = append(blocks, styles.NotificationStyle.Width(inner+2).Render(title+"\n"+strings.Join(lines, "\n")))
	}

	hint := styles.MutedStyle.Render(fmt.Sprintf("%d notification(s), press x to dismiss the oldest", len(ns)))
	return strings.Join(blocks, "\n") + "\n" + hint
}
