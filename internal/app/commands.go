package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tanic-org/tanic/internal/logger"
	"github.com/tanic-org/tanic/internal/store"
)

// waitForState blocks until the subscription yields a state newer than the
// last one seen.
func waitForState(ctx context.Context, sub *store.Subscription) tea.Cmd {
	return func() tea.Msg {
		st, err := sub.Next(ctx)
		if err != nil {
			return BroadcastClosedMsg{}
		}
		return StateMsg{State: st}
	}
}

func tickStatusBar() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return StatusBarTickMsg{Timestamp: t}
	})
}

// Clipboard is where copied text ends up.
type Clipboard interface {
	Write(text string) error
}

// availability is implemented by clipboards that know up front whether a
// write can succeed.
type availability interface {
	IsAvailable() bool
	Error() string
}

func copyToClipboard(cb Clipboard, text string) tea.Cmd {
	return func() tea.Msg {
		err := cb.Write(text)
		if err != nil {
			logger.Warn("Clipboard copy failed", "error", err)
		}
		return ClipboardResultMsg{Text: text, Err: err}
	}
}
