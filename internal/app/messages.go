package app

import (
	"time"

	"github.com/tanic-org/tanic/internal/state"
)

// StateMsg carries a state snapshot received from the store.
type StateMsg struct {
	State state.AppState
}

// BroadcastClosedMsg is sent once the store stopped publishing.
type BroadcastClosedMsg struct{}

// StatusBarTickMsg is sent periodically to update the status bar
type StatusBarTickMsg struct {
	Timestamp time.Time
}

// ClipboardResultMsg reports the outcome of a copy to the clipboard.
type ClipboardResultMsg struct {
	Text string
	Err  error
}
