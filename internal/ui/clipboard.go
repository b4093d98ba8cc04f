package ui

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ClipboardWriter provides cross-platform clipboard access with graceful degradation.
type ClipboardWriter struct {
	available bool
	errMsg    string
	write     func(string) error
}

// NewClipboardWriter creates a new ClipboardWriter and checks availability.
func NewClipboardWriter() *ClipboardWriter {
	cw := &ClipboardWriter{write: clipboard.WriteAll}
	cw.checkAvailability()
	return cw
}

// checkAvailability determines if clipboard is accessible.
func (cw *ClipboardWriter) checkAvailability() {
	if clipboard.Unsupported {
		cw.available = false
		cw.errMsg = "clipboard tool not found (install xclip, xsel, or wl-clipboard)"
		return
	}
	cw.available = true
}

// IsAvailable returns whether clipboard operations are supported.
func (cw *ClipboardWriter) IsAvailable() bool {
	return cw.available
}

// Error returns the reason clipboard is unavailable.
func (cw *ClipboardWriter) Error() string {
	return cw.errMsg
}

// Write copies text to the system clipboard.
func (cw *ClipboardWriter) Write(text string) error {
	if !cw.available {
		return fmt.Errorf("clipboard unavailable: %s", cw.errMsg)
	}
	if text == "" {
		return errors.New("nothing to copy")
	}
	if err := cw.write(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
