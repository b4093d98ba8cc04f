// Package ui maps terminal input onto state actions and holds the shared
// pieces of the tanic TUI.
package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tanic-org/tanic/internal/state"
)

// OnKey returns the action a key press maps to in the given UI state. It
// reports false for keys with no meaning there. OnKey has no side effects.
func OnKey(ui state.UiState, msg tea.KeyMsg, keys KeyMap) (state.Action, bool) {
	if key.Matches(msg, keys.Quit) {
		return state.Exit{}, true
	}
	if key.Matches(msg, keys.Dismiss) {
		if _, exiting := ui.(state.UIExiting); !exiting {
			return state.DismissNotification{}, true
		}
		return nil, false
	}

	switch ui.(type) {
	case state.ViewingNamespacesList:
		switch {
		case key.Matches(msg, keys.Prev):
			return state.FocusPrevNamespace{}, true
		case key.Matches(msg, keys.Next):
			return state.FocusNextNamespace{}, true
		case key.Matches(msg, keys.Select):
			return state.SelectNamespace{}, true
		}

	case state.ViewingTablesList:
		switch {
		case key.Matches(msg, keys.Prev):
			return state.FocusPrevTable{}, true
		case key.Matches(msg, keys.Next):
			return state.FocusNextTable{}, true
		case key.Matches(msg, keys.Select):
			return state.SelectTable{}, true
		case key.Matches(msg, keys.Back):
			return state.Escape{}, true
		}

	case state.ViewingTable:
		if key.Matches(msg, keys.Back) {
			return state.Escape{}, true
		}
	}
	return nil, false
}
