// Package app is the bubbletea program of tanic. It renders state snapshots
// received from the store and turns key presses into dispatched actions.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tanic-org/tanic/internal/logger"
	"github.com/tanic-org/tanic/internal/metrics"
	"github.com/tanic-org/tanic/internal/state"
	"github.com/tanic-org/tanic/internal/store"
	"github.com/tanic-org/tanic/internal/ui"
	"github.com/tanic-org/tanic/internal/ui/components"
	"github.com/tanic-org/tanic/internal/ui/styles"
	"github.com/tanic-org/tanic/internal/ui/views"
)

// flashDuration is how long a local feedback message stays in the footer.
const flashDuration = 3 * time.Second

// Options configure the model.
type Options struct {
	DateFormat    string
	LogPanelLines int
	Metrics       *metrics.Registry
	Clipboard     Clipboard
}

// Sink accepts actions for the store.
type Sink interface {
	Dispatch(a state.Action) error
}

// Model represents the main Bubbletea application model
type Model struct {
	ctx  context.Context
	sub  *store.Subscription
	sink Sink

	opts Options

	// Latest snapshot received from the store
	cur state.AppState

	// UI state
	width  int
	height int

	// Keyboard bindings
	keys ui.KeyMap

	// UI components
	help      *components.HelpText
	statusBar *components.StatusBar
	logPanel  *components.LogPanel
	spinner   spinner.Model

	helpVisible bool
	quitting    bool
	ready       bool

	// Footer feedback for local actions
	flash      string
	flashErr   bool
	flashUntil time.Time
}

// New creates the application model. The model reads states from sub and
// sends actions to sink; ctx bounds the wait for the next state.
func New(ctx context.Context, sub *store.Subscription, sink Sink, opts Options) *Model {
	if opts.DateFormat == "" {
		opts.DateFormat = time.DateTime
	}
	if opts.Clipboard == nil {
		opts.Clipboard = ui.NewClipboardWriter()
	}

	keys := ui.DefaultKeyMap()
	statusBar := components.NewStatusBar()
	statusBar.SetDateFormat(opts.DateFormat)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	return &Model{
		ctx:       ctx,
		sub:       sub,
		sink:      sink,
		opts:      opts,
		cur:       state.New(),
		keys:      keys,
		help:      components.NewHelp(keys.FullHelp()),
		statusBar: statusBar,
		logPanel:  components.NewLogPanel(opts.LogPanelLines),
		spinner:   sp,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctx, m.sub),
		m.spinner.Tick,
		tickStatusBar(),
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetSize(msg.Width, msg.Height)
		m.statusBar.SetSize(msg.Width)
		m.logPanel.SetSize(msg.Width)
		m.ready = true
		return m, nil

	case StateMsg:
		m.cur = msg.State
		m.statusBar.SetState(msg.State)
		if msg.State.IsTerminal() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, waitForState(m.ctx, m.sub)

	case BroadcastClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case StatusBarTickMsg:
		m.statusBar.SetTimestamp(msg.Timestamp)
		if m.opts.Metrics != nil {
			m.statusBar.SetLatency(m.opts.Metrics.Total())
		}
		if m.flash != "" && msg.Timestamp.After(m.flashUntil) {
			m.flash = ""
		}
		return m, tickStatusBar()

	case ClipboardResultMsg:
		if msg.Err != nil {
			m.setFlash("copy failed: "+msg.Err.Error(), true)
		} else {
			m.setFlash("copied "+msg.Text, false)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The help overlay swallows everything but its own toggles and quit.
	if m.helpVisible {
		switch {
		case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Back):
			m.helpVisible = false
			return m, nil
		case !key.Matches(msg, m.keys.Quit):
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.helpVisible = true
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.logPanel.Toggle()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		t, ok := m.cur.SelectedTable()
		if !ok {
			return m, nil
		}
		loc, ok := views.TableLocation(t)
		if !ok {
			m.setFlash("table metadata not loaded yet", true)
			return m, nil
		}
		if av, ok := m.opts.Clipboard.(availability); ok && !av.IsAvailable() {
			m.setFlash("clipboard unavailable: "+av.Error(), true)
			return m, nil
		}
		return m, copyToClipboard(m.opts.Clipboard, loc)
	}

	action, ok := ui.OnKey(m.cur.UI, msg, m.keys)
	if !ok {
		return m, nil
	}
	if err := m.sink.Dispatch(action); err != nil {
		// The store is gone; nothing will ever answer.
		logger.Debug("Dispatch after store shutdown", "error", err)
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
	m.flashUntil = time.Now().Add(flashDuration)
}

// State returns the latest snapshot the model rendered.
func (m Model) State() state.AppState {
	return m.cur
}

// View renders the application UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return "Initializing..."
	}

	if m.helpVisible {
		return m.help.View()
	}

	statusBar := m.statusBar.View()
	footer := m.renderFooter()
	logs := m.logPanel.View()
	notes := components.RenderNotifications(m.cur.Notifications, m.width)

	used := lipgloss.Height(statusBar) + lipgloss.Height(footer)
	if logs != "" {
		used += lipgloss.Height(logs)
	}
	if notes != "" {
		used += lipgloss.Height(notes)
	}
	body := m.renderBody(m.width, max(m.height-used, 3))

	parts := []string{statusBar, body}
	if notes != "" {
		parts = append(parts, notes)
	}
	if logs != "" {
		parts = append(parts, logs)
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderBody renders the screen for the current UI state
func (m Model) renderBody(width, height int) string {
	switch screen := m.cur.UI.(type) {
	case state.ViewingNamespacesList:
		if md, ok := m.cur.Metadata(); ok {
			return views.Namespaces(md, screen.Selected, width, height)
		}
	case state.ViewingTablesList:
		if ns, ok := m.cur.SelectedNamespace(); ok {
			return views.Tables(ns, screen.Selected, width, height)
		}
	case state.ViewingTable:
		if t, ok := m.cur.SelectedTable(); ok {
			return views.Table(t, m.opts.DateFormat, width, height)
		}
	}

	conn, connecting := m.cur.ActiveConnection()
	return views.Splash(conn, connecting, m.spinner.View(), width, height)
}

func (m Model) renderFooter() string {
	if m.flash != "" {
		if m.flashErr {
			return styles.ErrorStyle.Render(m.flash)
		}
		return styles.SuccessStyle.Render(m.flash)
	}
	return m.help.ShortHelp()
}
