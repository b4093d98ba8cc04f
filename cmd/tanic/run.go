package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/tanic-org/tanic/internal/app"
	"github.com/tanic-org/tanic/internal/logger"
	"github.com/tanic-org/tanic/internal/orchestrator"
	"github.com/tanic-org/tanic/internal/state"
	"github.com/tanic-org/tanic/internal/store"
)

// runTUI wires the store, the orchestrator and the bubbletea program and
// runs them until one of them stops.
func runTUI(ctx context.Context, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tanic needs an interactive terminal; use 'tanic tree' for plain output")
	}

	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	conn, requested, err := initialConnection(cfg, args, connectionName, demo)
	if err != nil {
		return err
	}

	st, dispatcher := store.New(state.New())
	orchSink := dispatcher.Clone()

	// Enqueued before any task starts so the first state the UI sees is
	// already connecting.
	if requested {
		if err := dispatcher.Dispatch(state.ConnectTo{Conn: conn}); err != nil {
			return err
		}
		logger.Info("Connecting", "connection", conn.Name, "uri", conn.URI)
	}

	orch := orchestrator.New(newConnector(cfg), st, orchSink, orchestratorOptions(cfg))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	model := app.New(gctx, st.Subscribe(), dispatcher, app.Options{
		DateFormat:    cfg.UI.DateFormat,
		LogPanelLines: cfg.UI.LogPanelLines,
		Metrics:       orch.Metrics(),
	})

	g.Go(func() error {
		defer cancel()
		return st.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		defer orchSink.Close()
		return orch.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		defer dispatcher.Close()
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
			return nil
		}
		return err
	})

	err = g.Wait()
	stats := st.Stats()
	logger.Info("Store stopped", "applied", stats.Applied, "ignored", stats.Ignored, "pending", stats.Pending)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		logger.Error("tanic stopped", "error", err)
		return fmt.Errorf("tanic: %w", err)
	}
	logger.Info("tanic exited")
	return nil
}
