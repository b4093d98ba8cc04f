package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/tanic-org/tanic/internal/catalog"
	"github.com/tanic-org/tanic/internal/logger"
	"github.com/tanic-org/tanic/internal/metrics"
	"github.com/tanic-org/tanic/internal/orchestrator"
)

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <catalog-uri>",
		Short: "Print the namespaces and tables of a catalog",
		Long: `Connect to a catalog, list every namespace and its tables, and print them
as a tree followed by a summary of catalog call latencies. Pass memory://demo
to print the built-in demo catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Close()

			reg := metrics.NewRegistry(metrics.DefaultBufferCapacity)
			retry := catalog.NewConnectRetry(cfg.Catalog.ConnectAttempts)
			tree, err := buildTree(cmd.Context(), newConnector(cfg), args[0], retry, reg)
			if err != nil {
				return errors.New(catalog.FormatCatalogError(err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, tree.String())
			printLatency(out, reg)
			return nil
		},
	}
}

// buildTree lists uri into a tree, timing every call into reg.
func buildTree(ctx context.Context, c catalog.Connector, uri string, retry *catalog.ConnectRetry, reg *metrics.Registry) (treeprint.Tree, error) {
	done := reg.Tracker(orchestrator.OpConnect).Time()
	cat, err := catalog.ConnectWithRetry(ctx, c, uri, retry)
	done(err)
	if err != nil {
		return nil, err
	}
	defer cat.Close()

	done = reg.Tracker(orchestrator.OpListNamespaces).Time()
	namespaces, err := cat.ListNamespaces(ctx)
	done(err)
	if err != nil {
		return nil, err
	}

	tree := treeprint.NewWithRoot(uri)
	failed := color.New(color.FgRed)
	for _, ns := range namespaces {
		done = reg.Tracker(orchestrator.OpListTables).Time()
		tables, err := cat.ListTables(ctx, ns)
		done(err)

		branch := tree.AddBranch(ns.String())
		if err != nil {
			// One unreadable namespace should not hide the others.
			logger.Warn("List tables failed", "namespace", ns.String(), "error", err)
			branch.AddNode(failed.Sprint("error: " + err.Error()))
			continue
		}
		for _, t := range tables {
			branch.AddNode(t.Name)
		}
	}
	return tree, nil
}

func printLatency(w io.Writer, reg *metrics.Registry) {
	label := color.New(color.Faint)
	snaps := reg.Snapshot()
	fmt.Fprintln(w)
	for _, op := range reg.Names() {
		s := snaps[op]
		label.Fprintf(w, "%-16s", op)
		fmt.Fprintf(w, " %s calls, avg %s, max %s", humanize.Comma(int64(s.Calls)),
			s.Average.Round(time.Microsecond), s.Max.Round(time.Microsecond))
		if s.Failures > 0 {
			fmt.Fprintf(w, ", %d failed", s.Failures)
		}
		fmt.Fprintln(w)
	}
}
