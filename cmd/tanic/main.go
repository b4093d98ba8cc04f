package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version info (set by ldflags)
	version = "dev"

	// Flags
	configPath     string
	debug          bool
	logFile        string
	connectionName string
	demo           bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// Error already printed by cobra
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tanic [catalog-uri]",
		Short: "Browse Apache Iceberg catalogs in the terminal",
		Long: `tanic is a terminal browser for Apache Iceberg REST catalogs. It lists
namespaces and tables and drills down into snapshots, manifests, data files
and parquet footers while the catalog is being read in the background.

Examples:
  tanic https://catalog.example.com/api/catalog
  tanic --connection prod
  tanic --demo
  tanic connections -o yaml
  tanic tree https://catalog.example.com/api/catalog`,
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), args)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/tanic/tanic.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path (default ~/.config/tanic/tanic.log)")

	rootCmd.Flags().StringVarP(&connectionName, "connection", "c", "", "connect to a named connection from the config file")
	rootCmd.Flags().BoolVar(&demo, "demo", false, "browse the built-in demo catalog")
	rootCmd.MarkFlagsMutuallyExclusive("connection", "demo")

	rootCmd.AddCommand(
		newConnectionsCmd(),
		newTreeCmd(),
	)
	return rootCmd
}
