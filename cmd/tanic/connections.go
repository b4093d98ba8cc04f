package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tanic-org/tanic/internal/config"
)

var outputFormat string

func newConnectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connections",
		Short: "List the connections defined in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return printConnections(cmd.OutOrStdout(), cfg.Connections, outputFormat)
		},
	}
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format: table or yaml")
	return cmd
}

func printConnections(w io.Writer, conns []config.ConnectionConfig, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string][]config.ConnectionConfig{"connections": conns}); err != nil {
			return fmt.Errorf("encode connections: %w", err)
		}
		return enc.Close()

	case "table", "":
		if len(conns) == 0 {
			fmt.Fprintln(w, "No connections configured.")
			return nil
		}
		width := len("NAME")
		for _, c := range conns {
			width = max(width, len(c.Name))
		}
		header := color.New(color.Bold, color.FgCyan)
		header.Fprintf(w, "%-*s  %s\n", width, "NAME", "URI")
		for _, c := range conns {
			fmt.Fprintf(w, "%-*s  %s\n", width, c.Name, c.URI)
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}
