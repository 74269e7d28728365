// Package cmd provides the command-line interface for jira-export.
package cmd

import (
	"fmt"

	"github.com/danielolaszy/jira-export/internal/config"
	"github.com/danielolaszy/jira-export/internal/export"
	"github.com/danielolaszy/jira-export/internal/jira"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jira-export",
		Short: "Export JIRA issues matching a JQL query",
		Long: `jira-export pages through a JIRA Cloud search, derives each issue's resolved
date from its changelog and flattens the issues into rows.

It can run as an HTTP service (serve) or export a single query from the
command line (export). Credentials are read from JIRA_EMAIL and JIRA_TOKEN.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// newExporter loads configuration and wires the JIRA client into an exporter.
func newExporter() (*config.Config, *export.Exporter, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	jiraClient, err := jira.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize jira client: %w", err)
	}

	exporter, err := export.NewExporter(jiraClient, cfg.Export)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize exporter: %w", err)
	}

	return cfg, exporter, nil
}
