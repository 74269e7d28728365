package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/danielolaszy/jira-export/internal/logging"
	"github.com/danielolaszy/jira-export/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the export over HTTP",
		Long: `Start an HTTP server exposing:

  POST /export   body {"jql": "<query>"}, returns {"total_issues": n, "preview": [...]}
  GET  /healthz  liveness probe

The listen address defaults to HTTP_ADDR (":8000").`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, exporter, err := newExporter()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logging.Info("starting export server",
				"addr", cfg.HTTP.Addr,
				"page_size", cfg.Export.PageSize,
				"max_pages", cfg.Export.MaxPages)

			return server.Run(ctx, cfg.HTTP, server.NewRouter(cfg.HTTP, exporter))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides HTTP_ADDR)")

	return cmd
}
