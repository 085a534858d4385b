package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run batches on RUN_INTERVAL and serve the HTTP API",
		Long: `Run a batch immediately and then every RUN_INTERVAL, prune the alert
ledger daily and expose /livez, /readyz, /metrics and the /v1 run API on API_PORT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, logger, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.Serve(cmd.Context()); err != nil {
				logger.Error("serve stopped with error", zap.Error(err))
				return err
			}
			logger.Info("domain-alerts stopped")
			return nil
		},
	}
}
