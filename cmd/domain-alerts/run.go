package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/app"
	"github.com/kursadbilgin/domain-alerts/internal/config"
	"github.com/kursadbilgin/domain-alerts/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const pushTimeout = 10 * time.Second

// bootstrap loads config, opens the run log and connects the app. The
// returned cleanup closes everything in reverse order.
func bootstrap(ctx context.Context) (*app.App, *zap.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, closeLog, err := observability.NewRunLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		_ = logger.Sync()
		_ = closeLog()
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close connections", zap.Error(err))
		}
		_ = logger.Sync()
		_ = closeLog()
	}
	return a, logger, cleanup, nil
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, logger, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	runner, err := a.NewBatchRunner(ctx)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := a.PushMetrics(pushCtx); err != nil {
		logger.Warn("failed to push metrics", zap.Error(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"run %s: checked=%d updated=%d sent=%d failed=%d suppressed=%d skipped=%d errors=%d\n",
		summary.RunID,
		summary.Checked,
		summary.Updated,
		summary.NotificationsSent,
		summary.NotificationsFailed,
		summary.Suppressed,
		summary.Skipped,
		summary.Errors,
	)
	return nil
}
