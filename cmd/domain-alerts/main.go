// domain-alerts checks registration data of monitored domains and alerts
// notification groups before the domains expire.
//
// Usage:
//
//	domain-alerts          run one batch (for cron)
//	domain-alerts serve    run batches on RUN_INTERVAL and expose the HTTP API
//	domain-alerts prune    delete ledger rows older than LEDGER_RETENTION_DAYS
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "domain-alerts",
		Short: "Check domain expirations and dispatch alerts",
		Long: `domain-alerts looks up every active domain, stores its registration
status and sends threshold alerts through the channels of its notification group.

Without a subcommand it runs a single batch and exits. Per-domain and
per-channel failures are logged and counted; the exit code is non-zero only
when the run cannot start.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runBatch,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(pruneCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
