package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete alert ledger rows older than LEDGER_RETENTION_DAYS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			janitor, err := a.NewLedgerJanitor(0)
			if err != nil {
				return err
			}
			deleted, err := janitor.Prune(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d ledger rows\n", deleted)
			return nil
		},
	}
}
