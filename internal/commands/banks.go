package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBanksCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List supported banks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			banks, err := ws.store.Banks(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range banks {
				fmt.Fprintf(out, "%-12s %s\n", b.Name, b.DisplayDescription)
			}
			return nil
		},
	}
}

func newRunsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List recorded imports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			runs, err := ws.store.Runs(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range runs {
				balance := "-"
				if r.Balance != nil {
					balance = r.Balance.String()
				}
				fmt.Fprintf(out, "%s  %s  %s  rows=%d inserted=%d duplicates=%d excluded=%d skipped=%d balance=%s\n",
					r.StartedAt.Local().Format("2006-01-02 15:04"), r.ID, r.FileName,
					r.Rows, r.Inserted, r.Duplicates, r.Excluded, r.Skipped, balance)
			}
			return nil
		},
	}
}
