package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/moneydairy/moneydairy/internal/export"
	"github.com/moneydairy/moneydairy/internal/model"
	"github.com/moneydairy/moneydairy/internal/store"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var out, bank, from, to string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored transactions to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := openWorkspace(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			var f store.Filter
			if f.From, err = parseDay(from); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if f.To, err = parseDay(to); err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if bank != "" {
				banks, err := ws.store.Banks(ctx)
				if err != nil {
					return err
				}
				for _, b := range banks {
					if strings.EqualFold(b.Name, strings.TrimSpace(bank)) {
						f.BankID = b.ID
					}
				}
				if f.BankID == 0 {
					return fmt.Errorf("unknown bank %q", bank)
				}
			}

			stored, err := ws.store.Transactions(ctx, f)
			if err != nil {
				return err
			}
			txns := make([]model.Transaction, 0, len(stored))
			for _, s := range stored {
				txns = append(txns, s.Transaction)
			}
			if err := export.WriteFile(out, txns); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transactions to %s\n", len(txns), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output CSV file (required)")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().StringVar(&bank, "bank", "", "only this bank")
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD")

	return cmd
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
