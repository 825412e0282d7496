package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moneydairy/moneydairy/internal/categorize"
	"github.com/moneydairy/moneydairy/internal/store"
)

func newCategorizeCommand(opts *rootOptions) *cobra.Command {
	var uncategorized bool

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Re-apply the keyword rules to stored transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := openWorkspace(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			stored, err := ws.store.Transactions(ctx, store.Filter{Uncategorized: uncategorized})
			if err != nil {
				return err
			}

			cls := categorize.NewClassifier(ws.ruleset)
			updates := make([]store.CategoryUpdate, 0, len(stored))
			filled := 0
			for _, s := range stored {
				m := cls.Classify(s.Transaction)
				if !s.Transaction.Categorized() {
					filled++
				}
				updates = append(updates, store.CategoryUpdate{ID: s.ID, CategoryID: m.CategoryID, SubcategoryID: m.SubcategoryID})
			}

			changed, err := ws.store.UpdateCategories(ctx, updates)
			if err != nil {
				return err
			}
			ws.log.Info().Int("checked", len(stored)).Int("changed", changed).Int("filled", filled).Msg("recategorized")
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d transactions recategorized\n", changed, len(stored))
			if filled > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d had no category before\n", filled)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "only transactions without a category")

	return cmd
}
