package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/moneydairy/moneydairy/internal/config"
	"github.com/moneydairy/moneydairy/internal/gitops"
	"github.com/moneydairy/moneydairy/internal/rules"
)

func newRulesCommand(opts *rootOptions) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Rule file operations",
	}
	rulesCmd.AddCommand(newRulesCheckCommand(opts), newRulesMigrateCommand(opts))
	return rulesCmd
}

func newRulesCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the rule file against the category tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			fb := ws.ruleset.Fallback()
			fmt.Fprintf(cmd.OutOrStdout(), "%d keyword rules, %d exclusions, fallback %s (%d)\n",
				ws.ruleset.Len(), len(ws.exclusions), fb.Name, fb.ID)
			return nil
		},
	}
}

// newRulesMigrateCommand rewrites a legacy flat rule file in the current
// format. Loading already migrates, so this only persists the result.
func newRulesMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite a legacy rule file in the current format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(opts.dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			path := filepath.Join(root, rules.FileName)
			f, err := rules.Load(path)
			if err != nil {
				return err
			}
			if err := rules.Save(path, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rewrote %s (%d categories)\n", rules.FileName, len(f.Categories))

			cfg, err := config.Load(filepath.Join(root, config.FileName))
			if err != nil {
				return err
			}
			if !cfg.Git.Enabled || !gitops.IsRepo(root) {
				return nil
			}
			hash, err := gitops.Snapshot(root, "rules: migrate legacy format", gitAuthor(cfg), rules.FileName)
			if err != nil {
				return err
			}
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Committed %s\n", hash)
			}
			return nil
		},
	}
}
