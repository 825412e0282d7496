package commands

import (
	"github.com/spf13/cobra"

	"github.com/moneydairy/moneydairy/internal/buildinfo"
)

type rootOptions struct {
	dir      string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "moneydairy",
		Short:   "Import and categorize Chilean bank statements",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dir, "dir", ".", "data directory")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")

	rootCmd.AddCommand(
		newInitCommand(),
		newBanksCommand(opts),
		newImportCommand(opts),
		newCategorizeCommand(opts),
		newExportCommand(opts),
		newRunsCommand(opts),
		newRulesCommand(opts),
		newWatchCommand(opts),
	)

	return rootCmd
}
