package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/moneydairy/moneydairy/internal/config"
	"github.com/moneydairy/moneydairy/internal/gitops"
	"github.com/moneydairy/moneydairy/internal/rules"
	"github.com/moneydairy/moneydairy/internal/taxonomy"
)

func newInitCommand() *cobra.Command {
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, !noGit); err != nil {
				return err
			}

			ws, err := openWorkspace(cmd.Context(), &rootOptions{dir: absDir}, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized moneydairy directory at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not version the rule files in git")

	return cmd
}

// versioned lists the hand-edited files committed at init.
var versioned = []string{config.FileName, "rules", ".gitignore"}

func runInit(dir string, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	cfg := config.Default()
	cfg.Git.Enabled = useGit && gitops.Available()

	// Create directory structure.
	dirs := []string{
		"rules",
		"logs",
		"exports",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := taxonomy.DefaultTree().Save(dir); err != nil {
		return fmt.Errorf("writing category tree: %w", err)
	}

	if err := rules.Save(filepath.Join(dir, rules.FileName), rules.Default()); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	gitignore := "*.db\n.env\nexports/\nimport/processed/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !cfg.Git.Enabled {
		return nil
	}
	if err := gitops.Init(dir); err != nil {
		return err
	}
	if _, err := gitops.Snapshot(dir, "init: default rules", gitAuthor(cfg), versioned...); err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}
	return nil
}

func gitAuthor(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}
