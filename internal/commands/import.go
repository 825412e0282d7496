package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/moneydairy/moneydairy/internal/export"
	"github.com/moneydairy/moneydairy/internal/importer"
	"github.com/moneydairy/moneydairy/internal/importlog"
	"github.com/moneydairy/moneydairy/internal/model"
	"github.com/moneydairy/moneydairy/internal/pipeline"
	"github.com/moneydairy/moneydairy/internal/store"
)

type importOptions struct {
	bank   string
	all    bool
	dryRun bool
	out    string
	// quarantine moves inbox files that fail to read, decode or extract
	// to import/failed/.
	quarantine bool
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var iopts importOptions

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import bank statement files",
		Long: `Import bank statement files (xlsx, xls or csv).

The bank is taken from --bank or from the file name. With --all, every
statement in <dir>/import/ is imported and moved to import/processed/.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if iopts.all == (len(args) > 0) {
				return fmt.Errorf("give statement files or --all")
			}

			ws, err := openWorkspace(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			var files []statementFile
			if iopts.all {
				files, err = scanImportDir(ws.root)
				if err != nil {
					return err
				}
			} else {
				for _, a := range args {
					files = append(files, statementFile{path: a})
				}
			}

			return runImport(ws.context(cmd.Context()), ws, files, iopts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&iopts.bank, "bank", "", "bank slug (default: from file name)")
	cmd.Flags().BoolVar(&iopts.all, "all", false, "import every file in the import directory")
	cmd.Flags().BoolVar(&iopts.dryRun, "dry-run", false, "process without saving")
	cmd.Flags().StringVar(&iopts.out, "out", "", "also write the new transactions to this CSV file")

	return cmd
}

// statementFile is a file to import. inbox marks files from <dir>/import/,
// which are moved once imported.
type statementFile struct {
	path  string
	inbox bool
}

func scanImportDir(root string) ([]statementFile, error) {
	infos, err := importer.Scan(root)
	if err != nil {
		return nil, err
	}
	files := make([]statementFile, 0, len(infos))
	for _, fi := range infos {
		files = append(files, statementFile{path: fi.Path, inbox: true})
	}
	return files, nil
}

// runImport processes files through the pipeline and, unless dry-running,
// stores each successful result. It returns an error when any file failed.
func runImport(ctx context.Context, ws *workspace, files []statementFile, opts importOptions, out io.Writer) error {
	if len(files) == 0 {
		fmt.Fprintln(out, "No statement files to import.")
		return nil
	}

	ref, err := ws.reference(ctx)
	if err != nil {
		return err
	}

	failed := 0
	var inputs []pipeline.Input
	var sources []statementFile
	for _, f := range files {
		in, err := readInput(f.path, opts.bank, ws.reg)
		if err != nil {
			ws.log.Error().Err(err).Str("file", f.path).Msg("import failed")
			fmt.Fprintf(out, "%s: %v\n", filepath.Base(f.path), err)
			ws.quarantine(f, opts)
			failed++
			continue
		}
		inputs = append(inputs, in)
		sources = append(sources, f)
	}

	var exported []model.Transaction
	for i, o := range pipeline.RunAll(ctx, ws.reg, inputs, ref, ws.cfg.Import.Workers) {
		if o.Err != nil {
			fmt.Fprintf(out, "%s: %v\n", o.Input.FileName, o.Err)
			ws.quarantine(sources[i], opts)
			failed++
			continue
		}
		if !opts.dryRun {
			if err := ws.save(ctx, o.Result, sources[i]); err != nil {
				fmt.Fprintf(out, "%s: %v\n", o.Input.FileName, err)
				failed++
				continue
			}
		}
		printResult(out, o.Result, opts.dryRun)
		exported = append(exported, o.Result.Transactions...)
	}

	if opts.out != "" {
		if err := export.WriteFile(opts.out, exported); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d transactions to %s\n", len(exported), opts.out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// quarantine moves a failed inbox file aside when opts ask for it. Failures
// to move are logged; the file is then retried on the next pass.
func (w *workspace) quarantine(f statementFile, opts importOptions) {
	if !opts.quarantine || !f.inbox {
		return
	}
	if err := importer.MarkFailed(w.root, filepath.Base(f.path)); err != nil {
		w.log.Error().Err(err).Str("file", f.path).Msg("quarantining failed file")
		return
	}
	w.log.Warn().Str("file", f.path).Msg("moved to import/failed")
}

func readInput(path, bank string, reg *importer.Registry) (pipeline.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("reading statement: %w", err)
	}
	name := filepath.Base(path)
	if bank == "" {
		bank = importer.BankFromFileName(name, reg.Slugs())
		if bank == "" {
			return pipeline.Input{}, fmt.Errorf("cannot tell the bank from the file name; use --bank (supported: %s)",
				strings.Join(reg.Slugs(), ", "))
		}
	}
	return pipeline.Input{FileName: name, Data: data, BankSlug: bank}, nil
}

// save persists one result, appends it to the import log and moves inbox
// files to processed.
func (w *workspace) save(ctx context.Context, res *pipeline.Result, src statementFile) error {
	s := res.Summary
	run := store.Run{
		ID:         res.RunID,
		BankID:     res.Bank.ID,
		FileName:   res.FileName,
		StartedAt:  time.Now(),
		Rows:       s.Rows,
		Skipped:    s.SkippedRowCount,
		Excluded:   s.ExcludedCount,
		Duplicates: s.DuplicateCount,
		Balance:    s.Balance,
	}
	inserted, err := w.store.InsertBatch(ctx, run, res.Transactions)
	if err != nil {
		return err
	}
	// Another file in the same batch may have stored the same movements.
	res.Summary.DuplicateCount += len(res.Transactions) - inserted
	res.Summary.Inserted = inserted

	entry := importlog.Entry{
		Timestamp:  run.StartedAt,
		RunID:      run.ID,
		Bank:       res.Bank.Name,
		File:       res.FileName,
		Rows:       s.Rows,
		Skipped:    s.SkippedRowCount,
		Excluded:   s.ExcludedCount,
		Duplicates: res.Summary.DuplicateCount,
		Inserted:   inserted,
	}
	if s.Balance != nil {
		entry.Balance = s.Balance.String()
	}
	if err := importlog.Append(w.root, []importlog.Entry{entry}); err != nil {
		return err
	}

	if src.inbox && w.cfg.Import.MoveProcessed {
		if err := importer.MarkProcessed(w.root, filepath.Base(src.path)); err != nil {
			return err
		}
	}
	w.log.Info().Str("run_id", run.ID).Str("file", res.FileName).Int("inserted", inserted).Msg("import saved")
	return nil
}

func printResult(out io.Writer, res *pipeline.Result, dryRun bool) {
	s := res.Summary
	verb := "new"
	if dryRun {
		verb = "new (dry run)"
	}
	fmt.Fprintf(out, "%s [%s]: %d %s, %d duplicates, %d excluded, %d skipped",
		res.FileName, res.Bank.Name, s.Inserted, verb, s.DuplicateCount, s.ExcludedCount, s.SkippedRowCount)
	if s.Balance != nil {
		fmt.Fprintf(out, ", balance %s", s.Balance.StringFixed(0))
	}
	fmt.Fprintln(out)

	for _, h := range res.Hints {
		fmt.Fprintf(out, "  possible duplicate: %s %s %q ~ %q (%.0f%%)\n",
			h.New.Date.Format("2006-01-02"), h.New.Amount.StringFixed(0),
			h.New.Description, h.Existing.Description, h.Similarity*100)
	}
}
