// Package pipeline runs one statement file through extraction,
// normalization, exclusion, deduplication and classification.
package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moneydairy/moneydairy/internal/categorize"
	"github.com/moneydairy/moneydairy/internal/dedup"
	"github.com/moneydairy/moneydairy/internal/importer"
	"github.com/moneydairy/moneydairy/internal/logger"
	"github.com/moneydairy/moneydairy/internal/model"
	"github.com/moneydairy/moneydairy/internal/normalize"
	"github.com/moneydairy/moneydairy/internal/sheet"
)

// ReasonUnreadableRow counts table rows the extractor dropped for lacking a
// parseable date or amount.
const ReasonUnreadableRow = "no date or amount"

// Input is one statement file to import.
type Input struct {
	FileName string
	Data     []byte
	BankSlug string
}

// Reference is the read-only data a run works against. It is never
// modified, so one Reference can serve concurrent runs.
type Reference struct {
	Banks      []model.Bank
	Rules      *categorize.Ruleset // carries the category tree
	Exclusions []model.ExclusionRule
	Existing   dedup.Set

	// Stored transactions and the day window for near-duplicate hints.
	// Hints are skipped when either is empty.
	Stored            []model.Transaction
	NearDuplicateDays int
}

// Summary counts what happened to the rows of one file.
type Summary struct {
	Rows            int // rows in the movement table
	SkippedRowCount int
	ExcludedCount   int
	DuplicateCount  int
	Inserted        int // new transactions; the store may lower it
	Balance         *decimal.Decimal
	SkipReasons     map[string]int
}

// Result is the outcome of a successful run.
type Result struct {
	RunID        string
	Bank         model.Bank
	FileName     string
	Transactions []model.Transaction
	Hints        []dedup.Hint
	Summary      Summary
}

// Run processes one file. Any fatal error is an *ImportError and no
// partial result is returned. Cancellation is checked between stages.
func Run(ctx context.Context, reg *importer.Registry, in Input, ref Reference) (*Result, error) {
	runID := uuid.NewString()
	slug := strings.ToLower(strings.TrimSpace(in.BankSlug))
	log := logger.FromContext(ctx).With().
		Str("run_id", runID).
		Str("bank", slug).
		Str("file", in.FileName).
		Logger()

	fail := func(stage Stage, err error) (*Result, error) {
		log.Error().Err(err).Str("stage", string(stage)).Msg("import failed")
		return nil, &ImportError{Bank: slug, File: in.FileName, Stage: stage, Err: err}
	}

	ext, err := reg.Select(slug)
	if err != nil {
		return fail(StageSelect, err)
	}
	bank, ok := findBank(ref.Banks, slug)
	if !ok {
		return fail(StageSelect, &importer.UnsupportedBankError{Slug: slug, Valid: knownSlugs(reg, ref.Banks)})
	}
	if ref.Rules == nil {
		return fail(StageClassify, ErrNoRules)
	}

	if err := ctx.Err(); err != nil {
		return fail(StageDecode, err)
	}
	sh, err := sheet.Decode(in.FileName, in.Data)
	if err != nil {
		return fail(StageDecode, err)
	}
	log.Debug().Str("format", string(sh.Format)).Int("sheet_rows", sh.Len()).Msg("decoded")

	if err := ctx.Err(); err != nil {
		return fail(StageExtract, err)
	}
	st, err := ext.Extract(sh)
	if err != nil {
		return fail(StageExtract, err)
	}
	log.Debug().Int("rows", len(st.Rows)).Int("skipped", st.Skipped).Bool("balance", st.Balance != nil).Msg("extracted")

	if err := ctx.Err(); err != nil {
		return fail(StageNormalize, err)
	}
	norm := normalize.Normalize(st.Rows, bank.ID, ext.Layout().Columns, st.Period)
	log.Debug().Int("transactions", len(norm.Transactions)).Int("skipped", norm.Skipped).Msg("normalized")

	if err := ctx.Err(); err != nil {
		return fail(StageExclude, err)
	}
	kept, excluded := categorize.ExcludeIgnored(norm.Transactions, ref.Exclusions)

	if err := ctx.Err(); err != nil {
		return fail(StageDedup, err)
	}
	fresh, dups := dedup.FilterNew(kept, ref.Existing)

	if err := ctx.Err(); err != nil {
		return fail(StageClassify, err)
	}
	classified := categorize.NewClassifier(ref.Rules).Apply(fresh)

	var hints []dedup.Hint
	if ref.NearDuplicateDays > 0 && len(ref.Stored) > 0 {
		hints = dedup.NearDuplicates(classified, ref.Stored, ref.NearDuplicateDays)
	}

	res := &Result{
		RunID:        runID,
		Bank:         bank,
		FileName:     in.FileName,
		Transactions: classified,
		Hints:        hints,
		Summary: Summary{
			Rows:            len(st.Rows) + st.Skipped,
			SkippedRowCount: st.Skipped + norm.Skipped,
			ExcludedCount:   excluded,
			DuplicateCount:  dups,
			Inserted:        len(classified),
			Balance:         st.Balance,
			SkipReasons:     skipReasons(st.Skipped, norm.Reasons),
		},
	}
	logSummary(log, res)
	return res, nil
}

func logSummary(log zerolog.Logger, res *Result) {
	s := res.Summary
	if s.SkippedRowCount > 0 {
		ev := log.Warn().Int("skipped", s.SkippedRowCount)
		for reason, n := range s.SkipReasons {
			ev = ev.Int(reason, n)
		}
		ev.Msg("rows skipped")
	}
	if len(res.Hints) > 0 {
		log.Warn().Int("hints", len(res.Hints)).Msg("possible duplicates of stored transactions")
	}
	ev := log.Info().
		Int("rows", s.Rows).
		Int("excluded", s.ExcludedCount).
		Int("duplicates", s.DuplicateCount).
		Int("new", s.Inserted)
	if s.Balance != nil {
		ev = ev.Str("balance", s.Balance.String())
	}
	ev.Msg("import processed")
}

func skipReasons(extracted int, normalized map[string]int) map[string]int {
	out := make(map[string]int, len(normalized)+1)
	for k, v := range normalized {
		out[k] = v
	}
	if extracted > 0 {
		out[ReasonUnreadableRow] = extracted
	}
	return out
}

func findBank(banks []model.Bank, slug string) (model.Bank, bool) {
	for _, b := range banks {
		if strings.EqualFold(b.Name, slug) {
			return b, true
		}
	}
	return model.Bank{}, false
}

// knownSlugs lists registered slugs that also exist in the reference banks.
func knownSlugs(reg *importer.Registry, banks []model.Bank) []string {
	var out []string
	for _, s := range reg.Slugs() {
		if _, ok := findBank(banks, s); ok {
			out = append(out, s)
		}
	}
	return out
}
