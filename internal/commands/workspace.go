package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/moneydairy/moneydairy/internal/categorize"
	"github.com/moneydairy/moneydairy/internal/config"
	"github.com/moneydairy/moneydairy/internal/importer"
	"github.com/moneydairy/moneydairy/internal/logger"
	"github.com/moneydairy/moneydairy/internal/model"
	"github.com/moneydairy/moneydairy/internal/pipeline"
	"github.com/moneydairy/moneydairy/internal/rules"
	"github.com/moneydairy/moneydairy/internal/store"
	"github.com/moneydairy/moneydairy/internal/taxonomy"
)

// workspace is an opened data directory: config, rule files and database,
// with the database synced to the files.
type workspace struct {
	root       string
	cfg        *config.Config
	log        zerolog.Logger
	store      *store.Store
	reg        *importer.Registry
	ruleset    *categorize.Ruleset
	exclusions []model.ExclusionRule
}

func openWorkspace(ctx context.Context, opts *rootOptions, stderr io.Writer) (*workspace, error) {
	root, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s is not a moneydairy directory (run init first): %w", root, err)
		}
		return nil, err
	}
	if err := cfg.ApplyEnv(filepath.Join(root, ".env")); err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	log, err := logger.New(cfg.Log.Level, stderr)
	if err != nil {
		return nil, err
	}

	tree, err := taxonomy.Load(root)
	if err != nil {
		return nil, err
	}
	rf, err := rules.Load(filepath.Join(root, rules.FileName))
	if err != nil {
		return nil, err
	}
	sub, cat, excl, err := rf.Resolve(tree)
	if err != nil {
		return nil, fmt.Errorf("resolving rules: %w", err)
	}
	rs, err := categorize.NewRuleset(tree, sub, cat)
	if err != nil {
		return nil, fmt.Errorf("building rules: %w", err)
	}

	dbPath := cfg.Database.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root, dbPath)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	ws := &workspace{
		root:       root,
		cfg:        cfg,
		log:        log,
		store:      st,
		reg:        newRegistry(cfg),
		ruleset:    rs,
		exclusions: excl,
	}
	if err := ws.sync(ctx, tree, sub, cat, excl); err != nil {
		st.Close()
		return nil, err
	}
	log.Debug().Str("root", root).Str("db", dbPath).Int("rules", rs.Len()).Msg("workspace opened")
	return ws, nil
}

func (w *workspace) Close() error {
	return w.store.Close()
}

// context returns ctx carrying the workspace logger.
func (w *workspace) context(ctx context.Context) context.Context {
	return logger.WithContext(ctx, w.log)
}

func (w *workspace) sync(ctx context.Context, tree *taxonomy.Tree, sub []model.KeywordRule, cat []model.CategoryKeywordRule, excl []model.ExclusionRule) error {
	if err := w.store.Migrate(); err != nil {
		return err
	}
	if err := w.store.SeedBanks(ctx, bankList(w.cfg)); err != nil {
		return err
	}
	if err := w.store.SeedTaxonomy(ctx, parentsFirst(tree)); err != nil {
		return err
	}
	return w.store.ReplaceRules(ctx, sub, cat, excl)
}

// reference loads what a pipeline run needs from the database.
func (w *workspace) reference(ctx context.Context) (pipeline.Reference, error) {
	banks, err := w.store.Banks(ctx)
	if err != nil {
		return pipeline.Reference{}, err
	}
	existing, err := w.store.Fingerprints(ctx, 0)
	if err != nil {
		return pipeline.Reference{}, err
	}
	ref := pipeline.Reference{
		Banks:             banks,
		Rules:             w.ruleset,
		Exclusions:        w.exclusions,
		Existing:          existing,
		NearDuplicateDays: w.cfg.Import.NearDuplicateDays,
	}
	if ref.NearDuplicateDays > 0 {
		stored, err := w.store.Transactions(ctx, store.Filter{})
		if err != nil {
			return pipeline.Reference{}, err
		}
		for _, s := range stored {
			ref.Stored = append(ref.Stored, s.Transaction)
		}
	}
	return ref, nil
}

// newRegistry builds the extractor registry, adding column aliases from
// the config to the built-in layouts.
func newRegistry(cfg *config.Config) *importer.Registry {
	reg := importer.NewRegistry()
	for _, l := range importer.DefaultLayouts() {
		if b, ok := cfg.Bank(l.Bank); ok {
			l = l.WithColumns(b.Columns.ColumnMap())
		}
		reg.Register(importer.NewMarkerExtractor(l))
	}
	return reg
}

func bankList(cfg *config.Config) []model.Bank {
	var banks []model.Bank
	for _, l := range importer.DefaultLayouts() {
		b := model.Bank{Name: l.Bank, DisplayDescription: l.Description}
		if bc, ok := cfg.Bank(l.Bank); ok && bc.DisplayDescription != "" {
			b.DisplayDescription = bc.DisplayDescription
		}
		banks = append(banks, b)
	}
	return banks
}

func parentsFirst(tree *taxonomy.Tree) []model.Category {
	var out []model.Category
	for _, c := range tree.Categories() {
		out = append(out, c)
		out = append(out, tree.Children(c.ID)...)
	}
	return out
}
