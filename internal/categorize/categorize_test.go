package categorize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneydairy/moneydairy/internal/model"
	"github.com/moneydairy/moneydairy/internal/taxonomy"
)

// IDs from taxonomy.DefaultCategories.
const (
	alimentacion   = 1
	supermercado   = 11
	restaurantes   = 12
	alimentOtros   = 13
	transporte     = 2
	combustible    = 22
	sinClasificar  = 9
	sinClasifOtros = 91
)

func txn(desc string) model.Transaction {
	return model.Transaction{
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      decimal.NewFromInt(-45000),
		BankID:      1,
	}
}

func mustRuleset(t *testing.T, sub []model.KeywordRule, cat []model.CategoryKeywordRule) *Ruleset {
	t.Helper()
	rs, err := NewRuleset(taxonomy.DefaultTree(), sub, cat)
	require.NoError(t, err)
	return rs
}

func TestClassify_SupermarketScenario(t *testing.T) {
	rs := mustRuleset(t, []model.KeywordRule{{SubcategoryID: supermercado, Keyword: "SUPERMERCADO"}}, nil)
	m := NewClassifier(rs).Classify(txn("COMPRA SUPERMERCADO LIDER"))

	assert.Equal(t, Match{CategoryID: alimentacion, SubcategoryID: supermercado, Keyword: "SUPERMERCADO", Source: SourceSubcategory}, m)
}

func TestClassify_CaseAndAccentInsensitive(t *testing.T) {
	rs := mustRuleset(t, []model.KeywordRule{{SubcategoryID: restaurantes, Keyword: "Café"}}, nil)
	m := NewClassifier(rs).Classify(txn("STARBUCKS CAFE COSTANERA"))
	assert.Equal(t, int64(restaurantes), m.SubcategoryID)
}

func TestClassify_FirstRuleWins(t *testing.T) {
	desc := "COMPRA COPEC SUPERMERCADO"

	rs := mustRuleset(t, []model.KeywordRule{
		{SubcategoryID: supermercado, Keyword: "SUPERMERCADO"},
		{SubcategoryID: combustible, Keyword: "COPEC"},
	}, nil)
	assert.Equal(t, int64(supermercado), NewClassifier(rs).Classify(txn(desc)).SubcategoryID)

	// Same rules, reversed order: no specificity or length tie-break.
	rs = mustRuleset(t, []model.KeywordRule{
		{SubcategoryID: combustible, Keyword: "COPEC"},
		{SubcategoryID: supermercado, Keyword: "SUPERMERCADO"},
	}, nil)
	m := NewClassifier(rs).Classify(txn(desc))
	assert.Equal(t, int64(combustible), m.SubcategoryID)
	assert.Equal(t, int64(transporte), m.CategoryID)
}

func TestClassify_CategoryKeywordGoesToOtros(t *testing.T) {
	rs := mustRuleset(t,
		[]model.KeywordRule{{SubcategoryID: supermercado, Keyword: "LIDER"}},
		[]model.CategoryKeywordRule{{CategoryID: alimentacion, Keyword: "PANADERIA"}},
	)
	c := NewClassifier(rs)

	m := c.Classify(txn("PANADERIA LA ESPIGA"))
	assert.Equal(t, Match{CategoryID: alimentacion, SubcategoryID: alimentOtros, Keyword: "PANADERIA", Source: SourceCategory}, m)

	// Subcategory rules are tried first.
	m = c.Classify(txn("PANADERIA LIDER"))
	assert.Equal(t, SourceSubcategory, m.Source)
}

func TestClassify_CategoryKeywordFallsBackToGeneral(t *testing.T) {
	tree, err := taxonomy.NewTree([]model.Category{
		{ID: 1, Name: "Hogar"},
		{ID: 10, Name: "General", ParentID: 1},
		{ID: 9, Name: model.CategoryUnclassified},
		{ID: 90, Name: model.SubcategoryOther, ParentID: 9},
	})
	require.NoError(t, err)

	rs, err := NewRuleset(tree, nil, []model.CategoryKeywordRule{{CategoryID: 1, Keyword: "SODIMAC"}})
	require.NoError(t, err)
	assert.Equal(t, int64(10), NewClassifier(rs).Classify(txn("SODIMAC MAIPU")).SubcategoryID)
}

func TestClassify_Fallback(t *testing.T) {
	rs := mustRuleset(t, []model.KeywordRule{{SubcategoryID: supermercado, Keyword: "LIDER"}}, nil)
	m := NewClassifier(rs).Classify(txn("GIRO CAJERO AUTOMATICO"))
	assert.Equal(t, Match{CategoryID: sinClasificar, SubcategoryID: sinClasifOtros, Source: SourceFallback}, m)
}

func TestApply_EveryTransactionCategorized(t *testing.T) {
	rs := mustRuleset(t, []model.KeywordRule{{SubcategoryID: supermercado, Keyword: "LIDER"}}, nil)
	in := []model.Transaction{txn("LIDER"), txn("???"), txn("")}

	out := NewClassifier(rs).Apply(in)
	require.Len(t, out, 3)
	for _, tx := range out {
		assert.True(t, tx.Categorized())
	}
	assert.Equal(t, int64(supermercado), *out[0].SubcategoryID)
	assert.Equal(t, int64(sinClasifOtros), *out[1].SubcategoryID)
	assert.Nil(t, in[0].CategoryID, "input is not modified")
}

func TestApply_IdempotentAndIgnoresPriorState(t *testing.T) {
	rs := mustRuleset(t, []model.KeywordRule{{SubcategoryID: supermercado, Keyword: "LIDER"}}, nil)
	c := NewClassifier(rs)

	stale := txn("COMPRA LIDER")
	wrong := int64(combustible)
	stale.SubcategoryID = &wrong
	stale.CategoryID = &wrong

	first := c.Apply([]model.Transaction{stale})
	second := c.Apply(first)
	assert.Equal(t, int64(supermercado), *first[0].SubcategoryID)
	assert.Equal(t, *first[0].SubcategoryID, *second[0].SubcategoryID)
	assert.Equal(t, *first[0].CategoryID, *second[0].CategoryID)
	assert.Equal(t, c.Classify(stale), c.Classify(stale))
}

func TestNewRuleset_Errors(t *testing.T) {
	tree := taxonomy.DefaultTree()

	_, err := NewRuleset(tree, []model.KeywordRule{
		{SubcategoryID: supermercado, Keyword: "LIDER"},
		{SubcategoryID: restaurantes, Keyword: "lider"},
	}, nil)
	assert.ErrorIs(t, err, ErrKeywordConflict)

	_, err = NewRuleset(tree, []model.KeywordRule{{SubcategoryID: alimentacion, Keyword: "X"}}, nil)
	assert.ErrorIs(t, err, ErrUnknownCategory, "top-level category is not a subcategory")

	_, err = NewRuleset(tree, nil, []model.CategoryKeywordRule{{CategoryID: supermercado, Keyword: "X"}})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = NewRuleset(tree, []model.KeywordRule{{SubcategoryID: 999, Keyword: "X"}}, nil)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestNewRuleset_RepeatedAndEmptyKeywords(t *testing.T) {
	rs := mustRuleset(t, []model.KeywordRule{
		{SubcategoryID: supermercado, Keyword: "LIDER"},
		{SubcategoryID: supermercado, Keyword: "Líder"},
		{SubcategoryID: restaurantes, Keyword: "  "},
	}, nil)
	assert.Equal(t, 1, rs.Len())
}

func TestNewRuleset_NoFallback(t *testing.T) {
	tree, err := taxonomy.NewTree([]model.Category{{ID: 1, Name: "Hogar"}, {ID: 10, Name: "Otros", ParentID: 1}})
	require.NoError(t, err)
	_, err = NewRuleset(tree, nil, nil)
	assert.ErrorIs(t, err, ErrNoFallback)

	tree, err = taxonomy.NewTree([]model.Category{{ID: 9, Name: model.CategoryUnclassified}})
	require.NoError(t, err)
	_, err = NewRuleset(tree, nil, nil)
	assert.ErrorIs(t, err, ErrNoFallback)
}

func TestExcludeIgnored(t *testing.T) {
	rules := []model.ExclusionRule{
		{Keyword: "TRANSFERENCIA ENVIADA A JORGE RETAMA", Comment: "own account"},
		{Keyword: ""},
	}
	in := []model.Transaction{
		txn("COMPRA SUPERMERCADO LIDER"),
		txn("Transferencia enviada a Jorge Retama"),
		txn("PAGO LUZ"),
	}

	kept, excluded := ExcludeIgnored(in, rules)
	assert.Equal(t, 1, excluded)
	require.Len(t, kept, 2)
	assert.Equal(t, "COMPRA SUPERMERCADO LIDER", kept[0].Description)
	assert.Equal(t, "PAGO LUZ", kept[1].Description)
}

func TestExcludeIgnored_NoRules(t *testing.T) {
	in := []model.Transaction{txn("A"), txn("B")}
	kept, excluded := ExcludeIgnored(in, []model.ExclusionRule{{Keyword: "  "}})
	assert.Equal(t, in, kept)
	assert.Zero(t, excluded)
}

func TestExclusionBeatsCategoryKeyword(t *testing.T) {
	rs := mustRuleset(t, []model.KeywordRule{{SubcategoryID: supermercado, Keyword: "TRANSFERENCIA"}}, nil)
	kept, excluded := ExcludeIgnored(
		[]model.Transaction{txn("TRANSFERENCIA ENVIADA A JORGE RETAMA")},
		[]model.ExclusionRule{{Keyword: "JORGE RETAMA"}},
	)
	assert.Equal(t, 1, excluded)
	assert.Empty(t, NewClassifier(rs).Apply(kept))
}
