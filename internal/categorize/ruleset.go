// Package categorize assigns a subcategory to each transaction from
// keyword rules and drops transactions matched by exclusion rules.
package categorize

import (
	"errors"
	"fmt"

	"github.com/moneydairy/moneydairy/internal/coerce"
	"github.com/moneydairy/moneydairy/internal/model"
	"github.com/moneydairy/moneydairy/internal/taxonomy"
)

var (
	ErrKeywordConflict = errors.New("keyword assigned to more than one subcategory")
	ErrUnknownCategory = errors.New("rule references unknown category")
	ErrNoFallback      = errors.New("category tree has no fallback subcategory")
)

type subRule struct {
	keyword  string // folded
	raw      string
	sub      model.Category
	category model.Category
}

type catRule struct {
	keyword string // folded
	raw     string
	target  model.Category // the category's Otros or General subcategory
}

// Ruleset is an immutable snapshot of the category tree and keyword rules.
// Rule order is the slice order given to NewRuleset.
type Ruleset struct {
	tree     *taxonomy.Tree
	sub      []subRule
	cat      []catRule
	fallback model.Category
}

// NewRuleset validates rules against tree. Empty keywords are ignored and
// repeating a keyword for the same subcategory is harmless.
func NewRuleset(tree *taxonomy.Tree, subRules []model.KeywordRule, catRules []model.CategoryKeywordRule) (*Ruleset, error) {
	fallback, err := fallbackFor(tree)
	if err != nil {
		return nil, err
	}
	rs := &Ruleset{tree: tree, fallback: fallback}

	owner := make(map[string]int64)
	for _, r := range subRules {
		kw := coerce.Fold(r.Keyword)
		if kw == "" {
			continue
		}
		sub, ok := tree.Get(r.SubcategoryID)
		category, hasParent := tree.Parent(r.SubcategoryID)
		if !ok || !hasParent {
			return nil, fmt.Errorf("%w: subcategory %d for keyword %q", ErrUnknownCategory, r.SubcategoryID, r.Keyword)
		}
		if prev, ok := owner[kw]; ok {
			if prev != sub.ID {
				return nil, fmt.Errorf("%w: %q", ErrKeywordConflict, r.Keyword)
			}
			continue
		}
		owner[kw] = sub.ID
		rs.sub = append(rs.sub, subRule{keyword: kw, raw: r.Keyword, sub: sub, category: category})
	}

	for _, r := range catRules {
		kw := coerce.Fold(r.Keyword)
		if kw == "" {
			continue
		}
		cat, ok := tree.Get(r.CategoryID)
		if !ok || cat.IsSubcategory() {
			return nil, fmt.Errorf("%w: category %d for keyword %q", ErrUnknownCategory, r.CategoryID, r.Keyword)
		}
		target, ok := otherSubcategory(tree, cat.ID)
		if !ok {
			return nil, fmt.Errorf("%w: category %q has no %s or %s subcategory",
				ErrUnknownCategory, cat.Name, model.SubcategoryOther, model.SubcategoryGeneral)
		}
		rs.cat = append(rs.cat, catRule{keyword: kw, raw: r.Keyword, target: target})
	}
	return rs, nil
}

// Tree returns the category tree the rules were validated against.
func (rs *Ruleset) Tree() *taxonomy.Tree {
	return rs.tree
}

// Fallback returns the subcategory given to unmatched transactions.
func (rs *Ruleset) Fallback() model.Category {
	return rs.fallback
}

// Len returns the number of active keyword rules.
func (rs *Ruleset) Len() int {
	return len(rs.sub) + len(rs.cat)
}

func fallbackFor(tree *taxonomy.Tree) (model.Category, error) {
	cat, ok := tree.ByName(model.CategoryUnclassified)
	if !ok {
		return model.Category{}, fmt.Errorf("%w: missing category %q", ErrNoFallback, model.CategoryUnclassified)
	}
	sub, ok := otherSubcategory(tree, cat.ID)
	if !ok {
		return model.Category{}, fmt.Errorf("%w: %q has no %s subcategory", ErrNoFallback, cat.Name, model.SubcategoryOther)
	}
	return sub, nil
}

func otherSubcategory(tree *taxonomy.Tree, categoryID int64) (model.Category, bool) {
	if sub, ok := tree.Subcategory(categoryID, model.SubcategoryOther); ok {
		return sub, true
	}
	return tree.Subcategory(categoryID, model.SubcategoryGeneral)
}
