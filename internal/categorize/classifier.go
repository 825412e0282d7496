package categorize

import (
	"strings"

	"github.com/moneydairy/moneydairy/internal/coerce"
	"github.com/moneydairy/moneydairy/internal/model"
)

// Source records which matcher produced a Match.
type Source string

const (
	SourceSubcategory Source = "subcategory"
	SourceCategory    Source = "category"
	SourceFallback    Source = "fallback"
)

// Match is a classification decision.
type Match struct {
	CategoryID    int64
	SubcategoryID int64
	Keyword       string // empty for the fallback
	Source        Source
}

// Matcher tries to classify a folded description.
type Matcher interface {
	Match(folded string) (Match, bool)
}

type subcategoryMatcher struct{ rules []subRule }

func (m subcategoryMatcher) Match(folded string) (Match, bool) {
	for _, r := range m.rules {
		if containsFolded(folded, r.keyword) {
			return Match{CategoryID: r.category.ID, SubcategoryID: r.sub.ID, Keyword: r.raw, Source: SourceSubcategory}, true
		}
	}
	return Match{}, false
}

// categoryMatcher maps a category-level keyword to the category's Otros
// subcategory.
type categoryMatcher struct{ rules []catRule }

func (m categoryMatcher) Match(folded string) (Match, bool) {
	for _, r := range m.rules {
		if containsFolded(folded, r.keyword) {
			return Match{CategoryID: r.target.ParentID, SubcategoryID: r.target.ID, Keyword: r.raw, Source: SourceCategory}, true
		}
	}
	return Match{}, false
}

type fallbackMatcher struct{ sub model.Category }

func (m fallbackMatcher) Match(string) (Match, bool) {
	return Match{CategoryID: m.sub.ParentID, SubcategoryID: m.sub.ID, Source: SourceFallback}, true
}

// Classifier runs a chain of matchers; the first match wins.
type Classifier struct {
	chain []Matcher
}

// NewClassifier builds the subcategory, category, fallback chain for rs.
func NewClassifier(rs *Ruleset) *Classifier {
	return &Classifier{chain: []Matcher{
		subcategoryMatcher{rules: rs.sub},
		categoryMatcher{rules: rs.cat},
		fallbackMatcher{sub: rs.fallback},
	}}
}

// Classify returns the subcategory for t. It ignores any IDs already set on
// t, so classifying twice gives the same answer.
func (c *Classifier) Classify(t model.Transaction) Match {
	folded := coerce.Fold(t.Description)
	for _, m := range c.chain {
		if match, ok := m.Match(folded); ok {
			return match
		}
	}
	// Unreachable: the fallback always matches.
	return Match{}
}

// Apply returns copies of txns with category and subcategory set.
func (c *Classifier) Apply(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	for i, t := range txns {
		m := c.Classify(t)
		cat, sub := m.CategoryID, m.SubcategoryID
		t.CategoryID = &cat
		t.SubcategoryID = &sub
		out[i] = t
	}
	return out
}

func containsFolded(folded, keyword string) bool {
	return keyword != "" && strings.Contains(folded, keyword)
}
