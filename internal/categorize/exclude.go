package categorize

import (
	"github.com/moneydairy/moneydairy/internal/coerce"
	"github.com/moneydairy/moneydairy/internal/model"
)

// ExcludeIgnored drops transactions whose description contains any
// exclusion keyword (case- and accent-insensitive). Empty keywords are
// ignored. Order of the kept transactions is preserved.
func ExcludeIgnored(txns []model.Transaction, rules []model.ExclusionRule) ([]model.Transaction, int) {
	keywords := make([]string, 0, len(rules))
	for _, r := range rules {
		if kw := coerce.Fold(r.Keyword); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return txns, 0
	}

	var kept []model.Transaction
	excluded := 0
	for _, t := range txns {
		if matchesAny(coerce.Fold(t.Description), keywords) {
			excluded++
			continue
		}
		kept = append(kept, t)
	}
	return kept, excluded
}

func matchesAny(folded string, keywords []string) bool {
	for _, kw := range keywords {
		if containsFolded(folded, kw) {
			return true
		}
	}
	return false
}
