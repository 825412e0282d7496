package dedup

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/moneydairy/moneydairy/internal/model"
)

// maxDistanceRatio is the edit distance, relative to the longer
// description, under which two descriptions count as similar.
const maxDistanceRatio = 0.4

// Hint flags a new transaction that looks like a stored one without
// sharing its fingerprint. Hints are reported, never dropped.
type Hint struct {
	New        model.Transaction
	Existing   model.Transaction
	Similarity float64 // 1 - distance ratio
}

// NearDuplicates pairs fresh transactions with stored ones of the same bank
// and amount, dated within maxDays, whose descriptions are similar.
func NearDuplicates(fresh, stored []model.Transaction, maxDays int) []Hint {
	var hints []Hint
	for _, n := range fresh {
		for _, e := range stored {
			if n.BankID != e.BankID || !n.Amount.Equal(e.Amount) {
				continue
			}
			if daysApart(n.Date, e.Date) > maxDays {
				continue
			}
			if Fingerprint(n) == Fingerprint(e) {
				continue
			}
			ratio := distanceRatio(n.Description, e.Description)
			if ratio < maxDistanceRatio {
				hints = append(hints, Hint{New: n, Existing: e, Similarity: 1 - ratio})
			}
		}
	}
	return hints
}

func distanceRatio(a, b string) float64 {
	a, b = strings.ToUpper(a), strings.ToUpper(b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(maxLen)
}

func daysApart(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
