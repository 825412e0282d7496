// Package dedup decides which normalized transactions are new relative to
// what the store already holds.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/moneydairy/moneydairy/internal/coerce"
	"github.com/moneydairy/moneydairy/internal/model"
)

// Set is a set of fingerprints.
type Set map[string]struct{}

// NewSet builds a set from fingerprints.
func NewSet(fps ...string) Set {
	s := make(Set, len(fps))
	for _, fp := range fps {
		s[fp] = struct{}{}
	}
	return s
}

// Has reports whether fp is in the set.
func (s Set) Has(fp string) bool {
	_, ok := s[fp]
	return ok
}

// Fingerprint returns the duplicate-detection key for t. A bank operation
// reference plus the movement date identifies the movement; otherwise the key
// hashes bank, date, amount and folded description. References made only of
// zeros are placeholders some exports write for every row and are ignored.
func Fingerprint(t model.Transaction) string {
	bank := strconv.FormatInt(t.BankID, 10)
	day := t.Date.Format("2006-01-02")
	if id := operationID(t.SourceOperationID); id != "" {
		return "op:" + bank + ":" + day + ":" + id
	}
	key := strings.Join([]string{
		bank,
		day,
		t.Amount.StringFixed(2),
		coerce.Fold(t.Description),
	}, "|")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func operationID(s string) string {
	s = strings.TrimSpace(s)
	if strings.Trim(s, "0") == "" {
		return ""
	}
	return s
}

// FilterNew drops transactions whose fingerprint is in existing or already
// seen earlier in the batch. The first occurrence wins. existing is not
// modified.
func FilterNew(txns []model.Transaction, existing Set) ([]model.Transaction, int) {
	seen := make(Set, len(txns))
	var fresh []model.Transaction
	dups := 0
	for _, t := range txns {
		fp := Fingerprint(t)
		if existing.Has(fp) || seen.Has(fp) {
			dups++
			continue
		}
		seen[fp] = struct{}{}
		fresh = append(fresh, t)
	}
	return fresh, dups
}
