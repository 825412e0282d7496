package coerce

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyTokens = []string{"$", "CLP", "clp", " "}

// ParseAmount reads a money cell. It accepts Chilean formatting ("-45.000",
// "1.234,56"), plain numbers ("1234.56"), English thousands ("1,234.56"),
// a leading currency symbol and accounting parentheses for negatives.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = Clean(s)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}
	raw := s

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	switch {
	case strings.HasPrefix(s, "-"):
		neg = !neg
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		neg = !neg
		s = s[:len(s)-1]
	}
	// Currency symbol may sit between the sign and the digits.
	s = strings.TrimLeft(s, "$")

	s = normalizeSeparators(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("non-numeric amount %q", raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("non-numeric amount %q", raw)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators rewrites s so that '.' is the only decimal separator
// and no grouping separators remain.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		// 1,234.56
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || isGrouped(s, lastDot) {
			return strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// isGrouped reports whether a single dot at i reads as a thousands
// separator: one to three digits before it and exactly three after.
func isGrouped(s string, i int) bool {
	head, tail := s[:i], s[i+1:]
	return len(tail) == 3 && len(head) >= 1 && len(head) <= 3 && head != "0"
}
