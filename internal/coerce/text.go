// Package coerce turns spreadsheet cell text into dates, amounts and
// comparable labels. Source exports are Spanish-locale and hand-edited, so
// every function here is tolerant of padding and diacritics.
package coerce

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const nbsp = "\u00a0"

// Clean trims a cell, turns non-breaking spaces into spaces and collapses
// runs of whitespace.
func Clean(s string) string {
	s = strings.ReplaceAll(s, nbsp, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Fold returns s cleaned, lower-cased and stripped of combining marks, so
// "Descripción" and "DESCRIPCION" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, Clean(s))
	if err != nil {
		out = Clean(s)
	}
	return strings.ToLower(out)
}

// ContainsFold reports whether needle occurs in haystack ignoring case and
// accents. An empty needle never matches.
func ContainsFold(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Fold(haystack), n)
}

// EqualFold reports whether a and b are equal ignoring case and accents.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}
