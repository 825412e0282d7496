package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types, derived from the amount sign.
const (
	TypeExpense = "Gasto"
	TypeIncome  = "Ingreso"
)

// Transaction is the canonical movement produced by the normalizer.
type Transaction struct {
	Date              time.Time       // calendar date, UTC midnight
	Description       string          // trimmed source text
	Amount            decimal.Decimal // negative = expense, positive = income
	BankID            int64
	CategoryID        *int64
	SubcategoryID     *int64
	SourceOperationID string // bank operation reference, empty if absent
}

// Type returns "Gasto" for expenses and "Ingreso" for income.
// A zero amount has no type.
func (t Transaction) Type() string {
	switch t.Amount.Sign() {
	case -1:
		return TypeExpense
	case 1:
		return TypeIncome
	}
	return ""
}

// Categorized reports whether both category references are set.
func (t Transaction) Categorized() bool {
	return t.CategoryID != nil && t.SubcategoryID != nil
}

// RawRow is one extracted movement line keyed by the source column label.
type RawRow map[string]string

// Period is an inclusive date range. The zero value means unknown.
type Period struct {
	From time.Time
	To   time.Time
}

// Known reports whether both bounds are set.
func (p Period) Known() bool {
	return !p.From.IsZero() && !p.To.IsZero()
}

// Contains reports whether d falls inside the period. An unknown period
// contains every date.
func (p Period) Contains(d time.Time) bool {
	if !p.Known() {
		return true
	}
	return !d.Before(p.From) && !d.After(p.To)
}
