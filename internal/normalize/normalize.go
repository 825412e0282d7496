// Package normalize turns extracted statement rows into canonical
// transactions. Rows that cannot be coerced are dropped and counted.
package normalize

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/moneydairy/moneydairy/internal/coerce"
	"github.com/moneydairy/moneydairy/internal/model"
)

// Reasons a row is skipped.
const (
	ReasonMissingColumn    = "missing column"
	ReasonInvalidDate      = "invalid date"
	ReasonOutsidePeriod    = "outside statement period"
	ReasonEmptyDescription = "empty description"
	ReasonInvalidAmount    = "invalid amount"
	ReasonZeroAmount       = "zero amount"
	ReasonAmbiguousAmount  = "charge and deposit both set"
)

// Result is the normalizer output for one statement.
type Result struct {
	Transactions []model.Transaction
	Skipped      int
	Reasons      map[string]int
}

func (r *Result) skip(reason string) {
	r.Skipped++
	if r.Reasons == nil {
		r.Reasons = make(map[string]int)
	}
	r.Reasons[reason]++
}

// Normalize converts rows to transactions for bankID. Source order is kept.
// Dates outside a known period are skipped.
func Normalize(rows []model.RawRow, bankID int64, cols model.ColumnMap, period model.Period) Result {
	var res Result
	for _, row := range rows {
		t, reason := normalizeRow(row, bankID, cols, period)
		if reason != "" {
			res.skip(reason)
			continue
		}
		res.Transactions = append(res.Transactions, t)
	}
	return res
}

func normalizeRow(row model.RawRow, bankID int64, cols model.ColumnMap, period model.Period) (model.Transaction, string) {
	dateCell, ok := lookup(row, cols.Date)
	if !ok {
		return model.Transaction{}, ReasonMissingColumn
	}
	date, err := coerce.ParseDate(dateCell)
	if err != nil {
		return model.Transaction{}, ReasonInvalidDate
	}
	if !period.Contains(date) {
		return model.Transaction{}, ReasonOutsidePeriod
	}

	descCell, ok := lookup(row, cols.Description)
	if !ok {
		return model.Transaction{}, ReasonMissingColumn
	}
	desc := coerce.Clean(descCell)
	if desc == "" {
		return model.Transaction{}, ReasonEmptyDescription
	}

	amount, reason := signedAmount(row, cols)
	if reason != "" {
		return model.Transaction{}, reason
	}

	opID, _ := lookup(row, cols.OperationID)
	return model.Transaction{
		Date:              date,
		Description:       desc,
		Amount:            amount,
		BankID:            bankID,
		SourceOperationID: coerce.Clean(opID),
	}, ""
}

// signedAmount applies the bank's sign policy so that expenses are negative.
func signedAmount(row model.RawRow, cols model.ColumnMap) (decimal.Decimal, string) {
	if cols.Sign == model.SignSplit {
		charge, hasCharge := lookup(row, cols.Charge)
		deposit, hasDeposit := lookup(row, cols.Deposit)
		if hasCharge || hasDeposit {
			return splitAmount(charge, deposit)
		}
	}

	cell, ok := lookup(row, cols.Amount)
	if !ok {
		return decimal.Zero, ReasonMissingColumn
	}
	v, err := coerce.ParseAmount(cell)
	if err != nil {
		return decimal.Zero, ReasonInvalidAmount
	}
	if v.IsZero() {
		return decimal.Zero, ReasonZeroAmount
	}
	if cols.Sign == model.SignInverted {
		v = v.Neg()
	}
	return v, ""
}

// splitAmount reads a charge/deposit pair. Either side may be empty; both
// set and non-zero is ambiguous.
func splitAmount(chargeCell, depositCell string) (decimal.Decimal, string) {
	charge, err := optionalAmount(chargeCell)
	if err != nil {
		return decimal.Zero, ReasonInvalidAmount
	}
	deposit, err := optionalAmount(depositCell)
	if err != nil {
		return decimal.Zero, ReasonInvalidAmount
	}

	switch {
	case !charge.IsZero() && !deposit.IsZero():
		return decimal.Zero, ReasonAmbiguousAmount
	case !charge.IsZero():
		return charge.Abs().Neg(), ""
	case !deposit.IsZero():
		return deposit.Abs(), ""
	}
	return decimal.Zero, ReasonZeroAmount
}

func optionalAmount(cell string) (decimal.Decimal, error) {
	v, err := coerce.ParseAmount(cell)
	if errors.Is(err, coerce.ErrEmpty) {
		return decimal.Zero, nil
	}
	return v, err
}

// lookup returns the cell of the first alias present in row. Labels are
// compared case- and accent-insensitively.
func lookup(row model.RawRow, aliases []string) (string, bool) {
	for _, a := range aliases {
		if v, ok := row[a]; ok {
			return v, true
		}
		for label, v := range row {
			if coerce.EqualFold(label, a) {
				return v, true
			}
		}
	}
	return "", false
}
