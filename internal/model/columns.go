package model

// SignPolicy says how a bank reports debits and credits.
type SignPolicy int

const (
	// SignAsReported: one signed amount column, negative = expense.
	SignAsReported SignPolicy = iota
	// SignInverted: one amount column where positive values are charges.
	SignInverted
	// SignSplit: separate charge and deposit columns.
	SignSplit
)

func (p SignPolicy) String() string {
	switch p {
	case SignAsReported:
		return "as-reported"
	case SignInverted:
		return "inverted"
	case SignSplit:
		return "split"
	}
	return "unknown"
}

// ColumnMap lists, per canonical field, the column labels a bank uses.
// Labels are compared case- and accent-insensitively.
type ColumnMap struct {
	Date        []string
	Description []string
	Amount      []string // single-column layouts
	Charge      []string // split layouts
	Deposit     []string // split layouts
	OperationID []string
	Sign        SignPolicy
}

// AmountLabels returns every label that can carry a money value.
func (m ColumnMap) AmountLabels() []string {
	out := make([]string, 0, len(m.Amount)+len(m.Charge)+len(m.Deposit))
	out = append(out, m.Amount...)
	out = append(out, m.Charge...)
	return append(out, m.Deposit...)
}

// Merge returns m with extra's aliases appended after m's own.
// The sign policy of m is kept.
func (m ColumnMap) Merge(extra ColumnMap) ColumnMap {
	return ColumnMap{
		Date:        appendNew(m.Date, extra.Date),
		Description: appendNew(m.Description, extra.Description),
		Amount:      appendNew(m.Amount, extra.Amount),
		Charge:      appendNew(m.Charge, extra.Charge),
		Deposit:     appendNew(m.Deposit, extra.Deposit),
		OperationID: appendNew(m.OperationID, extra.OperationID),
		Sign:        m.Sign,
	}
}

func appendNew(base, extra []string) []string {
	out := append([]string(nil), base...)
	for _, e := range extra {
		dup := false
		for _, b := range out {
			if b == e {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, e)
		}
	}
	return out
}
