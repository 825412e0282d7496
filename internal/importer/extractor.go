package importer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/moneydairy/moneydairy/internal/coerce"
	"github.com/moneydairy/moneydairy/internal/model"
	"github.com/moneydairy/moneydairy/internal/sheet"
)

// Statement is what an extractor finds in one statement file.
type Statement struct {
	Balance *decimal.Decimal // nil when the layout has none or it did not parse
	Period  model.Period
	Header  []string
	Rows    []model.RawRow
	Skipped int
}

// MarkerExtractor finds the balance, period and movement table by scanning
// for marker labels instead of fixed coordinates.
type MarkerExtractor struct {
	layout Layout
}

// NewMarkerExtractor creates an extractor for the given layout.
func NewMarkerExtractor(l Layout) *MarkerExtractor {
	return &MarkerExtractor{layout: l}
}

func (e *MarkerExtractor) Bank() string   { return e.layout.Bank }
func (e *MarkerExtractor) Layout() Layout { return e.layout }

// Extract locates the header row and returns the movement table below it.
func (e *MarkerExtractor) Extract(s *sheet.Sheet) (Statement, error) {
	if s == nil || s.Len() == 0 {
		return Statement{}, &LayoutNotRecognizedError{Bank: e.layout.Bank, Reason: "empty sheet"}
	}

	headerRow := e.findHeader(s)
	if headerRow < 0 {
		return Statement{}, &LayoutNotRecognizedError{Bank: e.layout.Bank, Reason: "movement table header not found"}
	}

	header := s.Rows[headerRow]
	labels := make([]string, len(header))
	copy(labels, header)

	dateIdx := columnIndexes(labels, e.layout.Columns.Date)
	amountIdx := columnIndexes(labels, e.layout.Columns.AmountLabels())

	st := Statement{Header: labels}
	end := s.Len()
	for r := headerRow + 1; r < s.Len(); r++ {
		if s.RowEmpty(r) {
			end = r
			break
		}
		if !hasDate(s, r, dateIdx) || !hasAmount(s, r, amountIdx) {
			st.Skipped++
			continue
		}
		st.Rows = append(st.Rows, rawRow(labels, s.Rows[r]))
	}

	// Markers are searched outside the movement table only.
	outside := func(r int) bool { return r < headerRow || r >= end }
	st.Balance = e.findBalance(s, outside)
	st.Period = e.findPeriod(s, outside)
	return st, nil
}

func (e *MarkerExtractor) findHeader(s *sheet.Sheet) int {
	groups := e.layout.HeaderMarkers()
	for r, row := range s.Rows {
		if matchesAll(row, groups) {
			return r
		}
	}
	return -1
}

func matchesAll(row []string, groups [][]string) bool {
	for _, g := range groups {
		if len(g) == 0 {
			return false
		}
		found := false
		for _, cell := range row {
			if labelMatches(cell, g) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func labelMatches(cell string, aliases []string) bool {
	if cell == "" {
		return false
	}
	for _, a := range aliases {
		if coerce.EqualFold(cell, a) {
			return true
		}
	}
	return false
}

func columnIndexes(labels, aliases []string) []int {
	var idx []int
	for i, l := range labels {
		if labelMatches(l, aliases) {
			idx = append(idx, i)
		}
	}
	return idx
}

func hasDate(s *sheet.Sheet, r int, idx []int) bool {
	for _, c := range idx {
		if _, err := coerce.ParseDate(s.Cell(r, c)); err == nil {
			return true
		}
	}
	return false
}

func hasAmount(s *sheet.Sheet, r int, idx []int) bool {
	for _, c := range idx {
		if _, err := coerce.ParseAmount(s.Cell(r, c)); err == nil {
			return true
		}
	}
	return false
}

// rawRow keys cells by header label. Unlabeled columns are dropped and the
// first of two identical labels wins.
func rawRow(labels, cells []string) model.RawRow {
	row := make(model.RawRow, len(labels))
	for i, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := row[l]; ok {
			continue
		}
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		row[l] = v
	}
	return row
}

// findBalance returns the first marker whose neighbour parses as an amount.
// Section titles that merely mention a marker are passed over.
func (e *MarkerExtractor) findBalance(s *sheet.Sheet, outside func(int) bool) *decimal.Decimal {
	if len(e.layout.BalanceMarkers) == 0 {
		return nil
	}
	for r, row := range s.Rows {
		if !outside(r) {
			continue
		}
		for c, cell := range row {
			if !containsAny(cell, e.layout.BalanceMarkers) {
				continue
			}
			v, ok := neighbour(s, r, c)
			if !ok {
				continue
			}
			d, err := coerce.ParseAmount(v)
			if err != nil {
				continue
			}
			return &d
		}
	}
	return nil
}

func (e *MarkerExtractor) findPeriod(s *sheet.Sheet, outside func(int) bool) model.Period {
	var p model.Period
	for r, row := range s.Rows {
		if !outside(r) {
			continue
		}
		for c, cell := range row {
			label := strings.TrimSuffix(strings.TrimSpace(cell), ":")
			isFrom := p.From.IsZero() && labelMatches(label, e.layout.PeriodFrom)
			isTo := p.To.IsZero() && labelMatches(label, e.layout.PeriodTo)
			if !isFrom && !isTo {
				continue
			}
			v, ok := neighbour(s, r, c)
			if !ok {
				continue
			}
			d, err := coerce.ParseDate(v)
			if err != nil {
				continue
			}
			if isFrom {
				p.From = d
			} else {
				p.To = d
			}
		}
	}
	// A half-known period is treated as unknown.
	if p.From.IsZero() || p.To.IsZero() || p.To.Before(p.From) {
		return model.Period{}
	}
	return p
}

func containsAny(cell string, markers []string) bool {
	for _, m := range markers {
		if coerce.ContainsFold(cell, m) {
			return true
		}
	}
	return false
}

// neighbour returns the first non-empty cell right of (r, c), or the cell
// below when the row has nothing further right.
func neighbour(s *sheet.Sheet, r, c int) (string, bool) {
	for j := c + 1; j < len(s.Rows[r]); j++ {
		if v := s.Cell(r, j); v != "" {
			return v, true
		}
	}
	if v := s.Cell(r+1, c); v != "" {
		return v, true
	}
	return "", false
}
