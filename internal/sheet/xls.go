package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/extrame/xls"

	"github.com/moneydairy/moneydairy/internal/coerce"
)

// ErrDateCells is returned for legacy workbooks whose date column holds
// date-formatted numbers. The xls reader renders those with a built-in format
// as year and month only, so the day is lost and the file cannot be imported
// as is. Re-saving as xlsx or csv fixes it.
var ErrDateCells = errors.New("date column uses a date cell format the legacy xls reader truncates to year.month; re-save the file as xlsx or csv")

var truncatedDate = regexp.MustCompile(`^\d{4}\.\d{2}$`)

// formulaCell is what the xls reader yields for formula cells.
const formulaCell = "FormulaCol"

func decodeXLS(data []byte) (*Sheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	if wb == nil {
		return nil, errors.New("no workbook stream in container")
	}
	if wb.NumSheets() == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, errors.New("could not read first sheet")
	}

	// MaxRow is zero both for an empty sheet and a single-row one; neither
	// holds a movement table.
	var rows [][]string
	if ws.MaxRow > 0 {
		n := int(ws.MaxRow) + 1
		rows = wb.ReadAllCells(n)
		if len(rows) > n {
			rows = rows[:n]
		}
	}
	for _, row := range rows {
		for j := range row {
			if row[j] == formulaCell {
				row[j] = ""
			}
		}
	}

	if col, row := truncatedDateCell(rows); col >= 0 {
		return nil, fmt.Errorf("%w (row %d, column %d)", ErrDateCells, row+1, col+1)
	}
	return &Sheet{Name: ws.Name, Format: FormatXLS, Rows: rows}, nil
}

// truncatedDateCell finds the first header row with a "fecha" column and
// returns the position of a year.month cell below it, or -1.
func truncatedDateCell(rows [][]string) (col, row int) {
	for r, cells := range rows {
		for c, cell := range cells {
			if !strings.HasPrefix(coerce.Fold(cell), "fecha") {
				continue
			}
			for below := r + 1; below < len(rows); below++ {
				if c < len(rows[below]) && truncatedDate.MatchString(strings.TrimSpace(rows[below][c])) {
					return c, below
				}
			}
		}
	}
	return -1, -1
}
