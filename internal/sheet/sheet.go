// Package sheet decodes statement exports (xlsx, xls, delimited text) into a
// plain grid of cleaned cell strings.
package sheet

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/moneydairy/moneydairy/internal/coerce"
)

// Format names the container a sheet was decoded from.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// ErrUnreadable is returned when a file cannot be decoded as any supported
// tabular format.
var ErrUnreadable = errors.New("unreadable statement file")

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Sheet is the first worksheet of a statement as rows of cells. Rows may be
// ragged; missing cells read as "".
type Sheet struct {
	Name   string
	Format Format
	Rows   [][]string
}

// Decode detects the file format from its leading bytes and returns the
// first worksheet. Cell text is cleaned with coerce.Clean.
func Decode(name string, data []byte) (*Sheet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w: empty file", name, ErrUnreadable)
	}

	var (
		s   *Sheet
		err error
	)
	switch {
	case bytes.HasPrefix(data, zipMagic):
		s, err = decodeXLSX(data)
	case bytes.HasPrefix(data, oleMagic):
		s, err = decodeXLS(data)
	default:
		s, err = decodeText(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrUnreadable, err)
	}

	for _, row := range s.Rows {
		for j := range row {
			row[j] = coerce.Clean(row[j])
		}
	}
	return s, nil
}

// Cell returns the cell at (row, col), or "" when out of range.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// RowEmpty reports whether every cell in row is blank.
func (s *Sheet) RowEmpty(row int) bool {
	if row < 0 || row >= len(s.Rows) {
		return true
	}
	for _, c := range s.Rows[row] {
		if c != "" {
			return false
		}
	}
	return true
}

// Len returns the number of rows.
func (s *Sheet) Len() int {
	return len(s.Rows)
}
