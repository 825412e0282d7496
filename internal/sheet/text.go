package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	delimiters = []rune{';', ',', '\t'}
)

// sniffLines is how many non-empty lines the delimiter sniffer looks at.
const sniffLines = 20

// decodeText reads a delimited export. Bytes that are not valid UTF-8 are
// decoded as ISO-8859-1, which is what older bank portals emit.
func decodeText(data []byte) (*Sheet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding latin1: %w", err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading delimited text: %w", err)
	}
	return &Sheet{Name: "csv", Format: FormatCSV, Rows: rows}, nil
}

// sniffDelimiter picks the candidate that occurs most often across the first
// lines. Ties go to the earlier candidate, so ';' wins over ','.
func sniffDelimiter(data []byte) rune {
	counts := make([]int, len(delimiters))
	seen := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		for i, d := range delimiters {
			counts[i] += bytes.Count(line, []byte(string(d)))
		}
		seen++
		if seen == sniffLines {
			break
		}
	}
	best := 0
	for i := range counts {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return delimiters[best]
}
