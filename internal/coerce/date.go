package coerce

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrEmpty is returned when a cell holds no value.
var ErrEmpty = errors.New("empty value")

// Day-first layouts only; statements are Chilean exports.
var dateLayouts = []string{
	"02/01/2006", "2/1/2006",
	"02-01-2006", "2-1-2006",
	"02/01/06", "2/1/06",
	"02-01-06", "2-1-06",
	"02.01.2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
}

// Serial dates outside this window are rejected so that stray counters or
// years in a date column are not read as dates.
const (
	minSerial = 18264   // 1950-01-01
	maxSerial = 2958465 // 9999-12-31
)

// ParseDate reads DD/MM/YYYY, DD-MM-YYYY (and short-year variants), ISO
// dates and spreadsheet serial numbers. The result is UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = Clean(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return SerialDate(f)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// SerialDate converts a spreadsheet serial day number (1899-12-30 epoch)
// into a date. The fractional time-of-day part is discarded.
func SerialDate(f float64) (time.Time, error) {
	days := int(f)
	if days < minSerial || days > maxSerial {
		return time.Time{}, fmt.Errorf("serial date %v out of range", f)
	}
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, days), nil
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
