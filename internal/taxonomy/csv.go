package taxonomy

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/moneydairy/moneydairy/internal/model"
)

const (
	numFields = 4
	colID     = 0
	colName   = 1
	colParent = 2
	colDesc   = 3
)

// ReadCategories reads categories.csv.
func ReadCategories(r io.Reader) ([]model.Category, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var cats []model.Category
	for i, rec := range records[1:] {
		c, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// WriteCategories writes categories.csv.
func WriteCategories(w io.Writer, cats []model.Category) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "name", "parent_id", "description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, c := range cats {
		if err := cw.Write(MarshalCategory(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalCategory converts a Category to a CSV row.
func MarshalCategory(c model.Category) []string {
	row := make([]string, numFields)
	row[colID] = strconv.FormatInt(c.ID, 10)
	row[colName] = c.Name
	if c.ParentID != 0 {
		row[colParent] = strconv.FormatInt(c.ParentID, 10)
	}
	row[colDesc] = c.Description
	return row
}

// UnmarshalCategory converts a CSV row to a Category.
func UnmarshalCategory(record []string) (model.Category, error) {
	if len(record) != numFields {
		return model.Category{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.ParseInt(record[colID], 10, 64)
	if err != nil {
		return model.Category{}, fmt.Errorf("parsing id %q: %w", record[colID], err)
	}

	var parentID int64
	if record[colParent] != "" {
		parentID, err = strconv.ParseInt(record[colParent], 10, 64)
		if err != nil {
			return model.Category{}, fmt.Errorf("parsing parent_id %q: %w", record[colParent], err)
		}
	}

	return model.Category{
		ID:          id,
		Name:        record[colName],
		ParentID:    parentID,
		Description: record[colDesc],
	}, nil
}
