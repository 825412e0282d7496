// Package export writes canonical transactions as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneydairy/moneydairy/internal/model"
)

// Header is the CSV header for exported transactions.
const Header = "date,bank_id,description,amount,type,category_id,subcategory_id,operation_id"

const (
	numFields    = 8
	dateFormat   = "2006-01-02"
	colDate      = 0
	colBankID    = 1
	colDesc      = 2
	colAmount    = 3
	colType      = 4
	colCategory  = 5
	colSubcat    = 6
	colOperation = 7
)

// ReadTransactions reads an exported CSV.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// WriteTransactions writes transactions with a header row.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes transactions to path, replacing it.
func WriteFile(path string, txns []model.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := WriteTransactions(f, txns); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = t.Date.Format(dateFormat)
	row[colBankID] = strconv.FormatInt(t.BankID, 10)
	row[colDesc] = t.Description
	row[colAmount] = t.Amount.StringFixed(2)
	row[colType] = t.Type()
	if t.CategoryID != nil {
		row[colCategory] = strconv.FormatInt(*t.CategoryID, 10)
	}
	if t.SubcategoryID != nil {
		row[colSubcat] = strconv.FormatInt(*t.SubcategoryID, 10)
	}
	row[colOperation] = t.SourceOperationID
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction. The type
// column must agree with the amount sign.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	bankID, err := strconv.ParseInt(record[colBankID], 10, 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing bank_id %q: %w", record[colBankID], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	t := model.Transaction{
		Date:              date,
		Description:       record[colDesc],
		Amount:            amount,
		BankID:            bankID,
		SourceOperationID: record[colOperation],
	}
	if t.Type() != record[colType] {
		return model.Transaction{}, fmt.Errorf("type %q does not match amount %s", record[colType], record[colAmount])
	}

	if t.CategoryID, err = optionalID(record[colCategory]); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing category_id: %w", err)
	}
	if t.SubcategoryID, err = optionalID(record[colSubcat]); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing subcategory_id: %w", err)
	}
	return t, nil
}

func optionalID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
