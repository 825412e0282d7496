package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneydairy/moneydairy/internal/model"
)

func sample() []model.Transaction {
	cat, sub := int64(1), int64(11)
	return []model.Transaction{
		{
			Date:          time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Description:   "COMPRA SUPERMERCADO LIDER",
			Amount:        decimal.NewFromInt(-45000),
			BankID:        1,
			CategoryID:    &cat,
			SubcategoryID: &sub,
		},
		{
			Date:              time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
			Description:       "PAGO SUELDO, ACME",
			Amount:            decimal.RequireFromString("1500000.50"),
			BankID:            2,
			SourceOperationID: "778813",
		},
	}
}

func TestWriteTransactions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, sample()))

	want := Header + "\n" +
		"2024-03-15,1,COMPRA SUPERMERCADO LIDER,-45000.00,Gasto,1,11,\n" +
		"2024-03-16,2,\"PAGO SUELDO, ACME\",1500000.50,Ingreso,,,778813\n"
	assert.Equal(t, want, buf.String())
}

func TestReadTransactions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, sample()))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "COMPRA SUPERMERCADO LIDER", got[0].Description)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(-45000)))
	require.NotNil(t, got[0].SubcategoryID)
	assert.Equal(t, int64(11), *got[0].SubcategoryID)
	assert.Nil(t, got[1].CategoryID)
	assert.Equal(t, "778813", got[1].SourceOperationID)
}

func TestUnmarshalTransaction_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   string
	}{
		{"short", []string{"2024-03-15"}, "expected 8 fields"},
		{"bad date", []string{"15/03/2024", "1", "x", "-1", "Gasto", "", "", ""}, "parsing date"},
		{"bad bank", []string{"2024-03-15", "x", "x", "-1", "Gasto", "", "", ""}, "parsing bank_id"},
		{"bad amount", []string{"2024-03-15", "1", "x", "abc", "Gasto", "", "", ""}, "parsing amount"},
		{"type mismatch", []string{"2024-03-15", "1", "x", "-1", "Ingreso", "", "", ""}, "does not match"},
		{"bad category", []string{"2024-03-15", "1", "x", "-1", "Gasto", "x", "", ""}, "category_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalTransaction(tt.record)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteFile(path, sample()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := ReadTransactions(f)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
