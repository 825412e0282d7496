package dedup

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneydairy/moneydairy/internal/model"
)

func txn(day int, desc, amount string) model.Transaction {
	return model.Transaction{
		Date:        time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		BankID:      1,
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := txn(15, "COMPRA SUPERMERCADO LIDER", "-45000")
	b := txn(15, "compra supermercado líder", "-45000.00")
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(a), 64)
}

func TestFingerprint_Differs(t *testing.T) {
	base := txn(15, "COMPRA", "-100")
	other := []model.Transaction{
		txn(16, "COMPRA", "-100"),
		txn(15, "COMPRA 2", "-100"),
		txn(15, "COMPRA", "-101"),
		func() model.Transaction { t := base; t.BankID = 2; return t }(),
	}
	for _, o := range other {
		assert.NotEqual(t, Fingerprint(base), Fingerprint(o))
	}
}

func TestFingerprint_OperationID(t *testing.T) {
	a := txn(1, "COMPRA COPEC", "-30000")
	a.SourceOperationID = "778812"
	b := txn(1, "COMPRA COPEC SANTIAGO", "-30000")
	b.SourceOperationID = "778812"
	assert.Equal(t, "op:1:2024-03-01:778812", Fingerprint(a))
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	c := b
	c.Date = c.Date.AddDate(0, 0, 1)
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c), "same reference on another day")
}

func TestFingerprint_PlaceholderOperationID(t *testing.T) {
	for _, id := range []string{"0", "000000", " 0 "} {
		a := txn(1, "COMPRA COPEC", "-30000")
		a.SourceOperationID = id
		b := txn(1, "ABONO SUELDO", "900000")
		b.SourceOperationID = id

		assert.Len(t, Fingerprint(a), 64, id)
		assert.NotEqual(t, Fingerprint(a), Fingerprint(b), id)

		fresh, dups := FilterNew([]model.Transaction{a, b}, NewSet())
		assert.Len(t, fresh, 2, id)
		assert.Equal(t, 0, dups, id)
	}
}

func TestFilterNew_AgainstExisting(t *testing.T) {
	txns := []model.Transaction{txn(1, "A", "-1"), txn(2, "B", "-2"), txn(3, "C", "-3")}
	existing := NewSet(Fingerprint(txns[1]))

	fresh, dups := FilterNew(txns, existing)
	require.Len(t, fresh, 2)
	assert.Equal(t, "A", fresh[0].Description)
	assert.Equal(t, "C", fresh[1].Description)
	assert.Equal(t, 1, dups)
	assert.Len(t, existing, 1, "existing set is not modified")
}

func TestFilterNew_FirstInBatchWins(t *testing.T) {
	first := txn(1, "CAFE", "-2500")
	first.SourceOperationID = ""
	second := first
	second.CategoryID = new(int64)

	fresh, dups := FilterNew([]model.Transaction{first, second, txn(2, "OTRO", "-1")}, nil)
	require.Len(t, fresh, 2)
	assert.Nil(t, fresh[0].CategoryID)
	assert.Equal(t, 1, dups)
}

func TestFilterNew_ReimportIsAllDuplicates(t *testing.T) {
	batch := []model.Transaction{txn(1, "A", "-1"), txn(2, "B", "2"), txn(3, "C", "-3")}

	fresh, dups := FilterNew(batch, NewSet())
	require.Len(t, fresh, 3)
	assert.Zero(t, dups)

	stored := NewSet()
	for _, tx := range fresh {
		stored[Fingerprint(tx)] = struct{}{}
	}
	fresh, dups = FilterNew(batch, stored)
	assert.Empty(t, fresh)
	assert.Equal(t, len(batch), dups)
}

func TestNearDuplicates(t *testing.T) {
	stored := []model.Transaction{
		txn(10, "COMPRA SUPERMERCADO LIDER", "-45000"),
		txn(10, "PAGO LUZ ENEL", "-32000"),
	}
	fresh := []model.Transaction{
		txn(12, "COMPRA SUPERMERC LIDER", "-45000"),    // similar, 2 days apart
		txn(25, "COMPRA SUPERMERCADO LIDER", "-45000"), // too far apart
		txn(11, "PAGO AGUA", "-32000"),                 // different text
		txn(10, "COMPRA SUPERMERCADO LIDER", "-45000"), // exact duplicate, not a hint
	}

	hints := NearDuplicates(fresh, stored, 7)
	require.Len(t, hints, 1)
	assert.Equal(t, "COMPRA SUPERMERC LIDER", hints[0].New.Description)
	assert.Equal(t, "COMPRA SUPERMERCADO LIDER", hints[0].Existing.Description)
	assert.Greater(t, hints[0].Similarity, 0.6)
}

func TestNearDuplicates_DifferentBank(t *testing.T) {
	a := txn(1, "UBER TRIP", "-8500")
	b := txn(1, "UBER TRIP HELP", "-8500")
	b.BankID = 2
	assert.Empty(t, NearDuplicates([]model.Transaction{a}, []model.Transaction{b}, 7))
}
