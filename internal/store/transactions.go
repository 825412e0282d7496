package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneydairy/moneydairy/internal/dedup"
	"github.com/moneydairy/moneydairy/internal/model"
)

const dateLayout = "2006-01-02"

// Run is one recorded import of a statement file.
type Run struct {
	ID         string
	BankID     int64
	FileName   string
	StartedAt  time.Time
	Rows       int
	Skipped    int
	Excluded   int
	Duplicates int
	Inserted   int
	Balance    *decimal.Decimal
}

// Stored is a persisted transaction with its row id.
type Stored struct {
	ID int64
	model.Transaction
}

// Filter narrows Transactions. Zero fields do not filter.
type Filter struct {
	BankID        int64
	From, To      time.Time
	Uncategorized bool
}

// CategoryUpdate sets the classification of one stored transaction.
type CategoryUpdate struct {
	ID            int64
	CategoryID    int64
	SubcategoryID int64
}

// Fingerprints returns the fingerprints stored for a bank, or for every
// bank when bankID is 0.
func (s *Store) Fingerprints(ctx context.Context, bankID int64) (dedup.Set, error) {
	q := `SELECT fingerprint FROM transactions`
	var args []any
	if bankID != 0 {
		q += ` WHERE bank_id = ?`
		args = append(args, bankID)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing fingerprints: %w", err)
	}
	defer rows.Close()

	set := dedup.NewSet()
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("scanning fingerprint: %w", err)
		}
		set[fp] = struct{}{}
	}
	return set, rows.Err()
}

// InsertBatch records run and inserts txns in one database transaction.
// A transaction whose fingerprint is already stored is ignored, so a
// concurrent import of the same file cannot create duplicates. It returns
// the number of rows actually inserted; run.Inserted is overwritten with it.
func (s *Store) InsertBatch(ctx context.Context, run Run, txns []model.Transaction) (int, error) {
	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var balance any
		if run.Balance != nil {
			balance = run.Balance.String()
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO import_runs(id, bank_id, file_name, started_at, row_count, skipped, excluded, duplicates, balance)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.BankID, run.FileName, run.StartedAt.UTC(), run.Rows, run.Skipped, run.Excluded, run.Duplicates, balance)
		if err != nil {
			return fmt.Errorf("recording run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions(
		 date, description, amount, type, bank_id, category_id, subcategory_id, operation_id, fingerprint, run_id)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for i, t := range txns {
			res, err := stmt.ExecContext(ctx,
				t.Date.Format(dateLayout), t.Description, t.Amount.String(), t.Type(), t.BankID,
				t.CategoryID, t.SubcategoryID, t.SourceOperationID, dedup.Fingerprint(t), run.ID)
			if err != nil {
				return fmt.Errorf("inserting transaction %d: %w", i+1, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			inserted += int(n)
		}

		_, err = tx.ExecContext(ctx, `UPDATE import_runs SET inserted = ? WHERE id = ?`, inserted, run.ID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// Transactions lists stored transactions ordered by date and id.
func (s *Store) Transactions(ctx context.Context, f Filter) ([]Stored, error) {
	var where []string
	var args []any
	if f.BankID != 0 {
		where = append(where, "bank_id = ?")
		args = append(args, f.BankID)
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.To.Format(dateLayout))
	}
	if f.Uncategorized {
		where = append(where, "subcategory_id IS NULL")
	}

	q := `SELECT id, date, description, amount, bank_id, category_id, subcategory_id, operation_id FROM transactions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY date, id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var out []Stored
	for rows.Next() {
		var st Stored
		var date, amount string
		var cat, sub sql.NullInt64
		if err := rows.Scan(&st.ID, &date, &st.Description, &amount, &st.BankID, &cat, &sub, &st.SourceOperationID); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if st.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("transaction %d date %q: %w", st.ID, date, err)
		}
		if st.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %d amount %q: %w", st.ID, amount, err)
		}
		if cat.Valid {
			st.CategoryID = &cat.Int64
		}
		if sub.Valid {
			st.SubcategoryID = &sub.Int64
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpdateCategories applies updates in one database transaction and returns
// how many rows actually changed.
func (s *Store) UpdateCategories(ctx context.Context, updates []CategoryUpdate) (int, error) {
	changed := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
		UPDATE transactions SET category_id = ?, subcategory_id = ?
		WHERE id = ? AND (category_id IS NOT ? OR subcategory_id IS NOT ?)`)
		if err != nil {
			return fmt.Errorf("preparing update: %w", err)
		}
		defer stmt.Close()

		for _, u := range updates {
			res, err := stmt.ExecContext(ctx, u.CategoryID, u.SubcategoryID, u.ID, u.CategoryID, u.SubcategoryID)
			if err != nil {
				return fmt.Errorf("updating transaction %d: %w", u.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			changed += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// Runs returns recorded imports, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, bank_id, file_name, started_at, row_count, skipped, excluded, duplicates, inserted, balance
	FROM import_runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var balance sql.NullString
		if err := rows.Scan(&r.ID, &r.BankID, &r.FileName, &r.StartedAt, &r.Rows, &r.Skipped,
			&r.Excluded, &r.Duplicates, &r.Inserted, &balance); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if balance.Valid {
			d, err := decimal.NewFromString(balance.String)
			if err != nil {
				return nil, fmt.Errorf("run %s balance %q: %w", r.ID, balance.String, err)
			}
			r.Balance = &d
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
