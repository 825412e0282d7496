package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/moneydairy/moneydairy/internal/model"
)

// SeedBanks inserts banks by name, updating the description of known ones.
func (s *Store) SeedBanks(ctx context.Context, banks []model.Bank) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, b := range banks {
			_, err := tx.ExecContext(ctx, `
			INSERT INTO banks(name, description) VALUES(?, ?)
			ON CONFLICT(name) DO UPDATE SET description = excluded.description`,
				b.Name, b.DisplayDescription)
			if err != nil {
				return fmt.Errorf("seeding bank %s: %w", b.Name, err)
			}
		}
		return nil
	})
}

// Banks returns all banks ordered by id.
func (s *Store) Banks(ctx context.Context) ([]model.Bank, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM banks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing banks: %w", err)
	}
	defer rows.Close()

	var banks []model.Bank
	for rows.Next() {
		var b model.Bank
		if err := rows.Scan(&b.ID, &b.Name, &b.DisplayDescription); err != nil {
			return nil, fmt.Errorf("scanning bank: %w", err)
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

// SeedTaxonomy upserts categories by id, so a renamed or moved category
// replaces its stored row. Parents must come before their children.
func (s *Store) SeedTaxonomy(ctx context.Context, cats []model.Category) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range cats {
			var parent *int64
			if c.ParentID != 0 {
				p := c.ParentID
				parent = &p
			}
			_, err := tx.ExecContext(ctx, `
			INSERT INTO categories(id, name, description, parent_id) VALUES(?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				parent_id = excluded.parent_id`,
				c.ID, c.Name, c.Description, parent)
			if err != nil {
				return fmt.Errorf("seeding category %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

// Categories returns the stored tree ordered by id.
func (s *Store) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, parent_id FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		var parent sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &parent); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.ParentID = parent.Int64
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// ReplaceRules swaps the stored rule snapshot for the given one, keeping
// rule order.
func (s *Store) ReplaceRules(ctx context.Context, sub []model.KeywordRule, cat []model.CategoryKeywordRule, excl []model.ExclusionRule) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{`DELETE FROM category_keywords`, `DELETE FROM exclusion_rules`} {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return fmt.Errorf("clearing rules: %w", err)
			}
		}
		pos := 0
		insert := func(id int64, kw, level string) error {
			pos++
			_, err := tx.ExecContext(ctx, `
			INSERT INTO category_keywords(category_id, keyword, level, position) VALUES(?, ?, ?, ?)`,
				id, kw, level, pos)
			if err != nil {
				return fmt.Errorf("storing keyword %q: %w", kw, err)
			}
			return nil
		}
		for _, r := range sub {
			if err := insert(r.SubcategoryID, r.Keyword, "subcategory"); err != nil {
				return err
			}
		}
		for _, r := range cat {
			if err := insert(r.CategoryID, r.Keyword, "category"); err != nil {
				return err
			}
		}
		for i, e := range excl {
			_, err := tx.ExecContext(ctx, `
			INSERT INTO exclusion_rules(keyword, comment, position) VALUES(?, ?, ?)`,
				e.Keyword, e.Comment, i+1)
			if err != nil {
				return fmt.Errorf("storing exclusion %q: %w", e.Keyword, err)
			}
		}
		return nil
	})
}

// Rules returns the stored rule snapshot in rule order.
func (s *Store) Rules(ctx context.Context) ([]model.KeywordRule, []model.CategoryKeywordRule, []model.ExclusionRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category_id, keyword, level FROM category_keywords ORDER BY position`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing keywords: %w", err)
	}
	defer rows.Close()

	var sub []model.KeywordRule
	var cat []model.CategoryKeywordRule
	for rows.Next() {
		var id int64
		var kw, level string
		if err := rows.Scan(&id, &kw, &level); err != nil {
			return nil, nil, nil, fmt.Errorf("scanning keyword: %w", err)
		}
		if level == "category" {
			cat = append(cat, model.CategoryKeywordRule{CategoryID: id, Keyword: kw})
		} else {
			sub = append(sub, model.KeywordRule{SubcategoryID: id, Keyword: kw})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}
	rows.Close()

	erows, err := s.db.QueryContext(ctx, `SELECT keyword, comment FROM exclusion_rules ORDER BY position`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing exclusions: %w", err)
	}
	defer erows.Close()

	var excl []model.ExclusionRule
	for erows.Next() {
		var e model.ExclusionRule
		if err := erows.Scan(&e.Keyword, &e.Comment); err != nil {
			return nil, nil, nil, fmt.Errorf("scanning exclusion: %w", err)
		}
		excl = append(excl, e)
	}
	return sub, cat, excl, erows.Err()
}
