// Package taxonomy holds the two-level category tree: top-level categories
// and the subcategories transactions attach to.
package taxonomy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moneydairy/moneydairy/internal/coerce"
	"github.com/moneydairy/moneydairy/internal/model"
)

// FileName is the category tree file, relative to the data root.
const FileName = "rules/categories.csv"

var (
	ErrDuplicateID     = errors.New("duplicate category id")
	ErrDuplicateName   = errors.New("duplicate category name")
	ErrUnknownParent   = errors.New("unknown parent category")
	ErrTooDeep         = errors.New("category tree deeper than two levels")
	ErrInvalidCategory = errors.New("invalid category")
)

// Tree provides in-memory lookup over the category tree.
type Tree struct {
	all      []model.Category
	byID     map[int64]model.Category
	children map[int64][]model.Category
}

// NewTree validates categories and builds a Tree. Names are unique among
// siblings, compared case- and accent-insensitively.
func NewTree(cats []model.Category) (*Tree, error) {
	t := &Tree{
		byID:     make(map[int64]model.Category, len(cats)),
		children: make(map[int64][]model.Category),
	}
	for _, c := range cats {
		if c.ID <= 0 || coerce.Clean(c.Name) == "" {
			return nil, fmt.Errorf("%w: id %d name %q", ErrInvalidCategory, c.ID, c.Name)
		}
		if _, ok := t.byID[c.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, c.ID)
		}
		t.byID[c.ID] = c
	}

	seen := make(map[int64]map[string]bool)
	for _, c := range cats {
		if c.ParentID != 0 {
			parent, ok := t.byID[c.ParentID]
			if !ok {
				return nil, fmt.Errorf("%w: %q references %d", ErrUnknownParent, c.Name, c.ParentID)
			}
			if parent.ParentID != 0 {
				return nil, fmt.Errorf("%w: %q under subcategory %q", ErrTooDeep, c.Name, parent.Name)
			}
		}
		if seen[c.ParentID] == nil {
			seen[c.ParentID] = make(map[string]bool)
		}
		key := coerce.Fold(c.Name)
		if seen[c.ParentID][key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, c.Name)
		}
		seen[c.ParentID][key] = true

		t.all = append(t.all, c)
		t.children[c.ParentID] = append(t.children[c.ParentID], c)
	}
	return t, nil
}

// Load reads rules/categories.csv from a data root and returns a Tree.
func Load(root string) (*Tree, error) {
	path := filepath.Join(root, FileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening category tree: %w", err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading category tree: %w", err)
	}
	return NewTree(cats)
}

// Save writes the tree to rules/categories.csv.
func (t *Tree) Save(root string) error {
	path := filepath.Join(root, FileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating category tree file: %w", err)
	}
	defer f.Close()

	if err := WriteCategories(f, t.all); err != nil {
		return fmt.Errorf("writing category tree: %w", err)
	}
	return nil
}

// All returns every node in input order.
func (t *Tree) All() []model.Category {
	return t.all
}

// Get returns a node by ID.
func (t *Tree) Get(id int64) (model.Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Categories returns the top-level categories.
func (t *Tree) Categories() []model.Category {
	return t.children[0]
}

// Children returns the subcategories of a top-level category.
func (t *Tree) Children(id int64) []model.Category {
	if id == 0 {
		return nil
	}
	return t.children[id]
}

// Parent returns the top-level category of a subcategory.
func (t *Tree) Parent(id int64) (model.Category, bool) {
	c, ok := t.byID[id]
	if !ok || c.ParentID == 0 {
		return model.Category{}, false
	}
	return t.Get(c.ParentID)
}

// ByName returns a top-level category by name.
func (t *Tree) ByName(name string) (model.Category, bool) {
	return findByName(t.children[0], name)
}

// Subcategory returns the named subcategory under category id.
func (t *Tree) Subcategory(id int64, name string) (model.Category, bool) {
	return findByName(t.Children(id), name)
}

func findByName(cats []model.Category, name string) (model.Category, bool) {
	for _, c := range cats {
		if coerce.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return model.Category{}, false
}
