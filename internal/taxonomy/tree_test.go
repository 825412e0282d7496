package taxonomy

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneydairy/moneydairy/internal/model"
)

func TestDefaultTree(t *testing.T) {
	tree := DefaultTree()
	assert.Len(t, tree.All(), len(DefaultCategories()))
	assert.Len(t, tree.Categories(), 5)

	for _, c := range tree.Categories() {
		_, ok := tree.Subcategory(c.ID, model.SubcategoryOther)
		assert.True(t, ok, "%s should have an Otros subcategory", c.Name)
	}
}

func TestLookups(t *testing.T) {
	tree := DefaultTree()

	food, ok := tree.ByName("alimentacion")
	require.True(t, ok)
	assert.Equal(t, "Alimentación", food.Name)

	super, ok := tree.Subcategory(food.ID, "SUPERMERCADO")
	require.True(t, ok)
	assert.Equal(t, int64(11), super.ID)

	parent, ok := tree.Parent(super.ID)
	require.True(t, ok)
	assert.Equal(t, food.ID, parent.ID)

	_, ok = tree.Parent(food.ID)
	assert.False(t, ok, "top-level categories have no parent")

	assert.Len(t, tree.Children(3), 5)
	assert.Nil(t, tree.Children(0))

	_, ok = tree.Get(999)
	assert.False(t, ok)
	_, ok = tree.ByName("Supermercado")
	assert.False(t, ok, "ByName only finds top-level categories")
}

func TestNewTree_Errors(t *testing.T) {
	tests := []struct {
		name string
		cats []model.Category
		want error
	}{
		{"duplicate id", []model.Category{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}}, ErrDuplicateID},
		{"duplicate top-level name", []model.Category{{ID: 1, Name: "Alimentación"}, {ID: 2, Name: "ALIMENTACION"}}, ErrDuplicateName},
		{"duplicate sibling name", []model.Category{{ID: 1, Name: "A"}, {ID: 2, Name: "x", ParentID: 1}, {ID: 3, Name: "X", ParentID: 1}}, ErrDuplicateName},
		{"unknown parent", []model.Category{{ID: 2, Name: "x", ParentID: 1}}, ErrUnknownParent},
		{"three levels", []model.Category{{ID: 1, Name: "A"}, {ID: 2, Name: "B", ParentID: 1}, {ID: 3, Name: "C", ParentID: 2}}, ErrTooDeep},
		{"empty name", []model.Category{{ID: 1, Name: " "}}, ErrInvalidCategory},
		{"zero id", []model.Category{{ID: 0, Name: "A"}}, ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTree(tt.cats)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewTree_SameNameUnderDifferentParents(t *testing.T) {
	_, err := NewTree([]model.Category{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
		{ID: 11, Name: "Otros", ParentID: 1},
		{ID: 21, Name: "Otros", ParentID: 2},
	})
	assert.NoError(t, err)
}

func TestCSVRoundTrip(t *testing.T) {
	cats := []model.Category{
		{ID: 1, Name: "Alimentación", Description: "Comida, bebida"},
		{ID: 11, Name: "Supermercado", ParentID: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCategories(&buf, cats))
	assert.Contains(t, buf.String(), "id,name,parent_id,description\n")
	assert.Contains(t, buf.String(), `1,Alimentación,,"Comida, bebida"`)

	got, err := ReadCategories(&buf)
	require.NoError(t, err)
	assert.Equal(t, cats, got)
}

func TestReadCategories_BadRow(t *testing.T) {
	_, err := ReadCategories(bytes.NewBufferString("id,name,parent_id,description\nx,A,,\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "parsing id")
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, DefaultTree().Save(dir))

	_, err := os.Stat(filepath.Join(dir, "rules", "categories.csv"))
	require.NoError(t, err)

	tree, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultCategories(), tree.All())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening category tree")
}
