package taxonomy

import "github.com/moneydairy/moneydairy/internal/model"

// DefaultCategories returns the seed category tree. Every category carries
// an "Otros" subcategory, and "Sin clasificar/Otros" is the classifier
// fallback.
func DefaultCategories() []model.Category {
	return []model.Category{
		{ID: 1, Name: "Alimentación", Description: "Comida y supermercado"},
		{ID: 11, Name: "Supermercado", ParentID: 1},
		{ID: 12, Name: "Restaurantes", ParentID: 1},
		{ID: 13, Name: model.SubcategoryOther, ParentID: 1},

		{ID: 2, Name: "Transporte", Description: "Movilización"},
		{ID: 21, Name: "Transporte público", ParentID: 2},
		{ID: 22, Name: "Combustible", ParentID: 2},
		{ID: 23, Name: model.SubcategoryOther, ParentID: 2},

		{ID: 3, Name: "Servicios básicos", Description: "Cuentas del hogar"},
		{ID: 31, Name: "Luz", ParentID: 3},
		{ID: 32, Name: "Agua", ParentID: 3},
		{ID: 33, Name: "Gas", ParentID: 3},
		{ID: 34, Name: "Internet", ParentID: 3},
		{ID: 35, Name: model.SubcategoryOther, ParentID: 3},

		{ID: 4, Name: "Ingresos", Description: "Sueldo y otros abonos"},
		{ID: 41, Name: "Sueldo", ParentID: 4},
		{ID: 42, Name: model.SubcategoryOther, ParentID: 4},

		{ID: 9, Name: model.CategoryUnclassified, Description: "Movimientos sin regla"},
		{ID: 91, Name: model.SubcategoryOther, ParentID: 9},
	}
}

// DefaultTree returns the seed tree.
func DefaultTree() *Tree {
	t, err := NewTree(DefaultCategories())
	if err != nil {
		panic("invalid default category tree: " + err.Error())
	}
	return t
}
