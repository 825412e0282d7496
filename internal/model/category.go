package model

// Reserved names used by the classifier fallback chain.
const (
	CategoryUnclassified = "Sin clasificar"
	SubcategoryOther     = "Otros"
	SubcategoryGeneral   = "General"
)

// Category is a node in the two-level category tree.
type Category struct {
	ID          int64
	Name        string
	Description string
	ParentID    int64 // 0 = top-level
}

// IsSubcategory reports whether the node hangs under a top-level category.
func (c Category) IsSubcategory() bool {
	return c.ParentID != 0
}

// KeywordRule assigns a subcategory when Keyword is found in a description.
type KeywordRule struct {
	SubcategoryID int64
	Keyword       string
}

// CategoryKeywordRule is a keyword attached to a top-level category rather
// than one of its subcategories.
type CategoryKeywordRule struct {
	CategoryID int64
	Keyword    string
}

// ExclusionRule drops a movement whose description contains Keyword.
type ExclusionRule struct {
	Keyword string
	Comment string
}
