package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Legacy is one entry of the old flat rule format, where keywords hung
// directly off a category.
type Legacy struct {
	Name     string
	Keywords []string
}

// MigrateLegacy converts flat rules to the two-level format. Each legacy
// keyword becomes a category-level keyword, which classifies into the
// category's Otros (or General) subcategory.
func MigrateLegacy(legacy []Legacy) *File {
	f := &File{}
	for _, l := range legacy {
		f.Categories = append(f.Categories, CategoryRules{
			Name:     l.Name,
			Keywords: append([]string(nil), l.Keywords...),
		})
	}
	return f
}

// isLegacy reports whether a document is a flat {category: [keywords]} map.
func isLegacy(doc *yaml.Node) bool {
	for i := 0; i+1 < len(doc.Content); i += 2 {
		switch doc.Content[i].Value {
		case "categories", "exclusions":
			return false
		}
	}
	return len(doc.Content) > 0
}

func decodeLegacy(doc *yaml.Node) ([]Legacy, error) {
	var out []Legacy
	for i := 0; i+1 < len(doc.Content); i += 2 {
		l := Legacy{Name: doc.Content[i].Value}
		if err := doc.Content[i+1].Decode(&l.Keywords); err != nil {
			return nil, fmt.Errorf("legacy category %q: %w", l.Name, err)
		}
		out = append(out, l)
	}
	return out, nil
}
