// Package rules reads and writes the keyword and exclusion rule file.
// Rule order in the file is significant: the first matching rule wins.
package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/moneydairy/moneydairy/internal/model"
	"github.com/moneydairy/moneydairy/internal/taxonomy"
)

// FileName is the rule file, relative to the data root.
const FileName = "rules/categorization-rules.yaml"

var ErrUnknownName = errors.New("unknown category name")

// File is the parsed rule file.
type File struct {
	Categories Categories  `yaml:"categories"`
	Exclusions []Exclusion `yaml:"exclusions,omitempty"`
}

// CategoryRules holds the keywords of one top-level category.
type CategoryRules struct {
	Name          string
	Keywords      []string // category-level
	Subcategories []SubcategoryRules
}

// SubcategoryRules holds the keywords of one subcategory.
type SubcategoryRules struct {
	Name     string
	Keywords []string
}

// Exclusion is one ignored-movement rule.
type Exclusion struct {
	Keyword string `yaml:"keyword"`
	Comment string `yaml:"comment,omitempty"`
}

// Categories keeps the order categories appear in the file.
type Categories []CategoryRules

// Load reads a rule file. A file in the legacy flat format
// ({category: [keywords]}) is migrated on the fly.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing rules %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// Parse decodes rule file contents.
func Parse(data []byte) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return &File{}, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", doc.Line)
	}
	if isLegacy(doc) {
		legacy, err := decodeLegacy(doc)
		if err != nil {
			return nil, err
		}
		return MigrateLegacy(legacy), nil
	}

	var f File
	if err := doc.Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Save writes a rule file, creating its directory.
func Save(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}

// Resolve turns names into tree IDs, keeping file order.
func (f *File) Resolve(tree *taxonomy.Tree) ([]model.KeywordRule, []model.CategoryKeywordRule, []model.ExclusionRule, error) {
	var subRules []model.KeywordRule
	var catRules []model.CategoryKeywordRule
	for _, c := range f.Categories {
		cat, ok := tree.ByName(c.Name)
		if !ok {
			return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownName, c.Name)
		}
		for _, kw := range c.Keywords {
			catRules = append(catRules, model.CategoryKeywordRule{CategoryID: cat.ID, Keyword: kw})
		}
		for _, s := range c.Subcategories {
			sub, ok := tree.Subcategory(cat.ID, s.Name)
			if !ok {
				return nil, nil, nil, fmt.Errorf("%w: %q/%q", ErrUnknownName, c.Name, s.Name)
			}
			for _, kw := range s.Keywords {
				subRules = append(subRules, model.KeywordRule{SubcategoryID: sub.ID, Keyword: kw})
			}
		}
	}

	excl := make([]model.ExclusionRule, 0, len(f.Exclusions))
	for _, e := range f.Exclusions {
		excl = append(excl, model.ExclusionRule{Keyword: e.Keyword, Comment: e.Comment})
	}
	return subRules, catRules, excl, nil
}

// UnmarshalYAML decodes the categories mapping in document order.
func (c *Categories) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: categories must be a mapping", value.Line)
	}
	var out Categories
	for i := 0; i+1 < len(value.Content); i += 2 {
		name, body := value.Content[i].Value, value.Content[i+1]
		cr := CategoryRules{Name: name}
		if body.Kind != yaml.MappingNode {
			if body.Tag == "!!null" {
				out = append(out, cr)
				continue
			}
			return fmt.Errorf("line %d: category %q must be a mapping", body.Line, name)
		}
		for j := 0; j+1 < len(body.Content); j += 2 {
			key, val := body.Content[j].Value, body.Content[j+1]
			switch key {
			case "keywords":
				if err := val.Decode(&cr.Keywords); err != nil {
					return fmt.Errorf("category %q keywords: %w", name, err)
				}
			case "subcategories":
				subs, err := decodeSubcategories(name, val)
				if err != nil {
					return err
				}
				cr.Subcategories = subs
			default:
				return fmt.Errorf("line %d: unknown key %q in category %q", body.Content[j].Line, key, name)
			}
		}
		out = append(out, cr)
	}
	*c = out
	return nil
}

func decodeSubcategories(category string, value *yaml.Node) ([]SubcategoryRules, error) {
	if value.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: subcategories of %q must be a mapping", value.Line, category)
	}
	var subs []SubcategoryRules
	for i := 0; i+1 < len(value.Content); i += 2 {
		s := SubcategoryRules{Name: value.Content[i].Value}
		if err := value.Content[i+1].Decode(&s.Keywords); err != nil {
			return nil, fmt.Errorf("subcategory %q/%q: %w", category, s.Name, err)
		}
		subs = append(subs, s)
	}
	return subs, nil
}

// MarshalYAML encodes categories as an ordered mapping.
func (c Categories) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, cr := range c {
		body := &yaml.Node{Kind: yaml.MappingNode}
		body.Content = append(body.Content, scalar("keywords"), keywordSeq(cr.Keywords))
		subs := &yaml.Node{Kind: yaml.MappingNode}
		for _, s := range cr.Subcategories {
			subs.Content = append(subs.Content, scalar(s.Name), keywordSeq(s.Keywords))
		}
		body.Content = append(body.Content, scalar("subcategories"), subs)
		root.Content = append(root.Content, scalar(cr.Name), body)
	}
	return root, nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func keywordSeq(kws []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, kw := range kws {
		seq.Content = append(seq.Content, scalar(kw))
	}
	return seq
}
