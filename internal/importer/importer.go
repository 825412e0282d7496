package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/moneydairy/moneydairy/internal/coerce"
	"github.com/moneydairy/moneydairy/internal/sheet"
)

// Extractor locates the balance and the movement table inside one bank's
// statement layout.
type Extractor interface {
	Bank() string
	Layout() Layout
	Extract(s *sheet.Sheet) (Statement, error)
}

// Registry holds extractors keyed by lowercase bank slug.
type Registry struct {
	extractors map[string]Extractor
}

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

// Register adds an extractor. Panics on duplicate bank slug.
func (r *Registry) Register(e Extractor) {
	key := strings.ToLower(strings.TrimSpace(e.Bank()))
	if _, ok := r.extractors[key]; ok {
		panic("duplicate extractor for bank: " + key)
	}
	r.extractors[key] = e
}

// Get returns the extractor for slug, or nil.
func (r *Registry) Get(slug string) Extractor {
	return r.extractors[strings.ToLower(strings.TrimSpace(slug))]
}

// Select returns the extractor for slug or an *UnsupportedBankError listing
// the registered slugs.
func (r *Registry) Select(slug string) (Extractor, error) {
	if e := r.Get(slug); e != nil {
		return e, nil
	}
	return nil, &UnsupportedBankError{Slug: slug, Valid: r.Slugs()}
}

// Slugs returns the registered bank slugs in sorted order.
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.extractors))
	for k := range r.extractors {
		slugs = append(slugs, k)
	}
	sort.Strings(slugs)
	return slugs
}

// DefaultRegistry returns a registry with all built-in bank layouts.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, l := range DefaultLayouts() {
		r.Register(NewMarkerExtractor(l))
	}
	return r
}

// BankFromFileName returns the longest slug contained in the file name, or
// "" when none is. "cartola_bancochile_marzo.xlsx" routes to "bancochile".
func BankFromFileName(name string, slugs []string) string {
	base := coerce.Fold(filepath.Base(name))
	best := ""
	for _, s := range slugs {
		if strings.Contains(base, s) && len(s) > len(best) {
			best = s
		}
	}
	return best
}

// importDir is the subdirectory for statement files.
const importDir = "import"

// processedDir is the subdirectory for processed statement files.
const processedDir = "import/processed"

// failedDir holds inbox files that failed to import.
const failedDir = "import/failed"

var statementExts = map[string]bool{".csv": true, ".xls": true, ".xlsx": true}

// Scan returns statement files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !statementExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	return moveFromInbox(root, fileName, processedDir, "processed")
}

// MarkFailed moves a file that could not be imported from import/ to
// import/failed/, so scheduled passes stop retrying it.
func MarkFailed(root, fileName string) error {
	return moveFromInbox(root, fileName, failedDir, "failed")
}

func moveFromInbox(root, fileName, sub, label string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, sub)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating %s dir: %w", label, err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to %s: %w", fileName, label, err)
	}
	return nil
}
