package importer

import (
	"fmt"
	"strings"
)

// UnsupportedBankError is returned when no extractor is registered for a
// bank slug.
type UnsupportedBankError struct {
	Slug  string
	Valid []string
}

func (e *UnsupportedBankError) Error() string {
	return fmt.Sprintf("unsupported bank %q (supported: %s)", e.Slug, strings.Join(e.Valid, ", "))
}

// LayoutNotRecognizedError is returned when a statement does not contain
// the bank's movement table header. The file is rejected as a whole.
type LayoutNotRecognizedError struct {
	Bank   string
	Reason string
}

func (e *LayoutNotRecognizedError) Error() string {
	return fmt.Sprintf("%s layout not recognized: %s", e.Bank, e.Reason)
}
