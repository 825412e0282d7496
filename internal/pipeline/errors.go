package pipeline

import (
	"errors"
	"fmt"
)

// Stage names a pipeline step, for error context.
type Stage string

const (
	StageSelect    Stage = "select"
	StageDecode    Stage = "decode"
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StageExclude   Stage = "exclude"
	StageDedup     Stage = "dedup"
	StageClassify  Stage = "classify"
)

// ErrNoRules is returned when the reference data has no rule set.
var ErrNoRules = errors.New("no categorization rules loaded")

// ImportError is a fatal error for one file. Nothing from the file should
// be persisted.
type ImportError struct {
	Bank  string
	File  string
	Stage Stage
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("importing %s (bank %s) at %s: %v", e.File, e.Bank, e.Stage, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
