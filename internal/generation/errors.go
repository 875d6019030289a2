package generation

import (
	"errors"
	"fmt"
)

// ErrGeneration marks every per-candidate generation failure.
var ErrGeneration = errors.New("generation failed")

// Generation stages.
const (
	StageRequest  = "request"
	StageParse    = "parse"
	StageSchema   = "schema"
	StageValidate = "validate"
)

// GenerationError attributes a failed resume generation to one candidate.
type GenerationError struct {
	Candidate string
	Stage     string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate resume for %s (%s): %v", e.Candidate, e.Stage, e.Err)
}

// Unwrap exposes both ErrGeneration and the cause.
func (e *GenerationError) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}
