package synth

import (
	"fmt"

	"github.com/abhisek/qgen/internal/qgen"
)

// Validator checks a synthesized answer bundle.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator, e.g.
	// "structural" or "distinct-options".
	Name() string

	// Validate returns nil if the bundle passes. cfg carries the option
	// count the bundle must have.
	Validate(b *qgen.AnswerBundle, req qgen.SynthesisRequest, cfg Config) *ValidationError
}

// ValidationError describes why an answer bundle was rejected.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
