package synth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/qgen/internal/qgen"
)

const (
	maxOptionLen      = 200
	maxExplanationLen = 2000
)

// StructuralValidator checks option count, the correct index, text
// lengths and that LaTeX renderings line up with the plain options.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(b *qgen.AnswerBundle, _ qgen.SynthesisRequest, cfg Config) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
	}

	if cfg.NumOptions > 0 && len(b.Options) != cfg.NumOptions {
		return fail("expected %d options, got %d", cfg.NumOptions, len(b.Options))
	}
	if len(b.Options) == 0 {
		return fail("no options")
	}
	for i, o := range b.Options {
		if strings.TrimSpace(o) == "" {
			return fail("option %d is empty", i+1)
		}
		if utf8.RuneCountInString(o) > maxOptionLen {
			return fail("option %d exceeds %d characters", i+1, maxOptionLen)
		}
	}
	if b.CorrectAnswer < 0 || b.CorrectAnswer >= len(b.Options) {
		return fail("correct answer index %d out of range [0, %d)", b.CorrectAnswer, len(b.Options))
	}
	if strings.TrimSpace(b.Explanation) == "" {
		return fail("explanation is empty")
	}
	if utf8.RuneCountInString(b.Explanation) > maxExplanationLen {
		return fail("explanation exceeds %d characters", maxExplanationLen)
	}
	if len(b.OptionsLaTeX) > 0 && len(b.OptionsLaTeX) != len(b.Options) {
		return fail("got %d LaTeX options for %d options", len(b.OptionsLaTeX), len(b.Options))
	}
	return nil
}
