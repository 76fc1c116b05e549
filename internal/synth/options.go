package synth

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/abhisek/qgen/internal/qgen"
)

// DistinctOptionsValidator rejects bundles where two alternatives say the
// same thing. Numeric options compare by value, so "1/2", "2/4" and "0.5"
// collide; text options compare case-insensitively with whitespace folded.
type DistinctOptionsValidator struct{}

func (v *DistinctOptionsValidator) Name() string { return "distinct-options" }

func (v *DistinctOptionsValidator) Validate(b *qgen.AnswerBundle, _ qgen.SynthesisRequest, _ Config) *ValidationError {
	seen := make(map[string]int, len(b.Options))
	for i, o := range b.Options {
		key := normalizeOption(o)
		if j, dup := seen[key]; dup {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("options %d and %d are equivalent (%q, %q)", j+1, i+1, b.Options[j], o),
			}
		}
		seen[key] = i
	}
	return nil
}

// normalizeOption maps an option to its comparison key.
func normalizeOption(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	num := strings.ReplaceAll(s, " ", "")
	// Spanish decimals use a comma.
	num = strings.Replace(num, ",", ".", 1)
	if r, ok := new(big.Rat).SetString(num); ok {
		return "#" + r.RatString()
	}
	return strings.ToLower(s)
}
