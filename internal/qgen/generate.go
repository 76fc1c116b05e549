package qgen

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/qgen/internal/library"
)

// DefaultMaxAttempts bounds the rejection sampler when no bound is
// configured.
const DefaultMaxAttempts = 50

// rejection marks a draw that can be retried.
type rejection struct {
	reason string
}

func (r *rejection) Error() string { return r.reason }

// retryBounded runs fn up to n times until it returns nil. Only rejections
// are retried; any other error is returned at once. It reports how many
// attempts were made.
func retryBounded(n int, fn func() error) (int, error) {
	if n < 1 {
		n = 1
	}
	var err error
	for attempt := 1; attempt <= n; attempt++ {
		err = fn()
		if err == nil {
			return attempt, nil
		}
		var r *rejection
		if !errors.As(err, &r) {
			return attempt, err
		}
	}
	return n, err
}

// GenerateValues draws one assignment for vars that satisfies every
// constraint. Sampled variables are drawn uniformly from their domains in
// declaration order, derived variables are then evaluated, and finally
// the constraints are checked. A failing draw is discarded whole.
//
// After maxAttempts failed draws it returns a ConstraintUnsatisfiableError.
func GenerateValues(rng *rand.Rand, vars []library.Variable, constraints []library.Constraint, maxAttempts int) (Assignment, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var result Assignment
	attempts, err := retryBounded(maxAttempts, func() error {
		a, err := draw(rng, vars)
		if err != nil {
			return err
		}
		if c, ok := Satisfies(constraints, a); !ok {
			return &rejection{reason: "violates " + c.String()}
		}
		result = a
		return nil
	})
	if err != nil {
		var r *rejection
		if errors.As(err, &r) {
			return nil, &ConstraintUnsatisfiableError{Attempts: attempts, Last: r.reason}
		}
		return nil, err
	}
	return result, nil
}

// draw produces one full candidate assignment. Arithmetic failures in
// derived variables depend on the draw, so they are rejections.
func draw(rng *rand.Rand, vars []library.Variable) (Assignment, error) {
	a := make(Assignment, len(vars))
	for _, v := range vars {
		if v.Domain.Kind == library.DomainDerived {
			continue
		}
		val, err := sample(rng, v.Domain)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", v.Name, err)
		}
		a[v.Name] = val
	}
	for _, v := range vars {
		if v.Domain.Kind != library.DomainDerived || v.Domain.Formula == nil {
			continue
		}
		val, err := evaluate(*v.Domain.Formula, a)
		if err != nil {
			return nil, &rejection{reason: fmt.Sprintf("variable %q: %v", v.Name, err)}
		}
		a[v.Name] = val
	}
	return a, nil
}
