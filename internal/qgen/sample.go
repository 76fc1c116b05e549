package qgen

import (
	"fmt"
	"math/big"
	"math/rand/v2"

	"github.com/abhisek/qgen/internal/library"
)

// sample draws one value uniformly from a sampled domain.
func sample(rng *rand.Rand, d library.Domain) (Value, error) {
	switch d.Kind {
	case library.DomainInteger:
		r, err := d.IntegerRange()
		if err != nil {
			return Value{}, err
		}
		return Int(r.At(rng.Uint64N(r.Size()))), nil

	case library.DomainRational:
		// Sign and non-zero restrictions apply to the numerator; the
		// denominator is always positive so they carry over to the value.
		r, err := d.IntegerRange()
		if err != nil {
			return Value{}, err
		}
		num := r.At(rng.Uint64N(r.Size()))
		den := d.DenMin + rng.Int64N(d.DenMax-d.DenMin+1)
		return Rational(num, den)

	case library.DomainChoice:
		if len(d.Values) == 0 {
			return Value{}, fmt.Errorf("choice domain has no values")
		}
		return ParseValue(d.Values[rng.IntN(len(d.Values))]), nil
	}
	return Value{}, fmt.Errorf("domain kind %q is not sampled", d.Kind)
}

// evaluate computes a derived variable from values already bound.
func evaluate(f library.Formula, a Assignment) (Value, error) {
	args := make([]*big.Rat, len(f.Args))
	for i, name := range f.Args {
		v, ok := a[name]
		if !ok {
			return Value{}, fmt.Errorf("%s: %q is not bound", f, name)
		}
		if !v.IsNumeric() {
			return Value{}, fmt.Errorf("%s: %q is not numeric", f, name)
		}
		args[i] = v.Rat()
	}

	acc := new(big.Rat)
	switch f.Op {
	case library.FormulaSum:
		for _, x := range args {
			acc.Add(acc, x)
		}
	case library.FormulaDifference:
		acc.Set(args[0])
		for _, x := range args[1:] {
			acc.Sub(acc, x)
		}
	case library.FormulaProduct:
		acc.SetInt64(1)
		for _, x := range args {
			acc.Mul(acc, x)
		}
	case library.FormulaQuotient:
		if args[1].Sign() == 0 {
			return Value{}, fmt.Errorf("%s: division by zero", f)
		}
		acc.Quo(args[0], args[1])
	case library.FormulaMulAdd:
		acc.Mul(args[0], args[1])
		acc.Add(acc, args[2])
	default:
		return Value{}, fmt.Errorf("unknown formula op %q", f.Op)
	}

	v, err := fromRat(acc)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", f, err)
	}
	return v, nil
}
