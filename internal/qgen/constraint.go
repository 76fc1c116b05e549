package qgen

import (
	"fmt"
	"math/big"

	"github.com/abhisek/qgen/internal/library"
)

// Satisfies reports whether every constraint holds under a. It returns the
// first failing constraint, if any.
func Satisfies(constraints []library.Constraint, a Assignment) (library.Constraint, bool) {
	for _, c := range constraints {
		if ok, _ := check(c, a); !ok {
			return c, false
		}
	}
	return library.Constraint{}, true
}

// check evaluates a single constraint. A constraint applied to values of
// the wrong kind (a text operand in an ordering, a rational in gcd) does
// not hold, and the error says why.
func check(c library.Constraint, a Assignment) (bool, error) {
	vals := make([]Value, len(c.Vars))
	for i, name := range c.Vars {
		v, ok := a[name]
		if !ok {
			return false, fmt.Errorf("%s: %q is not bound", c, name)
		}
		vals[i] = v
	}

	switch c.Op {
	case library.OpNotEqual, library.OpGreater, library.OpGreaterEqual, library.OpLess, library.OpLessEqual:
		lhs, rhs := vals[0], Int(c.Bound)
		if len(vals) == 2 {
			rhs = vals[1]
		}
		if c.Op == library.OpNotEqual && (!lhs.IsNumeric() || !rhs.IsNumeric()) {
			return !lhs.Equal(rhs), nil
		}
		cmp, err := lhs.Compare(rhs)
		if err != nil {
			return false, fmt.Errorf("%s: %w", c, err)
		}
		switch c.Op {
		case library.OpNotEqual:
			return cmp != 0, nil
		case library.OpGreater:
			return cmp > 0, nil
		case library.OpGreaterEqual:
			return cmp >= 0, nil
		case library.OpLess:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}

	case library.OpCoprime:
		x, y, err := integerPair(c, vals)
		if err != nil {
			return false, err
		}
		g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(big.NewInt(x)), new(big.Int).Abs(big.NewInt(y)))
		return g.Cmp(big.NewInt(1)) == 0, nil

	case library.OpDivides:
		x, y, err := integerPair(c, vals)
		if err != nil {
			return false, err
		}
		if x == 0 {
			return false, nil
		}
		return y%x == 0, nil

	case library.OpSumAtMost:
		sum := new(big.Rat)
		for _, v := range vals {
			if !v.IsNumeric() {
				return false, fmt.Errorf("%s: %w", c, errNotNumeric)
			}
			sum.Add(sum, v.Rat())
		}
		return sum.Cmp(new(big.Rat).SetInt64(c.Bound)) <= 0, nil

	case library.OpDistinct:
		for i := range vals {
			for j := i + 1; j < len(vals); j++ {
				if vals[i].Equal(vals[j]) {
					return false, nil
				}
			}
		}
		return true, nil
	}
	return false, fmt.Errorf("unknown operator %q", c.Op)
}

func integerPair(c library.Constraint, vals []Value) (int64, int64, error) {
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("%s: needs 2 operands", c)
	}
	x, ok1 := vals[0].Int64()
	y, ok2 := vals[1].Int64()
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("%s: operands must be integers", c)
	}
	return x, y, nil
}
