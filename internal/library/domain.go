package library

import (
	"errors"
	"fmt"
	"math"
)

// IntRange is the effective integer grid of a numeric domain after sign and
// non-zero restrictions: First, First+Step, ... (Count values), minus the
// value at index Skip when HasSkip is set. Offsets are unsigned so a grid
// may span most of the int64 range.
type IntRange struct {
	First   int64
	Step    int64
	Count   uint64
	Skip    uint64
	HasSkip bool
}

// Size returns the number of admissible values.
func (r IntRange) Size() uint64 {
	if r.HasSkip {
		return r.Count - 1
	}
	return r.Count
}

// At returns the k-th admissible value, 0 <= k < Size().
func (r IntRange) At(k uint64) int64 {
	if r.HasSkip && k >= r.Skip {
		k++
	}
	// Two's complement wraparound yields the exact value, which lies
	// between Min and Max.
	return int64(uint64(r.First) + k*uint64(r.Step))
}

var (
	errEmptyDomain = errors.New("domain admits no values")
	errWideDomain  = errors.New("range too wide: more than 2^64-1 values")
)

// IntegerRange computes the admissible grid for the integer part of d: the
// value of an integer domain or the numerator of a rational one. The grid is
// anchored at Min, so Step applies relative to Min even after the sign
// restriction trims the range.
func (d Domain) IntegerRange() (IntRange, error) {
	if d.Min > d.Max {
		return IntRange{}, fmt.Errorf("min %d > max %d", d.Min, d.Max)
	}
	step := d.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return IntRange{}, fmt.Errorf("step must be >= 0, got %d", d.Step)
	}

	lo, hi := d.Min, d.Max
	switch d.Sign {
	case SignAny:
	case SignPositive:
		lo = max(lo, 1)
	case SignNegative:
		hi = min(hi, -1)
	case SignNonNegative:
		lo = max(lo, 0)
	default:
		return IntRange{}, fmt.Errorf("unknown sign %q", d.Sign)
	}
	if lo > hi {
		return IntRange{}, errEmptyDomain
	}

	// Grid indices relative to Min; every offset from Min fits in uint64.
	ustep := uint64(step)
	kFirst := ceilDiv(offset(d.Min, lo), ustep)
	kLast := offset(d.Min, hi) / ustep
	if kFirst > kLast {
		return IntRange{}, errEmptyDomain
	}
	if kFirst == 0 && kLast == math.MaxUint64 {
		return IntRange{}, errWideDomain
	}

	r := IntRange{
		First: int64(uint64(d.Min) + kFirst*ustep),
		Step:  step,
		Count: kLast - kFirst + 1,
	}
	if d.NonZero && d.Min <= 0 && d.Max >= 0 {
		if z := offset(d.Min, 0); z%ustep == 0 && z/ustep >= kFirst && z/ustep <= kLast {
			r.Skip, r.HasSkip = z/ustep-kFirst, true
		}
	}
	if r.Size() == 0 {
		return IntRange{}, errEmptyDomain
	}
	return r, nil
}

// offset returns v - base for base <= v without overflow.
func offset(base, v int64) uint64 {
	return uint64(v) - uint64(base)
}

// ceilDiv divides a by a positive b, rounding up.
func ceilDiv(a, b uint64) uint64 {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}
