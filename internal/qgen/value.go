package qgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ValueKind distinguishes the three value representations.
type ValueKind uint8

const (
	KindInteger ValueKind = iota
	KindRational
	KindText
)

func (k ValueKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindRational:
		return "rational"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("ValueKind(%d)", uint8(k))
}

// Value is one concrete value bound to a template variable. Numbers are
// exact: an integer, or a reduced fraction with a positive denominator.
// A fraction whose denominator reduces to 1 is an integer.
type Value struct {
	kind ValueKind
	num  int64
	den  int64
	text string
}

// Int returns an integer value.
func Int(n int64) Value { return Value{kind: KindInteger, num: n, den: 1} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

var errZeroDenominator = errors.New("zero denominator")

// Rational returns num/den reduced to lowest terms.
func Rational(num, den int64) (Value, error) {
	if den == 0 {
		return Value{}, errZeroDenominator
	}
	return fromRat(new(big.Rat).SetFrac64(num, den))
}

// ParseValue reads an integer literal, a fraction "a/b", or falls back to
// text.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(n)
	}
	if numStr, denStr, ok := strings.Cut(s, "/"); ok {
		num, err1 := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
		den, err2 := strconv.ParseInt(strings.TrimSpace(denStr), 10, 64)
		if err1 == nil && err2 == nil {
			if v, err := Rational(num, den); err == nil {
				return v
			}
		}
	}
	return Text(s)
}

var errOverflow = errors.New("value out of int64 range")

func fromRat(r *big.Rat) (Value, error) {
	if !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return Value{}, errOverflow
	}
	num, den := r.Num().Int64(), r.Denom().Int64()
	if den == 1 {
		return Int(num), nil
	}
	return Value{kind: KindRational, num: num, den: den}, nil
}

// Kind returns the representation of v.
func (v Value) Kind() ValueKind { return v.kind }

// IsNumeric reports whether v is an integer or a rational.
func (v Value) IsNumeric() bool { return v.kind != KindText }

// Int64 returns the integer value of v, if it is one.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.num, true
}

// Frac returns the numerator and denominator of a numeric value.
func (v Value) Frac() (num, den int64) { return v.num, v.den }

// Rat returns v as a big.Rat. It panics on text values.
func (v Value) Rat() *big.Rat {
	if v.kind == KindText {
		panic("qgen: Rat called on text value")
	}
	return new(big.Rat).SetFrac64(v.num, v.den)
}

// Equal reports whether two values are identical. Numbers of different
// kinds never compare equal because they are always stored reduced.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindText {
		return v.text == o.text
	}
	return v.num == o.num && v.den == o.den
}

var errNotNumeric = errors.New("not a numeric value")

// Compare orders two numeric values.
func (v Value) Compare(o Value) (int, error) {
	if !v.IsNumeric() || !o.IsNumeric() {
		return 0, errNotNumeric
	}
	return v.Rat().Cmp(o.Rat()), nil
}

// String renders v as plain text: 7, -3/4, manzanas.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindRational:
		return strconv.FormatInt(v.num, 10) + "/" + strconv.FormatInt(v.den, 10)
	}
	return v.text
}

// LaTeX renders v for math mode: 7, -\frac{3}{4}, \text{manzanas}.
func (v Value) LaTeX() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindRational:
		num := v.num
		sign := ""
		if num < 0 {
			sign = "-"
			num = -num
		}
		return fmt.Sprintf(`%s\frac{%d}{%d}`, sign, num, v.den)
	}
	return `\text{` + v.text + `}`
}

// MarshalJSON encodes integers as JSON numbers and everything else as
// strings, so no precision is lost on rationals.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindInteger {
		return []byte(strconv.FormatInt(v.num, 10)), nil
	}
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts the encoding produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Int(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("value must be an integer or a string: %w", err)
	}
	*v = ParseValue(s)
	return nil
}

// Assignment binds variable names to values.
type Assignment map[string]Value

// Strings returns the plain rendering of every bound value.
func (a Assignment) Strings() map[string]string {
	out := make(map[string]string, len(a))
	for k, v := range a {
		out[k] = v.String()
	}
	return out
}
