package library

import (
	"fmt"
	"regexp"
	"strings"
)

// Goal is a pedagogical objective exercised by one or more skills.
type Goal struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	CompatibleSkills SkillSet `json:"compatibleSkills"`
}

// Context is a real-world scenario used as the narrative wrapper of a question.
type Context struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	CompatibleSkills SkillSet `json:"compatibleSkills"`
}

// DomainKind selects how a variable's values are produced.
type DomainKind string

const (
	DomainInteger  DomainKind = "integer"  // uniform over Min..Max by Step
	DomainRational DomainKind = "rational" // Min..Max over DenMin..DenMax, reduced
	DomainChoice   DomainKind = "choice"   // uniform over Values
	DomainDerived  DomainKind = "derived"  // computed by Formula, never sampled
)

// Sign restricts the sign of a numeric value.
type Sign string

const (
	SignAny         Sign = ""
	SignPositive    Sign = "positive"
	SignNegative    Sign = "negative"
	SignNonNegative Sign = "non-negative"
)

// FormulaOp is the arithmetic operation of a derived variable.
type FormulaOp string

const (
	FormulaSum        FormulaOp = "sum"        // a + b + ...
	FormulaDifference FormulaOp = "difference" // a - b - ...
	FormulaProduct    FormulaOp = "product"    // a * b * ...
	FormulaQuotient   FormulaOp = "quotient"   // a / b, exact
	FormulaMulAdd     FormulaOp = "muladd"     // a * b + c
)

// Formula computes a derived variable from earlier variables.
type Formula struct {
	Op   FormulaOp `json:"op"`
	Args []string  `json:"args"`
}

func (f Formula) String() string {
	switch f.Op {
	case FormulaSum:
		return strings.Join(f.Args, " + ")
	case FormulaDifference:
		return strings.Join(f.Args, " - ")
	case FormulaProduct:
		return strings.Join(f.Args, " * ")
	case FormulaQuotient:
		return strings.Join(f.Args, " / ")
	case FormulaMulAdd:
		if len(f.Args) == 3 {
			return fmt.Sprintf("%s * %s + %s", f.Args[0], f.Args[1], f.Args[2])
		}
	}
	return fmt.Sprintf("%s(%s)", f.Op, strings.Join(f.Args, ", "))
}

// Domain constrains the values a variable may take.
type Domain struct {
	Kind    DomainKind `json:"kind"`
	Min     int64      `json:"min,omitempty"`
	Max     int64      `json:"max,omitempty"`
	Step    int64      `json:"step,omitempty"`
	NonZero bool       `json:"nonZero,omitempty"`
	Sign    Sign       `json:"sign,omitempty"`

	// DenMin and DenMax bound the denominator of rational domains.
	DenMin int64 `json:"denMin,omitempty"`
	DenMax int64 `json:"denMax,omitempty"`

	// Values lists the members of a choice domain.
	Values []string `json:"values,omitempty"`

	// Formula is set only for derived variables.
	Formula *Formula `json:"formula,omitempty"`
}

// Variable is a named slot in a template.
type Variable struct {
	Name   string `json:"name"`
	Domain Domain `json:"domain"`
}

// Op is a constraint operator.
type Op string

const (
	OpNotEqual     Op = "ne"
	OpGreater      Op = "gt"
	OpGreaterEqual Op = "ge"
	OpLess         Op = "lt"
	OpLessEqual    Op = "le"
	OpCoprime      Op = "coprime"
	OpDivides      Op = "divides"
	OpSumAtMost    Op = "sum_le"
	OpDistinct     Op = "distinct"
)

var comparisonSymbols = map[Op]string{
	OpNotEqual:     "!=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpLess:         "<",
	OpLessEqual:    "<=",
}

// IsComparison reports whether op compares two operands.
func (op Op) IsComparison() bool {
	_, ok := comparisonSymbols[op]
	return ok
}

// Constraint is a predicate a generated assignment must satisfy.
//
// Comparisons take either two variables, or one variable and Bound.
type Constraint struct {
	Op    Op       `json:"op"`
	Vars  []string `json:"vars"`
	Bound int64    `json:"bound,omitempty"`
}

func (c Constraint) String() string {
	if sym, ok := comparisonSymbols[c.Op]; ok {
		if len(c.Vars) == 1 {
			return fmt.Sprintf("%s %s %d", c.Vars[0], sym, c.Bound)
		}
		if len(c.Vars) == 2 {
			return fmt.Sprintf("%s %s %s", c.Vars[0], sym, c.Vars[1])
		}
	}
	switch c.Op {
	case OpCoprime:
		return fmt.Sprintf("gcd(%s) == 1", strings.Join(c.Vars, ", "))
	case OpDivides:
		if len(c.Vars) == 2 {
			return fmt.Sprintf("%s | %s", c.Vars[0], c.Vars[1])
		}
	case OpSumAtMost:
		return fmt.Sprintf("%s <= %d", strings.Join(c.Vars, " + "), c.Bound)
	case OpDistinct:
		return fmt.Sprintf("distinct(%s)", strings.Join(c.Vars, ", "))
	}
	return fmt.Sprintf("%s(%s)", c.Op, strings.Join(c.Vars, ", "))
}

// Template is a parameterized question pattern.
type Template struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Text               string       `json:"templateText"`
	LaTeX              string       `json:"templateLatex,omitempty"`
	Variables          []Variable   `json:"variables"`
	Constraints        []Constraint `json:"constraints"`
	RequiredSkills     SkillSet     `json:"requiredSkills"`
	CompatibleContexts []string     `json:"compatibleContexts"`
	GoalID             string       `json:"goalId"`
}

// HasContext reports whether the template lists contextID as compatible.
func (t Template) HasContext(contextID string) bool {
	for _, id := range t.CompatibleContexts {
		if id == contextID {
			return true
		}
	}
	return false
}

// Variable returns the declared variable with the given name.
func (t Template) Variable(name string) (Variable, bool) {
	for _, v := range t.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// placeholderPattern matches {name}, optionally preceded by a LaTeX command
// so that literal text groups such as \text{litros} can be told apart.
var placeholderPattern = regexp.MustCompile(`(\\[A-Za-z]+)?\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// literalGroupCommands take a text argument. A group directly after one of
// them is literal; write \text{{name}} to substitute inside it.
var literalGroupCommands = map[string]bool{
	`\text`:         true,
	`\textrm`:       true,
	`\textit`:       true,
	`\textbf`:       true,
	`\texttt`:       true,
	`\mathrm`:       true,
	`\mathit`:       true,
	`\mathbf`:       true,
	`\mathsf`:       true,
	`\mbox`:         true,
	`\operatorname`: true,
}

// placeholderName returns the variable named by a placeholderPattern match,
// or false when the match is a literal text group.
func placeholderName(m []string) (string, bool) {
	if literalGroupCommands[m[1]] {
		return "", false
	}
	return m[2], true
}

// Placeholders returns the distinct {name} tokens of text in order of first
// appearance.
func Placeholders(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		name, ok := placeholderName(m)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ReplacePlaceholders calls fn for every {name} token in text and replaces
// the token with the result. Tokens for which fn reports false are kept, as
// are literal text groups.
func ReplacePlaceholders(text string, fn func(name string) (string, bool)) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(tok string) string {
		m := placeholderPattern.FindStringSubmatch(tok)
		name, ok := placeholderName(m)
		if !ok {
			return tok
		}
		if s, ok := fn(name); ok {
			return m[1] + s
		}
		return tok
	})
}
