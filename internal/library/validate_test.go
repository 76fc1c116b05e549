package library

import (
	"math"
	"strings"
	"testing"
)

func intVar(name string, lo, hi int64) Variable {
	return Variable{Name: name, Domain: Domain{Kind: DomainInteger, Min: lo, Max: hi}}
}

func baseGoals() []Goal {
	return []Goal{{ID: "g", Name: "G", CompatibleSkills: SkillSetOf("a")}}
}

func baseContexts() []Context {
	return []Context{{ID: "c", Name: "C", CompatibleSkills: SkillSetOf("a")}}
}

func baseTemplate() Template {
	return Template{
		ID:                 "t",
		Name:               "T",
		Text:               "{x} + {y}",
		LaTeX:              `\frac{{x}}{{y}}`,
		GoalID:             "g",
		RequiredSkills:     SkillSetOf("a"),
		CompatibleContexts: []string{"c"},
		Variables:          []Variable{intVar("x", 1, 9), intVar("y", 1, 9)},
		Constraints:        []Constraint{{Op: OpNotEqual, Vars: []string{"x", "y"}}},
	}
}

func TestNew_Valid(t *testing.T) {
	lib, err := New(baseGoals(), baseContexts(), []Template{baseTemplate()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := lib.Stats(); got.Templates != 1 || got.Skills != 1 {
		t.Errorf("stats = %+v", got)
	}
}

func TestNew_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Template)
		want   string
	}{
		{"missing goal", func(tp *Template) { tp.GoalID = "nope" }, `nonexistent goal "nope"`},
		{"goal unrelated to template", func(tp *Template) { tp.RequiredSkills = SkillSetOf("b") }, `goal "g" [a] shares no skill with required skills [b]`},
		{"missing context", func(tp *Template) { tp.CompatibleContexts = []string{"c", "zz"} }, `nonexistent context "zz"`},
		{"no contexts", func(tp *Template) { tp.CompatibleContexts = nil }, "lists no compatible contexts"},
		{"no skills", func(tp *Template) { tp.RequiredSkills = SkillSet{} }, "requires no skills"},
		{"empty text", func(tp *Template) { tp.Text = "  " }, "templateText is empty"},
		{"undeclared text placeholder", func(tp *Template) { tp.Text = "{x} + {w}" }, "placeholder {w}"},
		{"undeclared latex placeholder", func(tp *Template) { tp.LaTeX = "{q}" }, "templateLatex placeholder {q}"},
		{"duplicate variable", func(tp *Template) { tp.Variables = append(tp.Variables, intVar("x", 1, 2)) }, `duplicate variable "x"`},
		{"min above max", func(tp *Template) { tp.Variables[0] = intVar("x", 9, 1) }, "min 9 > max 1"},
		{"range too wide", func(tp *Template) { tp.Variables[0] = intVar("x", math.MinInt64, math.MaxInt64) }, "range too wide"},
		{"empty choice", func(tp *Template) {
			tp.Variables[0] = Variable{Name: "x", Domain: Domain{Kind: DomainChoice}}
		}, "choice domain has no values"},
		{"bad rational", func(tp *Template) {
			tp.Variables[0] = Variable{Name: "x", Domain: Domain{Kind: DomainRational, Min: 1, Max: 3, DenMin: 0, DenMax: 4}}
		}, "denMin must be >= 1"},
		{"unknown kind", func(tp *Template) { tp.Variables[0].Domain.Kind = "float" }, `unknown domain kind "float"`},
		{"derived forward reference", func(tp *Template) {
			tp.Variables = []Variable{
				{Name: "x", Domain: Domain{Kind: DomainDerived, Formula: &Formula{Op: FormulaSum, Args: []string{"y", "y"}}}},
				intVar("y", 1, 9),
			}
		}, `undeclared or later variable "y"`},
		{"muladd arity", func(tp *Template) {
			tp.Variables = append(tp.Variables, Variable{Name: "z", Domain: Domain{Kind: DomainDerived, Formula: &Formula{Op: FormulaMulAdd, Args: []string{"x", "y"}}}})
		}, "muladd needs 3 arguments"},
		{"formula on integer", func(tp *Template) {
			tp.Variables[0].Domain.Formula = &Formula{Op: FormulaSum, Args: []string{"y", "y"}}
		}, "formula is only allowed on derived domains"},
		{"constraint unknown var", func(tp *Template) {
			tp.Constraints = []Constraint{{Op: OpGreater, Vars: []string{"x", "k"}}}
		}, `undeclared variable "k"`},
		{"constraint arity", func(tp *Template) {
			tp.Constraints = []Constraint{{Op: OpCoprime, Vars: []string{"x"}}}
		}, "coprime needs 2 variables"},
		{"constraint op", func(tp *Template) {
			tp.Constraints = []Constraint{{Op: "approx", Vars: []string{"x"}}}
		}, `unknown operator "approx"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := baseTemplate()
			tt.mutate(&tpl)
			_, err := New(baseGoals(), baseContexts(), []Template{tpl})
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestNew_DuplicateIDs(t *testing.T) {
	goals := append(baseGoals(), baseGoals()...)
	contexts := append(baseContexts(), baseContexts()...)
	_, err := New(goals, contexts, []Template{baseTemplate(), baseTemplate()})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{`duplicate goal ID: "g"`, `duplicate context ID: "c"`, `duplicate template ID: "t"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %q:\n%v", want, err)
		}
	}
}

func TestNew_ReportsAllProblems(t *testing.T) {
	bad := baseTemplate()
	bad.GoalID = "nope"
	bad.Text = "{w}"
	_, err := New(baseGoals(), []Context{{ID: "c"}}, []Template{bad})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"has no compatible skills", "nonexistent goal", "placeholder {w}"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error does not mention %q:\n%s", want, msg)
		}
	}
}

func TestLibrary_AccessorsReturnCopies(t *testing.T) {
	lib := MustNew(baseGoals(), baseContexts(), []Template{baseTemplate()})
	tpls := lib.Templates()
	tpls[0].Variables[0].Name = "mutated"
	tpls[0].CompatibleContexts[0] = "mutated"

	got, err := lib.Template("t")
	if err != nil {
		t.Fatal(err)
	}
	if got.Variables[0].Name != "x" || got.CompatibleContexts[0] != "c" {
		t.Error("library was mutated through an accessor")
	}
}

func TestLibrary_LookupNotFound(t *testing.T) {
	lib := MustNew(baseGoals(), baseContexts(), []Template{baseTemplate()})
	if _, err := lib.Goal("x"); err == nil {
		t.Error("expected error for unknown goal")
	}
	if _, err := lib.Context("x"); err == nil {
		t.Error("expected error for unknown context")
	}
	if _, err := lib.Template("x"); err == nil {
		t.Error("expected error for unknown template")
	}
}
