package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_Loads(t *testing.T) {
	lib, err := Default()
	if err != nil {
		t.Fatalf("built-in library: %v", err)
	}
	st := lib.Stats()
	if st.Goals == 0 || st.Contexts == 0 || st.Templates == 0 {
		t.Fatalf("empty collections: %+v", st)
	}
	skills := lib.Skills()
	for _, s := range []Skill{"suma-basica", "ecuaciones-lineales", "despeje", "teorema-pitagoras", "probabilidad-clasica"} {
		if !skills.Contains(s) {
			t.Errorf("built-in library lacks skill %q", s)
		}
	}
}

func TestDefault_Shared(t *testing.T) {
	a, _ := Default()
	b, _ := Default()
	if a != b {
		t.Error("Default should return the same library")
	}
}

func TestDefault_EveryContextOfTemplateIsUsable(t *testing.T) {
	lib, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	// Each template must have at least one listed context that covers its
	// required skills, or the matcher can never select it.
	for _, tpl := range lib.Templates() {
		ok := false
		for _, id := range tpl.CompatibleContexts {
			c, err := lib.Context(id)
			if err != nil {
				t.Fatalf("%s: %v", tpl.ID, err)
			}
			if c.CompatibleSkills.ContainsAll(tpl.RequiredSkills) {
				ok = true
			}
		}
		if !ok {
			t.Errorf("template %s has no context covering %s", tpl.ID, tpl.RequiredSkills)
		}
	}
}

func TestDefault_UsesEveryDomainKind(t *testing.T) {
	lib, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	kinds := map[DomainKind]bool{}
	for _, tpl := range lib.Templates() {
		for _, v := range tpl.Variables {
			kinds[v.Domain.Kind] = true
		}
	}
	for _, k := range []DomainKind{DomainInteger, DomainRational, DomainChoice, DomainDerived} {
		if !kinds[k] {
			t.Errorf("no template uses %s variables", k)
		}
	}
}

const smallLibrary = `
goals:
  - id: g
    name: Sumas
    skills: [suma-basica]
contexts:
  - id: c
    name: Kiosco
    description: Un kiosco escolar.
    skills: [suma-basica]
templates:
  - id: t
    name: Suma
    text: "{a} + {b}"
    goal: g
    skills: [suma-basica]
    contexts: [c]
    variables:
      - {name: a, kind: integer, min: 1, max: 9}
      - {name: b, kind: choice, values: ["1", "2"]}
      - {name: s, kind: derived, formula: {op: sum, args: [a, b]}}
    constraints:
      - {op: ne, vars: [a, b]}
`

func TestParse(t *testing.T) {
	lib, err := Parse([]byte(smallLibrary))
	if err != nil {
		t.Fatal(err)
	}
	tpl, err := lib.Template("t")
	if err != nil {
		t.Fatal(err)
	}
	if len(tpl.Variables) != 3 || tpl.Variables[2].Domain.Formula == nil {
		t.Fatalf("variables = %+v", tpl.Variables)
	}
	if tpl.Variables[2].Domain.Formula.Op != FormulaSum {
		t.Errorf("formula op = %s", tpl.Variables[2].Domain.Formula.Op)
	}
	c, _ := lib.Context("c")
	if c.Description != "Un kiosco escolar." {
		t.Errorf("description = %q", c.Description)
	}
}

func TestParse_UnknownField(t *testing.T) {
	doc := strings.Replace(smallLibrary, "name: Kiosco", "nombre: Kiosco", 1)
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestParse_Invalid(t *testing.T) {
	doc := strings.Replace(smallLibrary, "goal: g", "goal: missing", 1)
	_, err := Parse([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "nonexistent goal") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.yaml")
	if err := os.WriteFile(path, []byte(smallLibrary), 0o644); err != nil {
		t.Fatal(err)
	}
	lib, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lib.Stats().Templates != 1 {
		t.Errorf("templates = %d", lib.Stats().Templates)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
