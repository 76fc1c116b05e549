package library

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/paes.yaml
var defaultLibraryYAML []byte

var (
	defaultOnce sync.Once
	defaultLib  *Library
	defaultErr  error
)

// Default returns the built-in PAES library. It is parsed once and shared.
func Default() (*Library, error) {
	defaultOnce.Do(func() {
		defaultLib, defaultErr = Parse(defaultLibraryYAML)
		if defaultErr != nil {
			defaultErr = fmt.Errorf("built-in library: %w", defaultErr)
		}
	})
	return defaultLib, defaultErr
}

// LoadFile parses and validates a library file.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library %s: %w", path, err)
	}
	lib, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("library %s: %w", path, err)
	}
	return lib, nil
}

// Parse decodes a YAML library document and validates it. Unknown keys are
// rejected so typos in hand-authored files surface at load time.
func Parse(data []byte) (*Library, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc libraryFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty library document")
		}
		return nil, fmt.Errorf("decode library: %w", err)
	}
	return doc.build()
}

type libraryFile struct {
	Goals     []goalFile     `yaml:"goals"`
	Contexts  []contextFile  `yaml:"contexts"`
	Templates []templateFile `yaml:"templates"`
}

type goalFile struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	Skills []string `yaml:"skills"`
}

type contextFile struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Skills      []string `yaml:"skills"`
}

type templateFile struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Text        string           `yaml:"text"`
	LaTeX       string           `yaml:"latex"`
	Goal        string           `yaml:"goal"`
	Skills      []string         `yaml:"skills"`
	Contexts    []string         `yaml:"contexts"`
	Variables   []variableFile   `yaml:"variables"`
	Constraints []constraintFile `yaml:"constraints"`
}

type variableFile struct {
	Name    string       `yaml:"name"`
	Kind    DomainKind   `yaml:"kind"`
	Min     int64        `yaml:"min"`
	Max     int64        `yaml:"max"`
	Step    int64        `yaml:"step"`
	NonZero bool         `yaml:"nonzero"`
	Sign    Sign         `yaml:"sign"`
	DenMin  int64        `yaml:"den_min"`
	DenMax  int64        `yaml:"den_max"`
	Values  []string     `yaml:"values"`
	Formula *formulaFile `yaml:"formula"`
}

type formulaFile struct {
	Op   FormulaOp `yaml:"op"`
	Args []string  `yaml:"args"`
}

type constraintFile struct {
	Op    Op       `yaml:"op"`
	Vars  []string `yaml:"vars"`
	Bound int64    `yaml:"bound"`
}

func (f libraryFile) build() (*Library, error) {
	goals := make([]Goal, len(f.Goals))
	for i, g := range f.Goals {
		goals[i] = Goal{ID: g.ID, Name: g.Name, CompatibleSkills: SkillSetOf(g.Skills...)}
	}

	contexts := make([]Context, len(f.Contexts))
	for i, c := range f.Contexts {
		contexts[i] = Context{
			ID:               c.ID,
			Name:             c.Name,
			Description:      c.Description,
			CompatibleSkills: SkillSetOf(c.Skills...),
		}
	}

	templates := make([]Template, len(f.Templates))
	for i, t := range f.Templates {
		tpl := Template{
			ID:                 t.ID,
			Name:               t.Name,
			Text:               t.Text,
			LaTeX:              t.LaTeX,
			GoalID:             t.Goal,
			RequiredSkills:     SkillSetOf(t.Skills...),
			CompatibleContexts: t.Contexts,
		}
		for _, v := range t.Variables {
			d := Domain{
				Kind:    v.Kind,
				Min:     v.Min,
				Max:     v.Max,
				Step:    v.Step,
				NonZero: v.NonZero,
				Sign:    v.Sign,
				DenMin:  v.DenMin,
				DenMax:  v.DenMax,
				Values:  v.Values,
			}
			if v.Formula != nil {
				d.Formula = &Formula{Op: v.Formula.Op, Args: v.Formula.Args}
			}
			tpl.Variables = append(tpl.Variables, Variable{Name: v.Name, Domain: d})
		}
		for _, c := range t.Constraints {
			tpl.Constraints = append(tpl.Constraints, Constraint{Op: c.Op, Vars: c.Vars, Bound: c.Bound})
		}
		templates[i] = tpl
	}

	return New(goals, contexts, templates)
}
