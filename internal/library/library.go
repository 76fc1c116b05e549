package library

import (
	"fmt"
	"slices"
)

// Library holds the goal registry, the context library and the template
// library. It is immutable after New returns and safe for concurrent use.
type Library struct {
	goals     []Goal
	contexts  []Context
	templates []Template

	goalByID     map[string]int
	contextByID  map[string]int
	templateByID map[string]int
}

// New validates the three collections and builds a Library. Declaration
// order is preserved; matching relies on it.
func New(goals []Goal, contexts []Context, templates []Template) (*Library, error) {
	if err := validateLibrary(goals, contexts, templates); err != nil {
		return nil, err
	}

	lib := &Library{
		goals:        cloneGoals(goals),
		contexts:     cloneContexts(contexts),
		templates:    cloneTemplates(templates),
		goalByID:     make(map[string]int, len(goals)),
		contextByID:  make(map[string]int, len(contexts)),
		templateByID: make(map[string]int, len(templates)),
	}
	for i, g := range lib.goals {
		lib.goalByID[g.ID] = i
	}
	for i, c := range lib.contexts {
		lib.contextByID[c.ID] = i
	}
	for i, t := range lib.templates {
		lib.templateByID[t.ID] = i
	}
	return lib, nil
}

// MustNew is New that panics on error. Intended for tests and static data.
func MustNew(goals []Goal, contexts []Context, templates []Template) *Library {
	lib, err := New(goals, contexts, templates)
	if err != nil {
		panic(err)
	}
	return lib
}

// Goals returns all goals in declaration order.
func (l *Library) Goals() []Goal { return cloneGoals(l.goals) }

// Contexts returns all contexts in declaration order.
func (l *Library) Contexts() []Context { return cloneContexts(l.contexts) }

// Templates returns all templates in declaration order.
func (l *Library) Templates() []Template { return cloneTemplates(l.templates) }

// EachContext calls fn for every context in declaration order without
// copying the collection.
func (l *Library) EachContext(fn func(Context)) {
	for _, c := range l.contexts {
		fn(c)
	}
}

// EachGoal calls fn for every goal in declaration order.
func (l *Library) EachGoal(fn func(Goal)) {
	for _, g := range l.goals {
		fn(g)
	}
}

// EachTemplate calls fn with a copy of every template in declaration order.
func (l *Library) EachTemplate(fn func(Template)) {
	for _, t := range l.templates {
		fn(cloneTemplate(t))
	}
}

// Goal returns a goal by ID.
func (l *Library) Goal(id string) (Goal, error) {
	i, ok := l.goalByID[id]
	if !ok {
		return Goal{}, fmt.Errorf("goal not found: %q", id)
	}
	return l.goals[i], nil
}

// Context returns a context by ID.
func (l *Library) Context(id string) (Context, error) {
	i, ok := l.contextByID[id]
	if !ok {
		return Context{}, fmt.Errorf("context not found: %q", id)
	}
	return l.contexts[i], nil
}

// Template returns a template by ID.
func (l *Library) Template(id string) (Template, error) {
	i, ok := l.templateByID[id]
	if !ok {
		return Template{}, fmt.Errorf("template not found: %q", id)
	}
	return cloneTemplate(l.templates[i]), nil
}

// Skills returns every skill mentioned anywhere in the library, in order of
// first appearance (goals, then contexts, then templates).
func (l *Library) Skills() SkillSet {
	var all SkillSet
	for _, g := range l.goals {
		all = all.Union(g.CompatibleSkills)
	}
	for _, c := range l.contexts {
		all = all.Union(c.CompatibleSkills)
	}
	for _, t := range l.templates {
		all = all.Union(t.RequiredSkills)
	}
	return all
}

// Stats summarises the library size.
type Stats struct {
	Goals     int `json:"goals"`
	Contexts  int `json:"contexts"`
	Templates int `json:"templates"`
	Skills    int `json:"skills"`
}

// Stats returns collection counts.
func (l *Library) Stats() Stats {
	return Stats{
		Goals:     len(l.goals),
		Contexts:  len(l.contexts),
		Templates: len(l.templates),
		Skills:    l.Skills().Len(),
	}
}

// SkillSets are immutable, so the clones below only copy the slices that
// callers could otherwise mutate.

func cloneGoals(goals []Goal) []Goal { return slices.Clone(goals) }

func cloneContexts(contexts []Context) []Context { return slices.Clone(contexts) }

func cloneTemplates(templates []Template) []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		out[i] = cloneTemplate(t)
	}
	return out
}

func cloneTemplate(t Template) Template {
	t.Variables = slices.Clone(t.Variables)
	for i := range t.Variables {
		d := &t.Variables[i].Domain
		d.Values = slices.Clone(d.Values)
		if d.Formula != nil {
			f := *d.Formula
			f.Args = slices.Clone(f.Args)
			d.Formula = &f
		}
	}
	t.Constraints = slices.Clone(t.Constraints)
	for i := range t.Constraints {
		t.Constraints[i].Vars = slices.Clone(t.Constraints[i].Vars)
	}
	t.CompatibleContexts = slices.Clone(t.CompatibleContexts)
	return t
}
