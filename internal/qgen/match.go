package qgen

import (
	"slices"

	"github.com/abhisek/qgen/internal/library"
)

// Matcher narrows the library to what is usable for a set of skills.
type Matcher struct {
	lib *library.Library
}

// NewMatcher returns a matcher over lib.
func NewMatcher(lib *library.Library) *Matcher {
	return &Matcher{lib: lib}
}

// FindCompatibleContexts returns every context whose compatible skills
// cover all of target, in declaration order.
func (m *Matcher) FindCompatibleContexts(target library.SkillSet) []library.Context {
	var out []library.Context
	m.lib.EachContext(func(c library.Context) {
		if c.CompatibleSkills.ContainsAll(target) {
			out = append(out, c)
		}
	})
	return out
}

// FindCompatibleGoals returns every goal sharing at least one skill with
// target. A goal may be exercised through part of the requested skills.
func (m *Matcher) FindCompatibleGoals(target library.SkillSet) []library.Goal {
	var out []library.Goal
	m.lib.EachGoal(func(g library.Goal) {
		if g.CompatibleSkills.Intersects(target) {
			out = append(out, g)
		}
	})
	return out
}

// FindCompatibleTemplates returns the templates that require at least one
// target skill, belong to one of goalIDs through a goal sharing a skill
// with the template, and list a context from contextIDs whose skills cover
// the template's required skills.
func (m *Matcher) FindCompatibleTemplates(target library.SkillSet, contextIDs, goalIDs []string) []library.Template {
	var out []library.Template
	m.lib.EachTemplate(func(t library.Template) {
		if !t.RequiredSkills.Intersects(target) || !slices.Contains(goalIDs, t.GoalID) {
			return
		}
		if g, err := m.lib.Goal(t.GoalID); err != nil || !g.CompatibleSkills.Intersects(t.RequiredSkills) {
			return
		}
		if _, ok := m.contextFor(t, contextIDs); ok {
			out = append(out, t)
		}
	})
	return out
}

// contextFor picks the first context, in contextIDs order, that t lists
// and whose skills cover t's required skills.
func (m *Matcher) contextFor(t library.Template, contextIDs []string) (library.Context, bool) {
	for _, id := range contextIDs {
		if !t.HasContext(id) {
			continue
		}
		c, err := m.lib.Context(id)
		if err != nil {
			continue
		}
		if c.CompatibleSkills.ContainsAll(t.RequiredSkills) {
			return c, true
		}
	}
	return library.Context{}, false
}

// Match is the outcome of running the matcher for one request: the
// candidate sets of each stage and the selected triple.
type Match struct {
	Skills    library.SkillSet
	Contexts  []library.Context
	Goals     []library.Goal
	Templates []library.Template

	Template library.Template
	Context  library.Context
	Goal     library.Goal
}

// Match runs the three stages in order and selects the first compatible
// template in declaration order. It fails with a NoCompatibleError naming
// the first stage that came up empty.
func (m *Matcher) Match(target library.SkillSet) (*Match, error) {
	contexts := m.FindCompatibleContexts(target)
	if len(contexts) == 0 {
		return nil, &NoCompatibleError{Stage: StageContext, Skills: target}
	}
	goals := m.FindCompatibleGoals(target)
	if len(goals) == 0 {
		return nil, &NoCompatibleError{Stage: StageGoal, Skills: target}
	}

	contextIDs := make([]string, len(contexts))
	for i, c := range contexts {
		contextIDs[i] = c.ID
	}
	goalIDs := make([]string, len(goals))
	for i, g := range goals {
		goalIDs[i] = g.ID
	}

	templates := m.FindCompatibleTemplates(target, contextIDs, goalIDs)
	if len(templates) == 0 {
		return nil, &NoCompatibleError{Stage: StageTemplate, Skills: target}
	}

	tpl := templates[0]
	ctx, _ := m.contextFor(tpl, contextIDs)
	goal, err := m.lib.Goal(tpl.GoalID)
	if err != nil {
		return nil, err
	}

	return &Match{
		Skills:    target,
		Contexts:  contexts,
		Goals:     goals,
		Templates: templates,
		Template:  tpl,
		Context:   ctx,
		Goal:      goal,
	}, nil
}
