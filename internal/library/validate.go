package library

import (
	"fmt"
	"strings"
)

// validateLibrary performs all structural checks on the three collections.
// Returns a combined error describing every problem found, or nil if valid.
func validateLibrary(goals []Goal, contexts []Context, templates []Template) error {
	var errs []string

	goalSkills := make(map[string]SkillSet, len(goals))
	for _, g := range goals {
		if g.ID == "" {
			errs = append(errs, "goal with empty ID")
			continue
		}
		if _, dup := goalSkills[g.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate goal ID: %q", g.ID))
		} else {
			goalSkills[g.ID] = g.CompatibleSkills
		}
		if g.CompatibleSkills.Len() == 0 {
			errs = append(errs, fmt.Sprintf("goal %q has no compatible skills", g.ID))
		}
	}

	contextIDs := make(map[string]bool, len(contexts))
	for _, c := range contexts {
		if c.ID == "" {
			errs = append(errs, "context with empty ID")
			continue
		}
		if contextIDs[c.ID] {
			errs = append(errs, fmt.Sprintf("duplicate context ID: %q", c.ID))
		}
		contextIDs[c.ID] = true
		if c.CompatibleSkills.Len() == 0 {
			errs = append(errs, fmt.Sprintf("context %q has no compatible skills", c.ID))
		}
	}

	templateIDs := make(map[string]bool, len(templates))
	for _, t := range templates {
		if t.ID == "" {
			errs = append(errs, "template with empty ID")
			continue
		}
		if templateIDs[t.ID] {
			errs = append(errs, fmt.Sprintf("duplicate template ID: %q", t.ID))
		}
		templateIDs[t.ID] = true
		errs = append(errs, validateTemplate(t, goalSkills, contextIDs)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("library validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func validateTemplate(t Template, goalSkills map[string]SkillSet, contextIDs map[string]bool) []string {
	var errs []string
	prefix := fmt.Sprintf("template %q", t.ID)

	if strings.TrimSpace(t.Text) == "" {
		errs = append(errs, fmt.Sprintf("%s: templateText is empty", prefix))
	}
	if t.RequiredSkills.Len() == 0 {
		errs = append(errs, fmt.Sprintf("%s: requires no skills", prefix))
	}
	if skills, ok := goalSkills[t.GoalID]; !ok {
		errs = append(errs, fmt.Sprintf("%s references nonexistent goal %q", prefix, t.GoalID))
	} else if t.RequiredSkills.Len() > 0 && !skills.Intersects(t.RequiredSkills) {
		errs = append(errs, fmt.Sprintf("%s: goal %q %s shares no skill with required skills %s",
			prefix, t.GoalID, skills, t.RequiredSkills))
	}
	if len(t.CompatibleContexts) == 0 {
		errs = append(errs, fmt.Sprintf("%s: lists no compatible contexts", prefix))
	}
	for _, id := range t.CompatibleContexts {
		if !contextIDs[id] {
			errs = append(errs, fmt.Sprintf("%s references nonexistent context %q", prefix, id))
		}
	}

	// Variables are evaluated in declaration order, so a derived variable
	// may only reference variables declared before it.
	declared := make(map[string]bool, len(t.Variables))
	for _, v := range t.Variables {
		if v.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: variable with empty name", prefix))
			continue
		}
		if declared[v.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate variable %q", prefix, v.Name))
		}
		if msg := validateDomain(v.Domain, declared); msg != "" {
			errs = append(errs, fmt.Sprintf("%s variable %q: %s", prefix, v.Name, msg))
		}
		declared[v.Name] = true
	}

	for _, field := range []struct{ name, text string }{
		{"templateText", t.Text},
		{"templateLatex", t.LaTeX},
	} {
		for _, name := range Placeholders(field.text) {
			if !declared[name] {
				errs = append(errs, fmt.Sprintf("%s: %s placeholder {%s} has no declared variable", prefix, field.name, name))
			}
		}
	}

	for i, c := range t.Constraints {
		if msg := validateConstraint(c, declared); msg != "" {
			errs = append(errs, fmt.Sprintf("%s constraint %d (%s): %s", prefix, i, c, msg))
		}
	}

	return errs
}

func validateDomain(d Domain, declared map[string]bool) string {
	switch d.Kind {
	case DomainInteger:
		if d.Min > d.Max {
			return fmt.Sprintf("min %d > max %d", d.Min, d.Max)
		}
		if d.Step < 0 {
			return fmt.Sprintf("step must be >= 0, got %d", d.Step)
		}
		if _, err := d.IntegerRange(); err != nil {
			return err.Error()
		}
	case DomainRational:
		if d.Min > d.Max {
			return fmt.Sprintf("min %d > max %d", d.Min, d.Max)
		}
		if d.DenMin < 1 {
			return fmt.Sprintf("denMin must be >= 1, got %d", d.DenMin)
		}
		if d.DenMin > d.DenMax {
			return fmt.Sprintf("denMin %d > denMax %d", d.DenMin, d.DenMax)
		}
		if _, err := d.IntegerRange(); err != nil {
			return "numerator: " + err.Error()
		}
	case DomainChoice:
		if len(d.Values) == 0 {
			return "choice domain has no values"
		}
	case DomainDerived:
		if d.Formula == nil {
			return "derived domain has no formula"
		}
		return validateFormula(*d.Formula, declared)
	default:
		return fmt.Sprintf("unknown domain kind %q", d.Kind)
	}
	if d.Kind != DomainDerived && d.Formula != nil {
		return "formula is only allowed on derived domains"
	}
	return ""
}

func validateFormula(f Formula, declared map[string]bool) string {
	switch f.Op {
	case FormulaSum, FormulaDifference, FormulaProduct:
		if len(f.Args) < 2 {
			return fmt.Sprintf("%s needs at least 2 arguments, got %d", f.Op, len(f.Args))
		}
	case FormulaQuotient:
		if len(f.Args) != 2 {
			return fmt.Sprintf("quotient needs 2 arguments, got %d", len(f.Args))
		}
	case FormulaMulAdd:
		if len(f.Args) != 3 {
			return fmt.Sprintf("muladd needs 3 arguments, got %d", len(f.Args))
		}
	default:
		return fmt.Sprintf("unknown formula op %q", f.Op)
	}
	for _, a := range f.Args {
		if !declared[a] {
			return fmt.Sprintf("formula references undeclared or later variable %q", a)
		}
	}
	return ""
}

func validateConstraint(c Constraint, declared map[string]bool) string {
	for _, name := range c.Vars {
		if !declared[name] {
			return fmt.Sprintf("references undeclared variable %q", name)
		}
	}
	switch {
	case c.Op.IsComparison():
		if len(c.Vars) != 1 && len(c.Vars) != 2 {
			return fmt.Sprintf("comparison needs 1 or 2 variables, got %d", len(c.Vars))
		}
	case c.Op == OpCoprime, c.Op == OpDivides:
		if len(c.Vars) != 2 {
			return fmt.Sprintf("%s needs 2 variables, got %d", c.Op, len(c.Vars))
		}
	case c.Op == OpSumAtMost, c.Op == OpDistinct:
		if len(c.Vars) < 2 {
			return fmt.Sprintf("%s needs at least 2 variables, got %d", c.Op, len(c.Vars))
		}
	default:
		return fmt.Sprintf("unknown operator %q", c.Op)
	}
	return ""
}
