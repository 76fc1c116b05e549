package qgen

import (
	"github.com/abhisek/qgen/internal/library"
)

// Render turns a bound value into the text substituted for its token.
type Render func(Value) string

// Plain and LaTeX are the two renderings used when filling templates.
var (
	Plain Render = Value.String
	LaTeX Render = Value.LaTeX
)

// Fill replaces every {name} token in text with the rendered value bound
// to name. Tokens with no binding are reported together in an
// UnresolvedPlaceholderError; a partially filled string is never returned.
func Fill(text string, values Assignment, render Render) (string, error) {
	var missing []string
	seen := make(map[string]bool)
	out := library.ReplacePlaceholders(text, func(name string) (string, bool) {
		v, ok := values[name]
		if !ok {
			if !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
			return "", false
		}
		return render(v), true
	})
	if len(missing) > 0 {
		return "", &UnresolvedPlaceholderError{Placeholders: missing}
	}
	return out, nil
}

// FillTemplate fills both renderings of t from the same assignment. The
// LaTeX result is empty when the template has none.
func FillTemplate(t library.Template, values Assignment) (text, latex string, err error) {
	text, err = Fill(t.Text, values, Plain)
	if err != nil {
		return "", "", withTemplateID(err, t.ID)
	}
	if t.LaTeX != "" {
		latex, err = Fill(t.LaTeX, values, LaTeX)
		if err != nil {
			return "", "", withTemplateID(err, t.ID)
		}
	}
	return text, latex, nil
}

func withTemplateID(err error, id string) error {
	if u, ok := err.(*UnresolvedPlaceholderError); ok {
		u.TemplateID = id
	}
	return err
}
