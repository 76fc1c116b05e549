package synth

import "github.com/abhisek/qgen/internal/llm"

// AnswerSchema defines the JSON schema for synthesized answer bundles.
var AnswerSchema = &llm.Schema{
	Name:        "paes-answer",
	Description: "Multiple-choice alternatives, the correct one and a worked solution for a PAES math question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "The alternatives in plain text, one of which is correct",
			},
			"options_latex": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "The same alternatives in LaTeX, in the same order",
			},
			"correct_index": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Zero-based index of the correct alternative",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Step-by-step solution in Spanish, plain text",
			},
			"explanation_latex": map[string]any{
				"type":        "string",
				"description": "The same solution with LaTeX math",
			},
		},
		"required":             []any{"options", "options_latex", "correct_index", "explanation", "explanation_latex"},
		"additionalProperties": false,
	},
}
