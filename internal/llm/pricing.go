package llm

import (
	"regexp"
	"strings"
)

// ModelCost holds per-million-token pricing for a model, in USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

var dateSuffix = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2})$`)

// LookupCost returns the pricing for a model, or nil if unknown.
// It accepts the friendly names from the provider config, OpenRouter
// "vendor/model" IDs and dated snapshots of a listed model.
func LookupCost(modelID string) *ModelCost {
	id := strings.TrimSpace(modelID)
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	for _, aliases := range []map[string]string{anthropicModels, openaiModels, geminiModels} {
		if full, ok := aliases[id]; ok {
			id = full
			break
		}
	}
	if c, ok := modelCosts[id]; ok {
		return &c
	}
	if c, ok := modelCosts[dateSuffix.ReplaceAllString(id, "")]; ok {
		return &c
	}
	// OpenRouter spells minor versions with a dot.
	if c, ok := modelCosts[strings.ReplaceAll(id, ".", "-")]; ok {
		return &c
	}
	return nil
}

// modelCosts covers the models the answer synthesizer is configured with
// in practice. Source: models.dev, 2026-09.
var modelCosts = map[string]ModelCost{
	// Anthropic
	"claude-haiku-4-5":           {1, 5},
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-sonnet-4-5":          {3, 15},
	"claude-sonnet-4-5-20250929": {3, 15},
	"claude-opus-4-5":            {5, 25},
	"claude-opus-4-5-20251101":   {5, 25},
	"claude-3-5-haiku-20241022":  {0.8, 4},

	// OpenAI
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o4-mini":      {1.1, 4.4},

	// Google
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}
