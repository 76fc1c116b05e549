package synth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/qgen"
)

// Purpose labels synthesis calls in the request log.
const Purpose = "answer-synthesis"

// LLMSynthesizer implements qgen.AnswerSynthesizer using an LLM provider.
type LLMSynthesizer struct {
	provider llm.Provider
	config   Config
}

var _ qgen.AnswerSynthesizer = (*LLMSynthesizer)(nil)

// New creates a new LLMSynthesizer with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMSynthesizer {
	return &LLMSynthesizer{provider: provider, config: cfg}
}

// answerOutput is the raw LLM response before validation.
type answerOutput struct {
	Options          []string `json:"options"`
	OptionsLaTeX     []string `json:"options_latex"`
	CorrectIndex     int      `json:"correct_index"`
	Explanation      string   `json:"explanation"`
	ExplanationLaTeX string   `json:"explanation_latex"`
}

// Synthesize produces the alternatives and solution for one question.
func (s *LLMSynthesizer) Synthesize(ctx context.Context, req qgen.SynthesisRequest) (*qgen.AnswerBundle, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemMessage(s.config),
		Prompt:      buildUserMessage(req),
		Schema:      AnswerSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM synthesis failed: %w", err)
	}

	var raw answerOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	b := &qgen.AnswerBundle{
		Options:          raw.Options,
		OptionsLaTeX:     raw.OptionsLaTeX,
		CorrectAnswer:    raw.CorrectIndex,
		Explanation:      raw.Explanation,
		ExplanationLaTeX: raw.ExplanationLaTeX,
	}

	for _, v := range s.config.Validators {
		if verr := v.Validate(b, req, s.config); verr != nil {
			return nil, verr
		}
	}

	return b, nil
}
