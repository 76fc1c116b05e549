package qgen

import (
	"context"
	"time"

	"github.com/abhisek/qgen/internal/library"
)

// ContextRef identifies the scenario a question was written in.
type ContextRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TemplateRef identifies the template a question was filled from.
type TemplateRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GeneratedQuestion is one fully instantiated question. The answer fields
// are only set when an AnswerSynthesizer ran.
type GeneratedQuestion struct {
	ID            string           `json:"id"`
	Level         Level            `json:"level"`
	Subject       Subject          `json:"subject"`
	Topic         string           `json:"topic"`
	Question      string           `json:"question"`
	QuestionLaTeX string           `json:"questionLatex,omitempty"`
	Skills        library.SkillSet `json:"skills"`
	Difficulty    Difficulty       `json:"difficulty"`
	Context       ContextRef       `json:"context"`
	Template      TemplateRef      `json:"template"`
	Variables     Assignment       `json:"variables"`
	CreatedAt     time.Time        `json:"createdAt"`

	Options          []string `json:"options,omitempty"`
	OptionsLaTeX     []string `json:"optionsLatex,omitempty"`
	CorrectAnswer    *int     `json:"correctAnswer,omitempty"`
	Explanation      string   `json:"explanation,omitempty"`
	ExplanationLaTeX string   `json:"explanationLatex,omitempty"`
}

// HasAnswer reports whether answer fields were populated.
func (q *GeneratedQuestion) HasAnswer() bool {
	return q.CorrectAnswer != nil
}

// SynthesisRequest is what an AnswerSynthesizer gets for one question.
type SynthesisRequest struct {
	Question      string
	QuestionLaTeX string
	Context       string
	Variables     Assignment
	Skills        []string
	Difficulty    Difficulty
	Level         Level
	Subject       Subject
}

// AnswerBundle holds the multiple-choice options and explanation produced
// for a question. CorrectAnswer is an index into Options.
type AnswerBundle struct {
	Options          []string
	OptionsLaTeX     []string
	CorrectAnswer    int
	Explanation      string
	ExplanationLaTeX string
}

// AnswerSynthesizer authors answer options for a filled question. It is
// the only blocking collaborator of the service.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*AnswerBundle, error)
}

// AnswerSynthesizerFunc adapts a function to AnswerSynthesizer.
type AnswerSynthesizerFunc func(ctx context.Context, req SynthesisRequest) (*AnswerBundle, error)

func (f AnswerSynthesizerFunc) Synthesize(ctx context.Context, req SynthesisRequest) (*AnswerBundle, error) {
	return f(ctx, req)
}
