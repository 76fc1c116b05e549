package llm

import (
	"context"
	"encoding/json"
)

// Provider turns a single-turn prompt into validated JSON.
type Provider interface {
	// Generate sends req to the model. When req.Schema is set the provider
	// asks for structured output natively and Content is the validated
	// object. A truncated response is an *ErrMaxTokensExceeded, never a
	// partial Content.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the resolved model identifier.
	ModelID() string
}

// Request is one system prompt plus one user prompt. Answer synthesis never
// needs a conversation history.
type Request struct {
	System string
	Prompt string

	// Schema constrains the response. Nil means free text.
	Schema *Schema

	MaxTokens int
	// Temperature in [0, 1]; zero leaves the provider default.
	Temperature float64
}

// Schema is a named JSON Schema. Name doubles as the Anthropic tool name
// and the OpenAI schema name, so it must be kebab-case ("paes-answer").
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a completed generation.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	// Model is the model that served the request, which may differ from
	// ModelID behind a router.
	Model string
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }
