package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingLog struct {
	records []RequestRecord
	err     error
}

func (r *recordingLog) AppendLLMRequest(_ context.Context, rec RequestRecord) error {
	r.records = append(r.records, rec)
	return r.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"ok":true}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 4},
	})
	log := &recordingLog{}
	p := WithLogging(mock, log, nil)

	ctx := WithPurpose(context.Background(), "answer-synthesis")
	_, err := p.Generate(ctx, Request{
		System:   "eres un profesor",
		Prompt:   "resuelve",
		Schema:   &Schema{Name: "paes-answer", Definition: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(log.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(log.records))
	}
	rec := log.records[0]
	if !rec.Success || rec.Purpose != "answer-synthesis" || rec.Model != "mock" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.InputTokens != 12 || rec.OutputTokens != 4 {
		t.Errorf("tokens = %d/%d", rec.InputTokens, rec.OutputTokens)
	}
	for _, want := range []string{"[system]", "[user]", "resuelve", "[schema: paes-answer]"} {
		if !strings.Contains(rec.RequestBody, want) {
			t.Errorf("request body lacks %q:\n%s", want, rec.RequestBody)
		}
	}
	if rec.ResponseBody != `{"ok":true}` {
		t.Errorf("response body = %q", rec.ResponseBody)
	}
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})
	log := &recordingLog{}
	core, logs := observer.New(zap.WarnLevel)
	p := WithLogging(mock, log, zap.New(core))

	_, err := p.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %v", err)
	}
	if len(log.records) != 1 || log.records[0].Success || log.records[0].ErrorMessage == "" {
		t.Fatalf("unexpected records: %+v", log.records)
	}
	if log.records[0].Purpose != "unknown" {
		t.Errorf("purpose = %q", log.records[0].Purpose)
	}
	if logs.FilterMessage("llm request failed").Len() != 1 {
		t.Error("expected a warning for the failed request")
	}
}

func TestLoggingProvider_SinkErrorDoesNotFailRequest(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	core, logs := observer.New(zap.WarnLevel)
	p := WithLogging(mock, &recordingLog{err: errors.New("disk full")}, zap.New(core))

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.FilterMessage("failed to record llm request").Len() != 1 {
		t.Error("expected a warning for the sink failure")
	}
}

func TestLoggingProvider_NilSinks(t *testing.T) {
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		model   string
		wantErr bool
	}{
		{"mock", Config{Provider: "mock"}, "mock", false},
		{"openai", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk", Model: "gpt-4o"}}, "gpt-4o", false},
		{"openrouter", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "sk", Model: "x/y"}}, "x/y", false},
		{"anthropic", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk", Model: "claude-haiku"}}, "claude-haiku-4-5-20251001", false},
		{"openai without key", Config{Provider: "openai"}, "", true},
		{"unknown", Config{Provider: "llama"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(context.Background(), tt.cfg, nil, zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if p.ModelID() != tt.model {
				t.Errorf("ModelID = %q, want %q", p.ModelID(), tt.model)
			}
			_, retried := p.(*RetryProvider)
			if retried == (tt.cfg.Provider == "mock") {
				t.Errorf("%s: retry wrapping = %v", tt.name, retried)
			}
		})
	}
}

func TestNewProvider_MissingKeyNamesEnvVar(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "gemini"}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "QGEN_LLM_GEMINI_API_KEY") {
		t.Fatalf("expected error naming the env var, got %v", err)
	}
}
