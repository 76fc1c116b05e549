package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-question-meta",
		Description: "Question metadata",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"level":  map[string]any{"type": "string", "enum": []any{"M1", "M2"}},
				"skills": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"index":  map[string]any{"type": "integer", "minimum": 0},
			},
			"required": []any{"level", "skills"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"level":"M1","skills":["suma-basica"],"index":2}`, false},
		{"optional omitted", `{"level":"M2","skills":[]}`, false},
		{"missing required", `{"level":"M1"}`, true},
		{"wrong type", `{"level":"M1","skills":"despeje"}`, true},
		{"enum", `{"level":"M3","skills":[]}`, true},
		{"below minimum", `{"level":"M1","skills":[],"index":-1}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateResponse(testSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
			}
			if string(invErr.Content) != tt.raw {
				t.Errorf("error should carry the raw content, got %q", invErr.Content)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	raw := json.RawMessage(`texto libre`)
	got, err := validateResponse(nil, raw)
	if err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
	if string(got) != string(raw) {
		t.Fatalf("content changed: %s", got)
	}
}

func TestValidateResponse_StripsCodeFence(t *testing.T) {
	tests := []string{
		"```json\n{\"level\":\"M1\",\"skills\":[]}\n```",
		"```\n{\"level\":\"M1\",\"skills\":[]}\n```",
		"  {\"level\":\"M1\",\"skills\":[]}\n",
	}
	for _, raw := range tests {
		got, err := validateResponse(testSchema(), json.RawMessage(raw))
		if err != nil {
			t.Fatalf("%q: %v", raw, err)
		}
		if string(got) != `{"level":"M1","skills":[]}` {
			t.Errorf("%q: got %s", raw, got)
		}
	}
}

func TestValidateResponse_UnterminatedFence(t *testing.T) {
	if _, err := validateResponse(testSchema(), json.RawMessage("```json")); err == nil {
		t.Fatal("expected error for a bare fence")
	}
}

func TestValidateResponse_NestedObjects(t *testing.T) {
	schema := &Schema{
		Name:        "test-nested",
		Description: "Nested test",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"context": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{"type": "string"},
					},
					"required": []any{"id"},
				},
				"values": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer"},
				},
			},
			"required": []any{"context", "values"},
		},
	}

	valid := json.RawMessage(`{"context":{"id":"feria-libre"},"values":[3,4,5]}`)
	if _, err := validateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"context":{"id":"feria-libre"},"values":["tres"]}`)
	if _, err := validateResponse(schema, invalid); err == nil {
		t.Fatal("expected error for wrong array item type")
	}
}
