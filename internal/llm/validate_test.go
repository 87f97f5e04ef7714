package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func itemSchema() *Schema {
	return &Schema{
		Name:        "validate-work-item",
		Description: "A generated practice problem",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"statement":  map[string]any{"type": "string"},
				"difficulty": map[string]any{"type": "integer", "minimum": 1, "maximum": 4},
				"complexity": map[string]any{"type": "string", "enum": []any{"O(1)", "O(log n)", "O(n)", "O(n log n)", "O(n²)"}},
			},
			"required": []any{"statement", "difficulty"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"statement":"Compute 3^40 mod 7","difficulty":2,"complexity":"O(log n)"}`, false},
		{"optional omitted", `{"statement":"Sum 1..n","difficulty":1}`, false},
		{"missing required", `{"statement":"Sum 1..n"}`, true},
		{"wrong type", `{"statement":"Sum 1..n","difficulty":"two"}`, true},
		{"out of range", `{"statement":"Sum 1..n","difficulty":5}`, true},
		{"invalid enum", `{"statement":"Sort","difficulty":2,"complexity":"O(n!)"}`, true},
		{"malformed", `{not json}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(itemSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
		})
	}
}

func TestValidateResponse_EmptyResponse(t *testing.T) {
	if err := Validate(itemSchema(), json.RawMessage(``)); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := Validate(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_NestedObjects(t *testing.T) {
	schema := &Schema{
		Name: "validate-batch",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"topic": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{"type": "string"},
					},
					"required": []any{"id"},
				},
				"difficulties": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer"},
				},
			},
			"required": []any{"topic", "difficulties"},
		},
	}

	valid := json.RawMessage(`{"topic":{"id":"arithmetic"},"difficulties":[1,2,2]}`)
	if err := Validate(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"topic":{"id":"arithmetic"},"difficulties":["easy"]}`)
	if err := Validate(schema, invalid); err == nil {
		t.Fatal("expected error for wrong array item type")
	}
}
