package node

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"bare array", `[1, 2]`, `[1, 2]`},
		{"leading text", `Sure, here you go: {"a": 1}`, `{"a": 1}`},
		{"trailing text", `{"a": 1} hope that helps`, `{"a": 1}`},
		{"markdown fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"whitespace", "  \n {\"a\": 1} \n ", `{"a": 1}`},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSONObject(tt.input)
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONObjectNestedBraces(t *testing.T) {
	input := `prefix {"outer": {"inner": "value"}} suffix`
	got := ExtractJSONObject(input)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("extracted text is not valid json: %v", err)
	}
	outer, ok := parsed["outer"].(map[string]any)
	if !ok || outer["inner"] != "value" {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestExtractJSONObjectNonJSON(t *testing.T) {
	input := "no structured output here"
	if got := ExtractJSONObject(input); got != input {
		t.Fatalf("non-json input should round-trip, got %q", got)
	}
}
