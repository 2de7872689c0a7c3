package util

import "testing"

func TestExtractJSON_DirectObject(t *testing.T) {
	obj := ExtractJSON(`{"summary": "ok", "count": 3}`)
	if obj == nil {
		t.Fatal("expected object")
	}
	if obj["summary"] != "ok" {
		t.Errorf("summary = %v", obj["summary"])
	}
}

func TestExtractJSON_CodeFenced(t *testing.T) {
	text := "```json\n{\"summary\": \"fenced\"}\n```"
	obj := ExtractJSON(text)
	if obj == nil {
		t.Fatal("expected object from fenced block")
	}
	if obj["summary"] != "fenced" {
		t.Errorf("summary = %v", obj["summary"])
	}
}

func TestExtractJSON_ProseWrapped(t *testing.T) {
	text := `Here is the analysis you asked for:

{"summary": "wrapped", "stats": {"total": 5}}

Let me know if you need anything else.`

	obj := ExtractJSON(text)
	if obj == nil {
		t.Fatal("expected object from prose-wrapped text")
	}
	if obj["summary"] != "wrapped" {
		t.Errorf("summary = %v", obj["summary"])
	}
	stats, ok := obj["stats"].(map[string]interface{})
	if !ok || stats["total"] != float64(5) {
		t.Errorf("stats = %v", obj["stats"])
	}
}

func TestExtractJSON_UnparseableReturnsNil(t *testing.T) {
	inputs := []string{
		"",
		"no json here",
		"{broken",
		"{ not: valid json }",
		"[1, 2, 3]", // an array is not the expected object shape
	}
	for _, in := range inputs {
		if obj := ExtractJSON(in); obj != nil {
			t.Errorf("ExtractJSON(%q) = %v, want nil", in, obj)
		}
	}
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	text := `noise {"summary": "has {braces} inside"} trailing`
	obj := ExtractJSON(text)
	if obj == nil {
		t.Fatal("expected object")
	}
	if obj["summary"] != "has {braces} inside" {
		t.Errorf("summary = %v", obj["summary"])
	}
}
