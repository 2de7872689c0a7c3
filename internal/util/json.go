package util

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON object out of free-form model output. Real model
// text is frequently wrapped in prose or markdown code fences, so parsing
// falls back in three stages: strip fences and parse directly, then parse
// the substring between the first '{' and the last '}', then give up.
// It never returns an error; nil means "could not extract".
func ExtractJSON(text string) map[string]interface{} {
	cleaned := stripCodeFences(text)

	if obj := tryParse(cleaned); obj != nil {
		return obj
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if obj := tryParse(cleaned[start : end+1]); obj != nil {
			return obj
		}
	}

	return nil
}

func tryParse(text string) map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &obj); err != nil {
		return nil
	}
	return obj
}

// stripCodeFences removes markdown fence lines (``` and ```json) while
// keeping everything between them.
func stripCodeFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
