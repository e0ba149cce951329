package decision

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON object out of a model response. Completion
// output does not reliably follow formatting instructions, so this
// optimizes for recovery over strictness:
//   - strips ```json ... ``` or ``` ... ``` fences
//   - tries the first {...} block
//   - falls back to parsing the whole string
//
// Returns nil if nothing parses. Never panics.
func ExtractJSON(text string) map[string]any {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}

	if strings.HasPrefix(t, "```") {
		// remove all backticks and a leading 'json' tag if any
		t = strings.Trim(t, "`")
		if strings.HasPrefix(strings.ToLower(t), "json") {
			t = strings.TrimSpace(t[4:])
		}
	}

	// try the first {...} block
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start != -1 && end > start {
		if obj := tryParse(t[start : end+1]); obj != nil {
			return obj
		}
	}

	// final attempt
	return tryParse(t)
}

func tryParse(s string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil
	}
	return obj
}
