package decision

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{
			name: "plain valid JSON",
			in:   `{"verdict":"YES","rationale":"ok","citations":["AC-1.1"]}`,
			want: map[string]any{"verdict": "YES", "rationale": "ok", "citations": []any{"AC-1.1"}},
		},
		{
			name: "fenced with json tag",
			in:   "```json\n{\"verdict\":\"YES\",\"rationale\":\"ok\",\"citations\":[\"AC-1.1\"]}\n```",
			want: map[string]any{"verdict": "YES", "rationale": "ok", "citations": []any{"AC-1.1"}},
		},
		{
			name: "fenced with uppercase tag",
			in:   "```JSON\n{\"verdict\":\"NO\"}\n```",
			want: map[string]any{"verdict": "NO"},
		},
		{
			name: "fenced without tag",
			in:   "```\n{\"verdict\":\"NO\"}\n```",
			want: map[string]any{"verdict": "NO"},
		},
		{
			name: "object surrounded by prose",
			in:   `Here is my assessment: {"verdict":"CONDITIONAL","rationale":"gap"} hope that helps!`,
			want: map[string]any{"verdict": "CONDITIONAL", "rationale": "gap"},
		},
		{
			name: "leading and trailing whitespace",
			in:   "  \n {\"verdict\":\"YES\"} \n ",
			want: map[string]any{"verdict": "YES"},
		},
		{
			name: "nested object",
			in:   `{"a":{"b":1}}`,
			want: map[string]any{"a": map[string]any{"b": float64(1)}},
		},
		{
			name: "garbage without braces",
			in:   "I cannot answer that question.",
			want: nil,
		},
		{
			name: "empty string",
			in:   "",
			want: nil,
		},
		{
			name: "braces in wrong order",
			in:   "} not json {",
			want: nil,
		},
		{
			name: "malformed object",
			in:   `{"verdict": YES}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

// Whatever parses with encoding/json must come back unchanged from
// ExtractJSON.
func TestExtractJSON_MatchesPlainUnmarshal(t *testing.T) {
	inputs := []string{
		`{"a":1,"b":[true,null],"c":"x"}`,
		`{}`,
		`{"nested":{"deep":{"deeper":"value"}}}`,
	}
	for _, in := range inputs {
		var want map[string]any
		require.NoError(t, json.Unmarshal([]byte(in), &want))
		assert.Equal(t, want, ExtractJSON(in), "input: %s", in)
	}
}

func TestExtractJSON_FenceEquivalence(t *testing.T) {
	body := `{"verdict":"YES","rationale":"ok","citations":["AC-1.1"]}`
	fenced := "```json\n" + body + "\n```"
	assert.Equal(t, ExtractJSON(body), ExtractJSON(fenced))
}
