package helper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sop-agent/internal/models"
)

func TestFormatChunk(t *testing.T) {
	chunk := models.RetrievedChunk{
		Content:    "AC-2.2 VPN access for contractors is limited to 30 days.",
		SourceFile: "sop.pdf",
		PageLabel:  "3",
		Score:      0.8123,
	}
	out := FormatChunk(1, chunk)
	assert.Contains(t, out, "1. Page 3")
	assert.Contains(t, out, "Score: 0.812")
	assert.Contains(t, out, "AC-2.2 VPN access")
	assert.Contains(t, out, "File: sop.pdf")
}

func TestFormatChunk_MissingMetadata(t *testing.T) {
	out := FormatChunk(2, models.RetrievedChunk{Content: "text"})
	assert.Contains(t, out, "Page N/A")
	assert.Contains(t, out, "Score: 0")
	assert.NotContains(t, out, "File:")
}

func TestFormatChunk_TruncatesLongContent(t *testing.T) {
	chunk := models.RetrievedChunk{Content: strings.Repeat("x", 700), PageLabel: "1"}
	out := FormatChunk(1, chunk)
	assert.Contains(t, out, strings.Repeat("x", 650)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 651))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
}

func TestPrettyJSON(t *testing.T) {
	out := PrettyJSON(map[string]any{"verdict": "YES"})
	assert.Contains(t, out, `"verdict": "YES"`)
}
