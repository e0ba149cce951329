package helper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"sop-agent/internal/models"
)

// maxPreviewChars caps how much chunk content is shown per source.
const maxPreviewChars = 650

// PrettyJSON renders a value as indented JSON for display.
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Error pretty printing")
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// FormatChunk renders one retrieved source chunk for display:
// page label, score to 3 decimals (or "0" when absent), a truncated
// content preview, and the source file name.
func FormatChunk(i int, chunk models.RetrievedChunk) string {
	page := chunk.PageLabel
	if page == "" {
		page = "N/A"
	}
	score := "0"
	if chunk.Score != 0 {
		score = fmt.Sprintf("%.3f", chunk.Score)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d. Page %s — Score: %s\n", i, page, score)
	b.WriteString(Truncate(chunk.Content, maxPreviewChars))
	if chunk.SourceFile != "" {
		fmt.Fprintf(&b, "\nFile: %s", chunk.SourceFile)
	}
	return b.String()
}

// Truncate cuts s to max characters with an ellipsis.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
