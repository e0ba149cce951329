package decision

import (
	"errors"
	"fmt"
	"strings"
)

// Verdict values a decision must carry. Anything else fails validation.
const (
	VerdictYes         = "YES"
	VerdictNo          = "NO"
	VerdictConditional = "CONDITIONAL"
)

// ErrInvalidVerdict is returned when the verdict field is not one of
// the three allowed literals.
var ErrInvalidVerdict = errors.New("verdict must be YES, NO or CONDITIONAL")

// SchemaHint is the wire-contract example embedded in decision prompts.
const SchemaHint = `{"verdict":"YES|NO|CONDITIONAL","rationale":"...","citations":["AC-5.1","AC-2.2"]}`

// Decision is a validated compliance verdict grounded in retrieved SOP text.
type Decision struct {
	Verdict   string   `json:"verdict"`
	Rationale string   `json:"rationale"`
	Citations []string `json:"citations"`
}

// Parse validates a candidate object against the decision schema.
// Citations that are empty or whitespace-only are dropped; non-string
// citation entries are skipped. The pipeline itself does not call this:
// it is for callers that enforce the schema before display or storage.
func Parse(candidate map[string]any) (*Decision, error) {
	if candidate == nil {
		return nil, errors.New("candidate decision is nil")
	}

	verdict, ok := candidate["verdict"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing verdict", ErrInvalidVerdict)
	}
	switch verdict {
	case VerdictYes, VerdictNo, VerdictConditional:
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidVerdict, verdict)
	}

	rationale, ok := candidate["rationale"].(string)
	if !ok {
		return nil, errors.New("rationale must be a string")
	}

	var citations []string
	if raw, ok := candidate["citations"].([]any); ok {
		for _, entry := range raw {
			s, ok := entry.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				citations = append(citations, s)
			}
		}
	}

	return &Decision{
		Verdict:   verdict,
		Rationale: rationale,
		Citations: citations,
	}, nil
}
