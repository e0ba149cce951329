package session

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the conversation history.
type Turn struct {
	Role    Role
	Content string
}

// History is the append-only conversation log for a session. It lives
// only as long as the session and is never persisted.
type History struct {
	turns []Turn
}

func New() *History {
	return &History{}
}

func (h *History) Append(role Role, content string) {
	h.turns = append(h.turns, Turn{Role: role, Content: content})
}

// Turns returns a copy of the log so callers cannot mutate it.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int {
	return len(h.turns)
}
