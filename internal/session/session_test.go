package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_AppendOrder(t *testing.T) {
	h := New()
	assert.Zero(t, h.Len())

	h.Append(RoleUser, "Can a contractor get VPN access for 90 days?")
	h.Append(RoleAssistant, `{"verdict":"CONDITIONAL"}`)

	turns := h.Turns()
	assert.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, RoleAssistant, turns[1].Role)
}

func TestHistory_TurnsReturnsCopy(t *testing.T) {
	h := New()
	h.Append(RoleUser, "original")

	turns := h.Turns()
	turns[0].Content = "mutated"

	assert.Equal(t, "original", h.Turns()[0].Content)
}
