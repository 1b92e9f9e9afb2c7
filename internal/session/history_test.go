package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_MoveOnEmptyIsNoop(t *testing.T) {
	h := NewHistory(0)

	_, ok := h.Move(-1, "draft")
	assert.False(t, ok)
	_, ok = h.Move(1, "draft")
	assert.False(t, ok)
}

func TestHistory_MovePastFreshLineIsNoop(t *testing.T) {
	h := NewHistory(0)
	h.Append("continue")

	_, ok := h.Move(1, "")
	assert.False(t, ok, "cursor already at fresh line")
}

func TestHistory_MoveBelowZeroIsNoop(t *testing.T) {
	h := NewHistory(0)
	h.Append("continue")

	text, ok := h.Move(-1, "")
	require.True(t, ok)
	assert.Equal(t, "continue", text)

	_, ok = h.Move(-1, "")
	assert.False(t, ok, "cannot move above the oldest entry")
}

func TestHistory_RoundTripRestoresDraft(t *testing.T) {
	h := NewHistory(0)
	h.Append("continue")
	h.Append("info")

	// Navigate up twice from an in-progress edit...
	text, ok := h.Move(-1, "half-typed")
	require.True(t, ok)
	assert.Equal(t, "info", text)

	text, ok = h.Move(-1, text)
	require.True(t, ok)
	assert.Equal(t, "continue", text)

	// ...and back down twice: the draft comes back exactly.
	text, ok = h.Move(1, text)
	require.True(t, ok)
	assert.Equal(t, "info", text)

	text, ok = h.Move(1, text)
	require.True(t, ok)
	assert.Equal(t, "half-typed", text)
}

func TestHistory_AppendResetsCursorAndScratch(t *testing.T) {
	h := NewHistory(0)
	h.Append("continue")

	_, ok := h.Move(-1, "draft")
	require.True(t, ok)

	h.Append("exit")
	assert.Equal(t, 2, h.Len())

	// Cursor is back at the fresh line: up yields the newest entry.
	text, ok := h.Move(-1, "")
	require.True(t, ok)
	assert.Equal(t, "exit", text)

	// Scratch was cleared by submission.
	text, ok = h.Move(1, text)
	require.True(t, ok)
	assert.Equal(t, "", text)
}

func TestHistory_LimitDropsOldest(t *testing.T) {
	h := NewHistory(2)
	h.Append("a")
	h.Append("b")
	h.Append("c")

	assert.Equal(t, 2, h.Len())
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, "c", last)

	text, ok := h.Move(-1, "")
	require.True(t, ok)
	assert.Equal(t, "c", text)
	text, ok = h.Move(-1, text)
	require.True(t, ok)
	assert.Equal(t, "b", text)
}
