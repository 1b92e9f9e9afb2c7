// Package session drives the interactive loop: it consumes multiplexed
// events, owns the command history, and hands submitted text to the
// command language.
package session

// History is an append-only log of submitted commands plus a cursor over
// it. Cursor position len(entries) means "editing a fresh line"; the
// scratch buffer preserves the in-progress edit while navigating and is
// only meaningful below that position.
type History struct {
	entries []string
	cursor  int
	scratch string
	limit   int
}

// NewHistory returns an empty history. limit bounds the number of kept
// entries; zero means unlimited.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Append records a submitted command, resets the cursor to the fresh-line
// position, and clears the scratch buffer.
func (h *History) Append(entry string) {
	h.entries = append(h.entries, entry)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.cursor = len(h.entries)
	h.scratch = ""
}

// Last returns the most recently submitted command.
func (h *History) Last() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[len(h.entries)-1], true
}

// Len reports the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Move steps the cursor by delta (-1 older, +1 newer) and returns the
// text the edit buffer should show. It is a no-op when history is empty
// or the step would leave the valid range. Leaving the fresh-line
// position captures current into the scratch buffer; landing back on it
// restores the scratch buffer.
func (h *History) Move(delta int, current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	target := h.cursor + delta
	if target < 0 || target > len(h.entries) {
		return "", false
	}
	if target == h.cursor {
		return "", false
	}

	var text string
	if target == len(h.entries) {
		text = h.scratch
	} else {
		if h.cursor == len(h.entries) {
			h.scratch = current
		}
		text = h.entries[target]
	}
	h.cursor = target
	return text, true
}
