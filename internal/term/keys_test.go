package term

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/sdbg/internal/mux"
)

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestDecodeKey(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  mux.KeyEvent
	}{
		{"enter CR", "\r", mux.KeyEvent{Key: mux.KeyEnter}},
		{"enter LF", "\n", mux.KeyEvent{Key: mux.KeyEnter}},
		{"ctrl-d", "\x04", mux.KeyEvent{Key: mux.KeyCtrlD}},
		{"ctrl-c", "\x03", mux.KeyEvent{Key: mux.KeyCtrlC}},
		{"backspace DEL", "\x7f", mux.KeyEvent{Key: mux.KeyBackspace}},
		{"backspace BS", "\x08", mux.KeyEvent{Key: mux.KeyBackspace}},
		{"up", "\x1b[A", mux.KeyEvent{Key: mux.KeyUp}},
		{"down", "\x1b[B", mux.KeyEvent{Key: mux.KeyDown}},
		{"right", "\x1b[C", mux.KeyEvent{Key: mux.KeyRight}},
		{"left", "\x1b[D", mux.KeyEvent{Key: mux.KeyLeft}},
		{"ascii rune", "x", mux.KeyEvent{Key: mux.KeyRune, Rune: 'x'}},
		{"utf8 rune", "é", mux.KeyEvent{Key: mux.KeyRune, Rune: 'é'}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeKey(reader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeKey_SkipsUnknownSequences(t *testing.T) {
	// Unhandled CSI (delete key), then a rune.
	got, err := decodeKey(reader("\x1b[3~a"))
	require.NoError(t, err)
	assert.Equal(t, mux.KeyEvent{Key: mux.KeyRune, Rune: 'a'}, got)

	// Stray control byte, then enter.
	got, err = decodeKey(reader("\x01\r"))
	require.NoError(t, err)
	assert.Equal(t, mux.KeyEvent{Key: mux.KeyEnter}, got)
}

func TestDecodeKey_EOF(t *testing.T) {
	_, err := decodeKey(reader(""))
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeKey_SequentialReads(t *testing.T) {
	r := reader("hi\r\x1b[A")
	expected := []mux.KeyEvent{
		{Key: mux.KeyRune, Rune: 'h'},
		{Key: mux.KeyRune, Rune: 'i'},
		{Key: mux.KeyEnter},
		{Key: mux.KeyUp},
	}
	for _, want := range expected {
		got, err := decodeKey(r)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestConsoleEditing(t *testing.T) {
	c := &Console{out: io.Discard}

	for _, r := range "helo" {
		c.Handle(mux.KeyEvent{Key: mux.KeyRune, Rune: r})
	}
	// Fix the typo: move left over "o", insert the missing "l".
	c.Handle(mux.KeyEvent{Key: mux.KeyLeft})
	c.Handle(mux.KeyEvent{Key: mux.KeyRune, Rune: 'l'})
	assert.Equal(t, "hello", c.Value())

	c.Handle(mux.KeyEvent{Key: mux.KeyRight})
	c.Handle(mux.KeyEvent{Key: mux.KeyBackspace})
	assert.Equal(t, "hell", c.Value())

	assert.Equal(t, "hell", c.TakeValue())
	assert.Equal(t, "", c.Value())

	c.SetValue("restored")
	assert.Equal(t, "restored", c.Value())
}
