// Package term is the terminal front-end: a raw-mode inline console with
// a one-line prompt and scrollback printed above it. It implements both
// the session's Console and the multiplexer's InputSource. Everything
// here is presentation; the core never depends on how lines are drawn.
package term

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/vburojevic/sdbg/internal/mux"
)

// ErrNotATerminal is returned when stdin cannot host an interactive
// session.
var ErrNotATerminal = errors.New("stdin is not a terminal")

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	inputStyle  = lipgloss.NewStyle().Bold(true)
	echoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Console owns the terminal: raw mode, key reads, and the prompt line.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	prompt   string
	oldState *term.State
	fd       int

	buf    []rune
	cursor int
}

// Open puts the terminal into raw mode. The caller must Close to restore
// it, even on error paths.
func Open(prompt string) (*Console, error) {
	fd := int(os.Stdin.Fd())
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return nil, ErrNotATerminal
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	c := &Console{
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		prompt:   prompt,
		oldState: oldState,
		fd:       fd,
	}
	c.Redraw()
	return c, nil
}

// Close restores the terminal state.
func (c *Console) Close() {
	fmt.Fprint(c.out, "\r\x1b[2K")
	if c.oldState != nil {
		_ = term.Restore(c.fd, c.oldState)
	}
}

// ReadKey blocks for the next keystroke. Implements mux.InputSource.
func (c *Console) ReadKey() (mux.KeyEvent, error) {
	return decodeKey(c.in)
}

func (c *Console) Value() string { return string(c.buf) }

func (c *Console) SetValue(s string) {
	c.buf = []rune(s)
	c.cursor = len(c.buf)
	c.Redraw()
}

func (c *Console) TakeValue() string {
	v := string(c.buf)
	c.buf = c.buf[:0]
	c.cursor = 0
	return v
}

// Handle applies a line-editing key to the buffer.
func (c *Console) Handle(k mux.KeyEvent) {
	switch k.Key {
	case mux.KeyRune:
		c.buf = append(c.buf[:c.cursor], append([]rune{k.Rune}, c.buf[c.cursor:]...)...)
		c.cursor++
	case mux.KeyBackspace:
		if c.cursor > 0 {
			c.buf = append(c.buf[:c.cursor-1], c.buf[c.cursor:]...)
			c.cursor--
		}
	case mux.KeyLeft:
		if c.cursor > 0 {
			c.cursor--
		}
	case mux.KeyRight:
		if c.cursor < len(c.buf) {
			c.cursor++
		}
	default:
		return
	}
	c.Redraw()
}

// Print writes one line into the scrollback above the prompt.
func (c *Console) Print(line string) {
	fmt.Fprintf(c.out, "\r\x1b[2K%s\r\n", line)
	c.Redraw()
}

// EchoCommand echoes a submitted command the way the prompt showed it.
func (c *Console) EchoCommand(cmd string) {
	c.Print(promptStyle.Render(c.prompt) + echoStyle.Render(cmd))
}

// PrintError writes one error line into the scrollback.
func (c *Console) PrintError(msg string) {
	c.Print(errorStyle.Render(msg))
}

// Redraw repaints the prompt line and positions the cursor.
func (c *Console) Redraw() {
	fmt.Fprintf(c.out, "\r\x1b[2K%s%s",
		promptStyle.Render(c.prompt),
		inputStyle.Render(string(c.buf)))
	if back := len(c.buf) - c.cursor; back > 0 {
		fmt.Fprintf(c.out, "\x1b[%dD", back)
	}
}
