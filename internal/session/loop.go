package session

import (
	"fmt"
	"io"
	"strings"

	"github.com/vburojevic/sdbg/internal/mux"
)

// Console is the presentation boundary: the session tells it what to
// show and it owns line editing, layout, and styling.
type Console interface {
	// Value returns the current edit buffer.
	Value() string
	// SetValue replaces the edit buffer, cursor at end of text.
	SetValue(s string)
	// TakeValue returns the edit buffer and clears it.
	TakeValue() string
	// Handle forwards a key the session does not interpret to the line
	// editor.
	Handle(k mux.KeyEvent)
	// Print writes one line of output above the prompt.
	Print(line string)
	// EchoCommand echoes a submitted command.
	EchoCommand(cmd string)
	// PrintError writes one error line above the prompt.
	PrintError(msg string)
	// Redraw refreshes the prompt line.
	Redraw()
}

// Runner executes one submitted command string. The boolean reports
// whether the session should continue.
type Runner interface {
	Run(input string, out io.Writer) (bool, error)
}

// Loop is the interactive session state machine.
type Loop struct {
	events  <-chan mux.Event
	console Console
	history *History
	runner  Runner
}

// New builds a session loop over an event stream.
func New(events <-chan mux.Event, console Console, runner Runner, history *History) *Loop {
	if history == nil {
		history = NewHistory(0)
	}
	return &Loop{
		events:  events,
		console: console,
		history: history,
		runner:  runner,
	}
}

// History exposes the session's history, mainly for tests.
func (l *Loop) History() *History {
	return l.history
}

// Run consumes events until the session ends: on `exit`, on Ctrl-D, or
// with an error when the terminal input source dies. Engine and parse
// failures are printed and leave the session open.
func (l *Loop) Run() error {
	for ev := range l.events {
		switch ev := ev.(type) {
		case mux.Tick:
			// Reserved for periodic refresh.
			l.console.Redraw()

		case mux.OutputLine:
			l.console.Print(ev.Text)

		case mux.SourceError:
			if ev.Source == mux.SourceInput {
				return fmt.Errorf("terminal input failed: %w", ev.Err)
			}
			l.console.PrintError(fmt.Sprintf("%s failed: %v", ev.Source, ev.Err))

		case mux.Input:
			switch ev.Key.Key {
			case mux.KeyEnter:
				if cont := l.submit(); !cont {
					return nil
				}
			case mux.KeyCtrlD:
				return nil
			case mux.KeyUp:
				l.navigate(-1)
			case mux.KeyDown:
				l.navigate(1)
			default:
				l.console.Handle(ev.Key)
			}
		}
	}
	return nil
}

func (l *Loop) navigate(delta int) {
	if text, ok := l.history.Move(delta, l.console.Value()); ok {
		l.console.SetValue(text)
	}
}

// submit runs the current edit buffer. An empty buffer re-uses the last
// submitted command when one exists (and still records a history entry),
// otherwise it is a no-op.
func (l *Loop) submit() bool {
	text := l.console.TakeValue()
	if text == "" {
		last, ok := l.history.Last()
		if !ok {
			return true
		}
		text = last
	}

	l.history.Append(text)
	l.console.EchoCommand(text)

	w := newLineWriter(l.console)
	cont, err := l.runner.Run(text, w)
	w.Flush()
	if err != nil {
		l.console.PrintError(err.Error())
	}
	return cont
}

// lineWriter adapts the Console's line-oriented Print to io.Writer,
// buffering partial lines between writes.
type lineWriter struct {
	console Console
	buf     strings.Builder
}

func newLineWriter(c Console) *lineWriter {
	return &lineWriter{console: c}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	content := w.buf.String()
	for {
		i := strings.IndexByte(content, '\n')
		if i < 0 {
			break
		}
		w.console.Print(content[:i])
		content = content[i+1:]
	}
	w.buf.Reset()
	w.buf.WriteString(content)
	return len(p), nil
}

func (w *lineWriter) Flush() {
	if w.buf.Len() > 0 {
		w.console.Print(w.buf.String())
		w.buf.Reset()
	}
}
