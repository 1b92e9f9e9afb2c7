// Package mux merges terminal input, a periodic tick, and the traced
// child's stdout lines into a single ordered event stream for the
// session loop.
package mux

// Key identifies a decoded terminal key.
type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyBackspace
	KeyCtrlC
	KeyCtrlD
)

// KeyEvent is one decoded keystroke. Rune is set only for KeyRune.
type KeyEvent struct {
	Key  Key
	Rune rune
}

// Source names an event source for error reporting.
type Source int

const (
	SourceInput Source = iota
	SourceChildOutput
)

func (s Source) String() string {
	if s == SourceInput {
		return "terminal input"
	}
	return "child output"
}

// Event is the tagged union delivered to the session loop, consumed
// exactly once in emission order.
type Event interface {
	isEvent()
}

// Input carries a terminal keystroke.
type Input struct {
	Key KeyEvent
}

// Tick fires at the configured interval for periodic UI refresh.
type Tick struct{}

// OutputLine is one line read from the traced child's stdout.
type OutputLine struct {
	Text string
}

// SourceError reports a failed source; the source is removed from the
// poll set after this event.
type SourceError struct {
	Source Source
	Err    error
}

func (Input) isEvent()       {}
func (Tick) isEvent()        {}
func (OutputLine) isEvent()  {}
func (SourceError) isEvent() {}

// InputSource is a blocking stream of decoded keystrokes, implemented by
// the terminal front-end.
type InputSource interface {
	ReadKey() (KeyEvent, error)
}
