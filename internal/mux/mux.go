package mux

import (
	"bufio"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const defaultTickInterval = 250 * time.Millisecond

// Option configures a Multiplexer.
type Option func(*Multiplexer)

// WithTickInterval overrides the default 250ms tick.
func WithTickInterval(d time.Duration) Option {
	return func(m *Multiplexer) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// Multiplexer fans three sources into one delivery channel. Whichever
// source becomes ready first produces exactly one event; an exhausted or
// failed source is removed from the poll set without ending the loop.
type Multiplexer struct {
	clk          clock.Clock
	tickInterval time.Duration
	childOut     io.ReadCloser

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// New starts the multiplexer over the given sources. childOut may be nil
// when no spawned child exists; src must not be nil.
func New(src InputSource, clk clock.Clock, childOut io.ReadCloser, opts ...Option) *Multiplexer {
	if clk == nil {
		clk = clock.New()
	}
	m := &Multiplexer{
		clk:          clk,
		tickInterval: defaultTickInterval,
		childOut:     childOut,
		events:       make(chan Event, 16),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	inputCh := make(chan KeyEvent)
	inputErr := make(chan error, 1)
	go m.pumpInput(src, inputCh, inputErr)

	var (
		lineCh  chan string
		lineErr chan error
	)
	if childOut != nil {
		lineCh = make(chan string)
		lineErr = make(chan error, 1)
		go m.pumpLines(childOut, lineCh, lineErr)
	}

	go m.merge(inputCh, inputErr, lineCh, lineErr)
	return m
}

// Events is the single ordered delivery channel.
func (m *Multiplexer) Events() <-chan Event {
	return m.events
}

// Close stops the merge loop and releases the child-output reader. It
// does not drain pending events.
func (m *Multiplexer) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		if m.childOut != nil {
			m.childOut.Close()
		}
	})
}

func (m *Multiplexer) pumpInput(src InputSource, keys chan<- KeyEvent, errs chan<- error) {
	for {
		k, err := src.ReadKey()
		if err != nil {
			select {
			case errs <- err:
			case <-m.done:
			}
			return
		}
		select {
		case keys <- k:
		case <-m.done:
			return
		}
	}
}

func (m *Multiplexer) pumpLines(r io.Reader, lines chan<- string, errs chan<- error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-m.done:
			return
		}
	}
	if err := sc.Err(); err != nil {
		select {
		case errs <- err:
		case <-m.done:
			return
		}
	}
	close(lines)
}

func (m *Multiplexer) merge(inputCh chan KeyEvent, inputErr chan error, lineCh chan string, lineErr chan error) {
	ticker := m.clk.Ticker(m.tickInterval)
	defer ticker.Stop()
	// Closing the delivery channel lets the consumer's range end when
	// the multiplexer shuts down.
	defer close(m.events)

	for {
		select {
		case <-m.done:
			return

		case <-ticker.C:
			if !m.emit(Tick{}) {
				return
			}

		case k := <-inputCh:
			if !m.emit(Input{Key: k}) {
				return
			}

		case err := <-inputErr:
			// A dead input source is unrecoverable for the session;
			// the loop keeps running for the remaining sources.
			if !m.emit(SourceError{Source: SourceInput, Err: err}) {
				return
			}
			inputCh, inputErr = nil, nil

		case line, ok := <-lineCh:
			if !ok {
				// End of stream: the pump sends any error before
				// closing, so check it once and drop the source.
				select {
				case err := <-lineErr:
					if !m.emit(SourceError{Source: SourceChildOutput, Err: err}) {
						return
					}
				default:
				}
				lineCh, lineErr = nil, nil
				continue
			}
			if !m.emit(OutputLine{Text: line}) {
				return
			}
		}
	}
}

func (m *Multiplexer) emit(ev Event) bool {
	select {
	case m.events <- ev:
		return true
	case <-m.done:
		return false
	}
}
