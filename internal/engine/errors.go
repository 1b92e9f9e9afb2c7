package engine

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrUnknown covers failures that cannot be classified further.
var ErrUnknown = errors.New("unknown debugger error")

// ConversionError reports a process identifier that does not fit the
// OS's native signed pid type.
type ConversionError struct {
	Value uint64
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("pid %d out of range for native pid type", e.Value)
}

// OSError reports a failed tracing syscall, keyed by the underlying errno.
type OSError struct {
	Op    string
	Pid   int
	Errno syscall.Errno
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s pid %d: %s", e.Op, e.Pid, e.Errno.Error())
}

func (e *OSError) Unwrap() error { return e.Errno }

// IOError reports a process-launch failure.
type IOError struct {
	Program string
	Err     error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("launch %s: %s", e.Program, e.Err.Error())
}

func (e *IOError) Unwrap() error { return e.Err }

// wrapOS converts a raw syscall error into an *OSError, preserving the
// errno when one is present.
func wrapOS(op string, pid int, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &OSError{Op: op, Pid: pid, Errno: errno}
	}
	return fmt.Errorf("%s pid %d: %w", op, pid, err)
}
