// Package engine owns the set of traced processes and issues the ptrace
// calls that drive them. Linux binds tracer identity to the OS thread that
// attached, so every trace-affecting call runs on one dedicated worker
// goroutine locked to its thread for the Debugger's lifetime.
package engine

import (
	"errors"
	"io"
	"math"
	"os/exec"
	"runtime"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Origin records how a tracee came under control.
type Origin int

const (
	// OriginSpawned means the engine started the process and owns it.
	OriginSpawned Origin = iota
	// OriginAttached means the engine attached to a process it does not own.
	OriginAttached
)

func (o Origin) String() string {
	if o == OriginSpawned {
		return "spawned"
	}
	return "attached"
}

// State is the last observed run state of a tracee.
type State int

const (
	StateStopped State = iota
	StateRunning
	StateExited
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Tracee is one process under control.
type Tracee struct {
	PID    int
	Origin Origin
	State  State
}

// Debugger controls a set of tracees. All mutation happens on the worker
// goroutine; public methods post closures to it and wait, so callers may
// use the Debugger from any goroutine.
type Debugger struct {
	log      *zap.Logger
	calls    chan func()
	tracees  []*Tracee
	children []*exec.Cmd
}

// New starts the tracer worker and returns an empty Debugger.
func New(log *zap.Logger) *Debugger {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Debugger{
		log:   log,
		calls: make(chan func()),
	}
	go d.worker()
	return d
}

// worker executes every tracing call on a single locked OS thread.
func (d *Debugger) worker() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for fn := range d.calls {
		fn()
	}
}

func (d *Debugger) do(fn func()) {
	done := make(chan struct{})
	d.calls <- func() {
		defer close(done)
		fn()
	}
	<-done
}

// Attach brings an already-running process under control by pid. On
// success the process is stopped and recorded with OriginAttached.
func (d *Debugger) Attach(pid uint64) error {
	if pid > math.MaxInt32 {
		return &ConversionError{Value: pid}
	}
	var err error
	d.do(func() {
		d.log.Info("attaching to process", zap.Uint64("pid", pid))
		if e := unix.PtraceAttach(int(pid)); e != nil {
			err = wrapOS("attach", int(pid), e)
			return
		}
		d.tracees = append(d.tracees, &Tracee{
			PID:    int(pid),
			Origin: OriginAttached,
			State:  StateStopped,
		})
	})
	return err
}

// Spawn launches program under the debugger. The child requests to be
// traced before exec, so its first post-exec instruction delivers a stop
// to this process. The child's stdout is returned for the caller to read;
// the engine never interprets it.
func (d *Debugger) Spawn(program string, args []string) (io.ReadCloser, error) {
	var (
		out io.ReadCloser
		err error
	)
	d.do(func() {
		d.log.Info("spawning program", zap.String("program", program), zap.Strings("args", args))
		cmd := exec.Command(program, args...)
		cmd.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}
		stdout, e := cmd.StdoutPipe()
		if e != nil {
			err = &IOError{Program: program, Err: e}
			return
		}
		if e := cmd.Start(); e != nil {
			err = &IOError{Program: program, Err: e}
			return
		}
		// Recorded together: one owned child handle per spawned tracee.
		d.tracees = append(d.tracees, &Tracee{
			PID:    cmd.Process.Pid,
			Origin: OriginSpawned,
			State:  StateStopped,
		})
		d.children = append(d.children, cmd)
		out = stdout
		d.log.Info("spawned", zap.Int("pid", cmd.Process.Pid))
	})
	return out, err
}

// Wait blocks until the OS reports a state change for every live tracee,
// visiting them in the order they were added. A failure on one tracee
// marks it errored and does not stop the remaining waits; failures are
// aggregated.
func (d *Debugger) Wait() error {
	var err error
	d.do(func() {
		err = d.waitLocked()
	})
	return err
}

func (d *Debugger) waitLocked() error {
	var errs []error
	for _, t := range d.tracees {
		if t.State == StateExited || t.State == StateErrored {
			continue
		}
		var ws unix.WaitStatus
		if _, e := unix.Wait4(t.PID, &ws, 0, nil); e != nil {
			t.State = StateErrored
			errs = append(errs, wrapOS("wait", t.PID, e))
			continue
		}
		switch {
		case ws.Exited(), ws.Signaled():
			t.State = StateExited
			d.log.Info("tracee exited", zap.Int("pid", t.PID), zap.Int("status", ws.ExitStatus()))
		default:
			t.State = StateStopped
			d.log.Debug("tracee stopped", zap.Int("pid", t.PID), zap.String("signal", unix.SignalName(ws.StopSignal())))
		}
	}
	return errors.Join(errs...)
}

// Continue resumes every stopped tracee and then waits, so it returns
// only once the resumed processes have stopped again or exited. Per-
// tracee resume failures are aggregated and do not block the others.
func (d *Debugger) Continue() error {
	var err error
	d.do(func() {
		var errs []error
		resumed := false
		for _, t := range d.tracees {
			if t.State != StateStopped {
				continue
			}
			if e := unix.PtraceCont(t.PID, 0); e != nil {
				t.State = StateErrored
				errs = append(errs, wrapOS("continue", t.PID, e))
				continue
			}
			t.State = StateRunning
			resumed = true
			d.log.Debug("tracee resumed", zap.Int("pid", t.PID))
		}
		if resumed {
			if e := d.waitLocked(); e != nil {
				errs = append(errs, e)
			}
		}
		err = errors.Join(errs...)
	})
	return err
}

// Tracees returns a snapshot of the tracee set in insertion order.
func (d *Debugger) Tracees() []Tracee {
	var out []Tracee
	d.do(func() {
		out = make([]Tracee, 0, len(d.tracees))
		for _, t := range d.tracees {
			out = append(out, *t)
		}
	})
	return out
}

// Close terminates and reaps every spawned child, leaves attached tracees
// running, and stops the worker. Best effort: teardown never errors. The
// Debugger must not be used afterwards.
func (d *Debugger) Close() {
	d.do(func() {
		for _, cmd := range d.children {
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			// The pid may already have been reaped by a wait; ignore.
			_ = cmd.Wait()
		}
		d.children = nil
	})
	close(d.calls)
}
