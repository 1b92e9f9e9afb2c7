// Package cli defines the kong command surface and wires the engine,
// multiplexer, terminal, and session loop together.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/vburojevic/sdbg/internal/command"
	"github.com/vburojevic/sdbg/internal/config"
	"github.com/vburojevic/sdbg/internal/engine"
	"github.com/vburojevic/sdbg/internal/mux"
	"github.com/vburojevic/sdbg/internal/session"
	"github.com/vburojevic/sdbg/internal/term"
	"github.com/vburojevic/sdbg/internal/tmux"
)

// Globals carries shared state into command Run methods.
type Globals struct {
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
}

// NewGlobalsWithConfig builds Globals bound to the real process streams.
func NewGlobalsWithConfig(cfg *config.Config) *Globals {
	return &Globals{
		Config: cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// CLI is the root command: debug one target, spawned or attached.
type CLI struct {
	LogDir       string        `help:"Write timestamped debug log files into this directory." default:"${config_log_dir}"`
	Verbose      bool          `short:"v" help:"Log to stderr at debug level." default:"${config_verbose}"`
	Prompt       string        `help:"Prompt text." default:"${config_prompt}"`
	Tick         time.Duration `help:"Periodic refresh interval." default:"${config_tick}"`
	HistoryLimit int           `help:"Maximum stored history entries (0 = unlimited)." default:"${config_history_limit}"`
	Tmux         bool          `help:"Mirror child output into a detached tmux session."`
	TmuxSession  string        `help:"Tmux session name for the output mirror." default:"${config_tmux_session}"`

	Pid     uint64   `short:"p" help:"Attach to a running process by pid."`
	Program []string `arg:"" optional:"" passthrough:"" help:"Program to spawn under the debugger, followed by its arguments."`
}

// validateTarget enforces the clap-style group: exactly one of --pid or
// a program.
func (c *CLI) validateTarget() error {
	hasPid := c.Pid != 0
	hasProgram := len(c.Program) > 0
	if hasPid && hasProgram {
		return errors.New("--pid cannot be combined with a program to spawn")
	}
	if !hasPid && !hasProgram {
		return errors.New("provide a target: --pid <pid> or a program to spawn")
	}
	return nil
}

func (c *CLI) targetName() string {
	if c.Pid != 0 {
		return fmt.Sprintf("pid %d", c.Pid)
	}
	return strings.Join(c.Program, " ")
}

// Run executes the interactive debug session.
func (c *CLI) Run(globals *Globals) error {
	if err := c.validateTarget(); err != nil {
		return err
	}

	logger, closeLogs, err := newLogger(c.LogDir, c.Verbose)
	if err != nil {
		return fmt.Errorf("logger setup: %w", err)
	}
	defer closeLogs()

	eng := engine.New(logger.Named("engine"))
	defer eng.Close()

	var childOut io.ReadCloser
	if c.Pid != 0 {
		if err := eng.Attach(c.Pid); err != nil {
			return err
		}
	} else {
		out, err := eng.Spawn(c.Program[0], c.Program[1:])
		if err != nil {
			return err
		}
		childOut = out
	}

	// Collect the initial attach/exec stop before going interactive.
	if err := eng.Wait(); err != nil {
		logger.Warn("initial wait", zap.Error(err))
	}

	var mirror *tmux.Manager
	if c.Tmux && childOut != nil {
		mirror, childOut = c.startMirror(globals, logger, childOut)
		if mirror != nil {
			defer mirror.Cleanup()
		}
	}

	console, err := term.Open(c.Prompt)
	if err != nil {
		return err
	}
	defer console.Close()

	m := mux.New(console, clock.New(), childOut, mux.WithTickInterval(c.Tick))
	defer m.Close()

	// External signals end the session the same way Ctrl-D does: the
	// multiplexer closes its delivery channel and the loop drains out.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	sessionDone := make(chan struct{})
	defer close(sessionDone)
	go func() {
		select {
		case <-sigCh:
			m.Close()
		case <-sessionDone:
		}
	}()

	loop := session.New(m.Events(), console, engineRunner{eng: eng}, session.NewHistory(c.HistoryLimit))
	return loop.Run()
}

// startMirror diverts child output into a tmux pane. On any failure the
// original reader is handed back so output stays inline.
func (c *CLI) startMirror(globals *Globals, logger *zap.Logger, childOut io.ReadCloser) (*tmux.Manager, io.ReadCloser) {
	if !tmux.IsAvailable() {
		fmt.Fprintln(globals.Stderr, "Warning: tmux not found, child output stays inline")
		return nil, childOut
	}
	mgr, err := tmux.NewManager(&tmux.Config{SessionName: c.TmuxSession, Target: c.targetName()})
	if err == nil {
		err = mgr.GetOrCreateSession()
	}
	if err != nil {
		logger.Warn("tmux mirror unavailable", zap.Error(err))
		fmt.Fprintf(globals.Stderr, "Warning: tmux mirror unavailable: %v\n", err)
		return nil, childOut
	}

	fmt.Fprintf(globals.Stdout, "Tmux session: %s\n", c.TmuxSession)
	fmt.Fprintf(globals.Stdout, "Attach with: %s\n", mgr.AttachCommand())

	go func() {
		w := tmux.NewWriter(mgr)
		_, _ = io.Copy(w, childOut)
		_ = w.Flush()
	}()
	return mgr, nil
}

// engineRunner binds the command language executor to the live engine.
type engineRunner struct {
	eng *engine.Debugger
}

func (r engineRunner) Run(input string, out io.Writer) (bool, error) {
	return command.Run(input, r.eng, out)
}
