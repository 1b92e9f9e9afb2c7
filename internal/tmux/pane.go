// Package tmux mirrors the traced child's output into a tmux pane so the
// debugger prompt stays clean. Entirely optional: any failure here falls
// back to inline output.
package tmux

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/GianlucaP106/gotmux/gotmux"
)

// ErrNoSessionAvailable is returned when writing before a session exists.
var ErrNoSessionAvailable = errors.New("no tmux session available")

// Config describes the mirror target.
type Config struct {
	SessionName string
	// Target names the debugged program or pid, shown in the banner.
	Target string
}

// Manager owns one tmux session used as an output sink.
type Manager struct {
	mu      sync.Mutex
	config  *Config
	tmux    *gotmux.Tmux
	session *gotmux.Session
	created bool
}

// IsAvailable reports whether a tmux binary is on PATH.
func IsAvailable() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

// NewManager connects to the default tmux server.
func NewManager(cfg *Config) (*Manager, error) {
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, err
	}
	return &Manager{config: cfg, tmux: t}, nil
}

// GetOrCreateSession reuses an existing session by name or creates a
// detached one, writing a banner into fresh sessions.
func (m *Manager) GetOrCreateSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, err := m.tmux.GetSessionByName(m.config.SessionName); err == nil && s != nil {
		m.session = s
		return nil
	}
	s, err := m.tmux.NewSession(&gotmux.SessionOptions{Name: m.config.SessionName})
	if err != nil {
		return err
	}
	m.session = s
	m.created = true
	return m.writeBannerLocked()
}

// AttachCommand returns the shell command a user runs to view the mirror.
func (m *Manager) AttachCommand() string {
	return fmt.Sprintf("tmux attach -t %s", m.config.SessionName)
}

func (m *Manager) writeBannerLocked() error {
	banner := fmt.Sprintf(
		"═══════════════════════════════════════════════\n"+
			"  sdbg output mirror - %s\n"+
			"  Session: %s | Started: %s\n"+
			"═══════════════════════════════════════════════",
		m.config.Target,
		m.config.SessionName,
		time.Now().Format("2006-01-02 15:04:05"),
	)
	for _, line := range strings.Split(banner, "\n") {
		if err := m.writeLineLocked(line); err != nil {
			return err
		}
	}
	return nil
}

// WriteLine writes a single line into the session's pane using echo.
func (m *Manager) WriteLine(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeLineLocked(line)
}

func (m *Manager) writeLineLocked(line string) error {
	if m.session == nil {
		return ErrNoSessionAvailable
	}
	escaped := escapeTmuxString(line)
	paneTarget := fmt.Sprintf("%s:0.0", m.config.SessionName)
	return m.command("send-keys", "-t", paneTarget, fmt.Sprintf("echo '%s'", escaped), "Enter")
}

func (m *Manager) command(args ...string) error {
	return exec.Command("tmux", args...).Run()
}

// Cleanup kills the session if this manager created it; sessions that
// existed beforehand are left alone.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.created && m.session != nil {
		_ = m.session.Kill()
	}
	m.session = nil
}

// escapeTmuxString escapes special characters for tmux send-keys.
func escapeTmuxString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "'\"'\"'")
	return s
}

// Writer adapts the pane to io.Writer, buffering partial lines between
// writes.
type Writer struct {
	manager *Manager
	buffer  strings.Builder
}

// NewWriter creates a writer that streams lines into the pane.
func NewWriter(manager *Manager) *Writer {
	return &Writer{manager: manager}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	w.buffer.Write(p)

	content := w.buffer.String()
	lines := strings.Split(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		w.buffer.Reset()
		w.buffer.WriteString(lines[len(lines)-1])
		lines = lines[:len(lines)-1]
	} else {
		w.buffer.Reset()
		lines = lines[:len(lines)-1]
	}

	for _, line := range lines {
		if line == "" {
			continue
		}
		if err := w.manager.WriteLine(line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Flush writes any remaining buffered content.
func (w *Writer) Flush() error {
	if w.buffer.Len() > 0 {
		err := w.manager.WriteLine(w.buffer.String())
		w.buffer.Reset()
		return err
	}
	return nil
}

var _ io.Writer = (*Writer)(nil)
