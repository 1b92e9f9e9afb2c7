package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTarget(t *testing.T) {
	t.Run("no target errors", func(t *testing.T) {
		c := &CLI{}
		assert.Error(t, c.validateTarget())
	})

	t.Run("both targets errors", func(t *testing.T) {
		c := &CLI{Pid: 42, Program: []string{"/bin/true"}}
		assert.Error(t, c.validateTarget())
	})

	t.Run("pid only", func(t *testing.T) {
		c := &CLI{Pid: 42}
		assert.NoError(t, c.validateTarget())
	})

	t.Run("program only", func(t *testing.T) {
		c := &CLI{Program: []string{"/bin/true", "arg"}}
		assert.NoError(t, c.validateTarget())
	})
}

func TestTargetName(t *testing.T) {
	assert.Equal(t, "pid 42", (&CLI{Pid: 42}).targetName())
	assert.Equal(t, "/bin/echo hi", (&CLI{Program: []string{"/bin/echo", "hi"}}).targetName())
}

func TestNewLogger(t *testing.T) {
	t.Run("nop without dir or verbose", func(t *testing.T) {
		logger, cleanup, err := newLogger("", false)
		require.NoError(t, err)
		defer cleanup()
		require.NotNil(t, logger)
		// A nop logger must swallow writes without side effects.
		logger.Info("ignored")
	})

	t.Run("creates timestamped file in log dir", func(t *testing.T) {
		dir := t.TempDir()
		logger, cleanup, err := newLogger(dir, false)
		require.NoError(t, err)
		logger.Info("hello from test")
		cleanup()

		matches, err := filepath.Glob(filepath.Join(dir, "sdbg-*.log"))
		require.NoError(t, err)
		require.Len(t, matches, 1)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello from test")
	})

	t.Run("creates nested log dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "logs")
		_, cleanup, err := newLogger(dir, false)
		require.NoError(t, err)
		cleanup()

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}
