package engine

import (
	"bufio"
	"errors"
	"math"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newTestDebugger(t *testing.T) *Debugger {
	t.Helper()
	d := New(nil)
	t.Cleanup(d.Close)
	return d
}

func TestAttach_PidOutOfRange(t *testing.T) {
	d := newTestDebugger(t)

	err := d.Attach(math.MaxInt32 + 1)
	require.Error(t, err)

	var conv *ConversionError
	require.ErrorAs(t, err, &conv)
	assert.Equal(t, uint64(math.MaxInt32+1), conv.Value)

	// A failed attach leaves the tracee set unchanged.
	assert.Empty(t, d.Tracees())
}

func TestAttach_NoSuchProcess(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("ptrace attach is linux-only here")
	}
	d := newTestDebugger(t)

	// Pid from a range the kernel will never hand out during the test.
	err := d.Attach(uint64(math.MaxInt32 - 1))
	require.Error(t, err)

	var osErr *OSError
	require.ErrorAs(t, err, &osErr)
	assert.Equal(t, "attach", osErr.Op)
	assert.Empty(t, d.Tracees())
}

func TestSpawn_MissingExecutable(t *testing.T) {
	d := newTestDebugger(t)

	out, err := d.Spawn("/nonexistent/never-a-binary", nil)
	require.Error(t, err)
	assert.Nil(t, out)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)

	// No partial registration of tracee or owned child.
	assert.Empty(t, d.Tracees())
}

func TestSpawnWaitContinue(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("ptrace is linux-only here")
	}
	d := newTestDebugger(t)

	out, err := d.Spawn("/bin/echo", []string{"hello"})
	if err != nil {
		t.Skipf("cannot spawn traced child in this environment: %v", err)
	}
	defer out.Close()

	tracees := d.Tracees()
	require.Len(t, tracees, 1)
	assert.Equal(t, OriginSpawned, tracees[0].Origin)
	assert.Equal(t, StateStopped, tracees[0].State)

	// First wait collects the exec-triggered stop.
	require.NoError(t, d.Wait())

	// Resume until the child runs to completion.
	for i := 0; i < 32; i++ {
		if err := d.Continue(); err != nil {
			break
		}
		if d.Tracees()[0].State == StateExited {
			break
		}
	}
	assert.Equal(t, StateExited, d.Tracees()[0].State)

	line, err := bufio.NewReader(out).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "hello\n", line)
}

func TestClose_KillsSpawnedOnly(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("ptrace is linux-only here")
	}
	d := New(nil)

	_, err := d.Spawn("/bin/sleep", []string{"60"})
	if err != nil {
		d.Close()
		t.Skipf("cannot spawn traced child in this environment: %v", err)
	}
	pid := d.Tracees()[0].PID
	require.NoError(t, d.Wait())

	d.Close()

	// The spawned child must be gone; give the kernel a moment to reap.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := unix.Kill(pid, 0); errors.Is(err, syscall.ESRCH) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("spawned child %d still alive after Close", pid)
}
