package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/scriptgrid/internal/events"
	"github.com/specialistvlad/scriptgrid/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptNode creates a node directory whose run descriptor runs script with /bin/sh.
func scriptNode(t *testing.T, id, script string) *node.Node {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "script.sh"), []byte(script), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultRunDescriptor), []byte("/bin/sh\nscript.sh\n"), 0o644))
	return node.New(id, dir)
}

func startAndWait(t *testing.T, l *ProcessLauncher, n *node.Node) Completion {
	t.Helper()
	done := make(chan Completion, 1)
	ctx := events.WithRunID(context.Background(), "run-1")
	h, err := l.Start(ctx, n, func(c Completion) { done <- c })
	require.NoError(t, err)
	require.NotNil(t, h)

	select {
	case c := <-done:
		assert.Same(t, n, c.Node)
		assert.Equal(t, h, c.Handle)
		return c
	case <-time.After(10 * time.Second):
		require.FailNow(t, "process did not exit")
	}
	return Completion{}
}

func TestStart_ForwardsOutputAndSucceeds(t *testing.T) {
	// --- Arrange ---
	rec := &events.Recorder{}
	n := scriptNode(t, "A", "echo hello\necho oops >&2\necho \"$MODE-$SCRIPTGRID_NODE\"\n")
	n.Env = map[string]string{"MODE": "fast"}
	l := New(WithPublisher(rec))

	// --- Act ---
	c := startAndWait(t, l, n)

	// --- Assert ---
	require.NoError(t, c.Err)
	var stdout, stderr []string
	for _, ev := range rec.Of(events.NodeOutput) {
		assert.Equal(t, "run-1", ev.RunID)
		assert.Equal(t, "A", ev.Node)
		if ev.Stream == streamStdout {
			stdout = append(stdout, ev.Line)
		} else {
			stderr = append(stderr, ev.Line)
		}
	}
	assert.Equal(t, []string{"A> hello", "A> fast-A"}, stdout)
	assert.Equal(t, []string{"A> oops"}, stderr)
}

func TestStart_WorkingDirectoryIsNodeDir(t *testing.T) {
	n := scriptNode(t, "A", "echo data > out.txt\n")
	c := startAndWait(t, New(), n)

	require.NoError(t, c.Err)
	content, err := os.ReadFile(filepath.Join(n.Dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "data\n", string(content))
}

func TestStart_NonZeroExit(t *testing.T) {
	n := scriptNode(t, "B", "echo first >&2\necho last >&2\nexit 3\n")
	n.Name = "Builder"

	c := startAndWait(t, New(), n)

	var exitErr *ExitError
	require.True(t, errors.As(c.Err, &exitErr), "got %v", c.Err)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "node 'Builder' exited with code 3", exitErr.Error())
	assert.Equal(t, []string{"first", "last"}, exitErr.Stderr)
}

func TestStart_StderrTailIsBounded(t *testing.T) {
	n := scriptNode(t, "B", "for i in 1 2 3 4 5 6 7 8; do echo line$i >&2; done\nexit 1\n")

	c := startAndWait(t, New(), n)

	var exitErr *ExitError
	require.True(t, errors.As(c.Err, &exitErr))
	assert.Equal(t, []string{"line4", "line5", "line6", "line7", "line8"}, exitErr.Stderr)
}

func TestStart_LaunchErrors(t *testing.T) {
	t.Run("missing run descriptor", func(t *testing.T) {
		n := node.New("A", t.TempDir())
		_, err := New().Start(context.Background(), n, func(Completion) {})
		assert.ErrorIs(t, err, ErrNoExecutable)
	})

	t.Run("empty executable line", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultRunDescriptor), []byte("\nscript.sh\n"), 0o644))
		_, err := New().Start(context.Background(), node.New("A", dir), func(Completion) {})
		assert.ErrorIs(t, err, ErrNoExecutable)
	})

	t.Run("executable does not exist", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultRunDescriptor), []byte("/nonexistent/bin\n"), 0o644))
		called := false
		_, err := New().Start(context.Background(), node.New("A", dir), func(Completion) { called = true })
		assert.ErrorContains(t, err, "failed to start process")
		assert.False(t, called, "exit callback must not run for a failed start")
	})
}

func TestStart_CustomRunDescriptorName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launch.txt"), []byte("/bin/sh\n-c 'exit 0'\n"), 0o644))

	c := startAndWait(t, New(WithRunDescriptor("launch.txt")), node.New("A", dir))
	assert.NoError(t, c.Err)
}

func TestStart_CommandFactoryReceivesDescriptor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultRunDescriptor), []byte("/original/path\narg1 'arg 2'\n"), 0o644))

	var capturedName string
	var capturedArgs []string
	factory := func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedName = name
		capturedArgs = args
		return exec.CommandContext(ctx, "/bin/echo", "mocked")
	}
	rec := &events.Recorder{}

	c := startAndWait(t, New(WithCommandFactory(factory), WithPublisher(rec)), node.New("A", dir))

	require.NoError(t, c.Err)
	assert.Equal(t, "/original/path", capturedName)
	assert.Equal(t, []string{"arg1", "arg 2"}, capturedArgs)
	require.Len(t, rec.Of(events.NodeOutput), 1)
	assert.Equal(t, "A> mocked", rec.Of(events.NodeOutput)[0].Line)
}

func TestStart_OverlongLineDoesNotBlockExit(t *testing.T) {
	// --- Arrange ---
	rec := &events.Recorder{}
	n := scriptNode(t, "A", "head -c 3000000 /dev/zero | tr '\\0' x\necho\necho after\nexit 0\n")

	// --- Act ---
	c := startAndWait(t, New(WithPublisher(rec)), n)

	// --- Assert ---
	require.NoError(t, c.Err)
	lines := rec.Of(events.NodeOutput)
	require.Len(t, lines, 2)
	assert.Len(t, lines[0].Line, len("A> ")+maxLineBytes)
	assert.True(t, strings.HasPrefix(lines[0].Line, "A> xxx"))
	assert.Equal(t, "A> after", lines[1].Line)
}

func TestStart_LongLineUnderLimitIsForwardedWhole(t *testing.T) {
	rec := &events.Recorder{}
	n := scriptNode(t, "A", "head -c 500000 /dev/zero | tr '\\0' y\necho\n")

	c := startAndWait(t, New(WithPublisher(rec)), n)

	require.NoError(t, c.Err)
	lines := rec.Of(events.NodeOutput)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0].Line, len("A> ")+500000)
}

func TestStart_BackgroundChildDoesNotDelayCompletion(t *testing.T) {
	// --- Arrange ---
	rec := &events.Recorder{}
	n := scriptNode(t, "A", "sleep 20 &\necho started\nexit 0\n")
	l := New(WithPublisher(rec), WithOutputGrace(50*time.Millisecond))
	done := make(chan Completion, 1)

	// --- Act ---
	_, err := l.Start(context.Background(), n, func(c Completion) { done <- c })
	require.NoError(t, err)

	// --- Assert ---
	select {
	case c := <-done:
		assert.NoError(t, c.Err)
	case <-time.After(3 * time.Second):
		require.FailNow(t, "process exited but no completion was reported")
	}
	require.Len(t, rec.Of(events.NodeOutput), 1)
	assert.Equal(t, "A> started", rec.Of(events.NodeOutput)[0].Line)
}

func TestStart_BackgroundChildKeepsExitCode(t *testing.T) {
	n := scriptNode(t, "A", "sleep 20 &\nexit 4\n")
	l := New(WithOutputGrace(50 * time.Millisecond))

	c := startAndWait(t, l, n)

	var exitErr *ExitError
	require.ErrorAs(t, c.Err, &exitErr)
	assert.Equal(t, 4, exitErr.Code)
}

func TestProcess_Kill(t *testing.T) {
	n := scriptNode(t, "A", "exec sleep 30\n")
	done := make(chan Completion, 1)

	h, err := New().Start(context.Background(), n, func(c Completion) { done <- c })
	require.NoError(t, err)
	p := h.(*Process)
	assert.Positive(t, p.Pid())

	require.NoError(t, h.Kill())

	select {
	case c := <-done:
		assert.Error(t, c.Err)
	case <-time.After(10 * time.Second):
		require.FailNow(t, "killed process did not report exit")
	}
	<-p.Done()

	err = h.Kill()
	assert.Error(t, err, "killing an exited process reports an error")
}

func TestEnviron(t *testing.T) {
	n := node.New("A", "")
	n.Env = map[string]string{"B_VAR": "2", "A_VAR": "1"}

	env := environ(n)

	tailVars := env[len(env)-3:]
	assert.Equal(t, []string{"A_VAR=1", "B_VAR=2", "SCRIPTGRID_NODE=A"}, tailVars)
	assert.True(t, len(env) >= 3)
	for _, kv := range tailVars {
		assert.True(t, strings.Contains(kv, "="))
	}
}
