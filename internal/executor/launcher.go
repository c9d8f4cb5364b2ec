package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/events"
	"github.com/specialistvlad/scriptgrid/internal/meta"
	"github.com/specialistvlad/scriptgrid/internal/node"
	"github.com/specialistvlad/scriptgrid/internal/pubsub"
)

// DefaultRunDescriptor is the run descriptor file name inside a node directory.
const DefaultRunDescriptor = "run.meta"

// DefaultOutputGrace is how long output is read after the process exited.
const DefaultOutputGrace = 200 * time.Millisecond

// NodeEnvVar is set in every process environment to the node's id.
const NodeEnvVar = "SCRIPTGRID_NODE"

// CommandFactoryFunc creates an exec.Cmd. Tests use it to substitute commands.
type CommandFactoryFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// ProcessLauncher is the Launcher backed by os/exec.
type ProcessLauncher struct {
	runDescriptor  string
	publisher      events.Publisher
	commandFactory CommandFactoryFunc
	outputGrace    time.Duration
}

// Option configures a ProcessLauncher.
type Option func(*ProcessLauncher)

// WithRunDescriptor sets the run descriptor file name.
func WithRunDescriptor(name string) Option {
	return func(l *ProcessLauncher) {
		if name != "" {
			l.runDescriptor = name
		}
	}
}

// WithPublisher sets where output lines are published.
func WithPublisher(p events.Publisher) Option {
	return func(l *ProcessLauncher) {
		if p != nil {
			l.publisher = p
		}
	}
}

// WithOutputGrace sets how long output is still read after the process
// exited while something else keeps its pipes open.
func WithOutputGrace(d time.Duration) Option {
	return func(l *ProcessLauncher) {
		if d > 0 {
			l.outputGrace = d
		}
	}
}

// WithCommandFactory sets a custom command factory for testing.
func WithCommandFactory(fn CommandFactoryFunc) Option {
	return func(l *ProcessLauncher) {
		l.commandFactory = fn
	}
}

// New creates a ProcessLauncher.
func New(opts ...Option) *ProcessLauncher {
	l := &ProcessLauncher{
		runDescriptor:  DefaultRunDescriptor,
		publisher:      pubsub.Discard[events.Notice]{},
		commandFactory: exec.CommandContext,
		outputGrace:    DefaultOutputGrace,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Process is a running node script.
type Process struct {
	node      *node.Node
	cmd       *exec.Cmd
	cancel    context.CancelFunc
	publisher events.Publisher
	runID     string
	logger    *slog.Logger
	done      chan struct{}
}

// Pid returns the OS process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Done is closed after the exit callback returned.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Kill terminates the process.
func (p *Process) Kill() error {
	defer p.cancel()
	return p.cmd.Process.Kill()
}

// Start reads the node's run descriptor and starts its process. onExit is
// called exactly once, when the process has exited and its output is drained.
// Output still held open by leftover children is cut off after the output
// grace period.
func (l *ProcessLauncher) Start(ctx context.Context, n *node.Node, onExit ExitFunc) (Handle, error) {
	logger := ctxlog.FromContext(ctx).With("node", n.ID)

	desc, err := meta.ReadRunDescriptor(filepath.Join(n.Dir, l.runDescriptor))
	if err != nil {
		return nil, fmt.Errorf("node '%s': %w", n.DisplayName(), err)
	}
	if desc.Executable == "" {
		return nil, fmt.Errorf("node '%s': %w", n.DisplayName(), ErrNoExecutable)
	}
	args := desc.Args()

	procCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	// #nosec G204 -- executable comes from the node's own run descriptor
	cmd := l.commandFactory(procCtx, desc.Executable, args...)
	cmd.Dir = n.Dir
	cmd.Stdin = nil
	cmd.Env = environ(n)

	// exec copies into these writers; closing them after Wait ends the readers
	// even when a background child still holds the process's pipes.
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	cmd.WaitDelay = l.outputGrace

	logger.Debug("Spawning process.", "executable", desc.Executable, "args", args, "dir", n.Dir)
	if err := cmd.Start(); err != nil {
		cancel()
		stdoutW.Close()
		stderrW.Close()
		return nil, fmt.Errorf("node '%s': failed to start process: %w", n.DisplayName(), err)
	}
	logger.Debug("Process started.", "pid", cmd.Process.Pid)

	p := &Process{
		node:      n,
		cmd:       cmd,
		cancel:    cancel,
		publisher: l.publisher,
		runID:     events.RunIDFrom(ctx),
		logger:    logger,
		done:      make(chan struct{}),
	}

	var readers sync.WaitGroup
	errTail := &tail{}
	readers.Add(2)
	go func() {
		defer readers.Done()
		p.forward(stdoutR, streamStdout, nil)
	}()
	go func() {
		defer readers.Done()
		p.forward(stderrR, streamStderr, errTail)
	}()

	go func() {
		defer close(p.done)
		defer cancel()

		waitErr := cmd.Wait()
		stdoutW.Close()
		stderrW.Close()
		readers.Wait()

		c := Completion{Node: n, Handle: p}
		var exitErr *exec.ExitError
		switch {
		case waitErr == nil:
		case errors.Is(waitErr, exec.ErrWaitDelay):
			logger.Debug("Output still open after exit, closed it.", "grace", l.outputGrace)
		case errors.As(waitErr, &exitErr):
			c.Err = &ExitError{Node: n.DisplayName(), Code: exitErr.ExitCode(), Stderr: errTail.snapshot()}
		default:
			c.Err = fmt.Errorf("node '%s': %w", n.DisplayName(), waitErr)
		}
		logger.Debug("Process exited.", "pid", cmd.Process.Pid, "error", c.Err)
		onExit(c)
	}()

	return p, nil
}

// environ returns the host environment plus the node's own variables.
func environ(n *node.Node) []string {
	env := os.Environ()
	keys := make([]string, 0, len(n.Env))
	for k := range n.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		env = append(env, k+"="+n.Env[k])
	}
	return append(env, NodeEnvVar+"="+n.ID)
}
