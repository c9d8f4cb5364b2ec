// Package executor starts one OS process per node execution and reports its
// termination. It reads the node's run descriptor fresh on every launch,
// forwards output lines to the event bus and hands exits back to the caller
// through a callback, which runs on a background goroutine.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/scriptgrid/internal/node"
)

// ErrNoExecutable is returned when a node's run descriptor names no executable.
var ErrNoExecutable = errors.New("no executable specified")

// Handle is a started process as seen by the runner.
type Handle interface {
	// Kill terminates the process. Killing an exited process returns an error
	// that callers ignore.
	Kill() error
}

// Completion is delivered once per started process.
type Completion struct {
	Node   *node.Node
	Handle Handle
	// Err is nil for exit code 0, an *ExitError for a non-zero exit, or the
	// wait error otherwise.
	Err error
}

// ExitFunc receives the completion of a process. It is called from a
// background goroutine and must not block.
type ExitFunc func(Completion)

// Launcher starts node processes.
type Launcher interface {
	Start(ctx context.Context, n *node.Node, onExit ExitFunc) (Handle, error)
}

// ExitError reports a non-zero exit status.
type ExitError struct {
	Node string
	Code int
	// Stderr holds the last lines the process wrote to stderr.
	Stderr []string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("node '%s' exited with code %d", e.Node, e.Code)
}
