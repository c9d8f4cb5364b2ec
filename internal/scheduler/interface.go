package scheduler

import (
	"context"

	"github.com/specialistvlad/scriptgrid/internal/node"
)

// RunningSet reports which nodes currently have a live process.
type RunningSet interface {
	IsRunning(n *node.Node) bool
}

// LaunchFunc starts a node. It returns false when the run stopped as a
// result (for example the process failed to start); the sweep ends there.
type LaunchFunc func(ctx context.Context, n *node.Node) bool

// Probe reports whether a signal token file exists.
type Probe func(path string) bool
