// Package node defines the vertices of the execution graph: nodes, their
// input and output sockets, and the per-run state the scheduler keeps on them.
package node

import "strings"

// RunState is the execution state of a node within a run.
type RunState int32

const (
	// StateNone means the node has not been launched during this run.
	StateNone RunState = iota
	// StateRunning means the node's process has been launched and not yet reconciled.
	StateRunning
	// StateReady means the node completed successfully at least once.
	StateReady
	// StateException means the node's process failed to start or exited non-zero.
	StateException
)

func (s RunState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateRunning:
		return "running"
	case StateReady:
		return "ready"
	case StateException:
		return "exception"
	default:
		return "unknown"
	}
}

// SocketKind distinguishes barrier-style data sockets from event-style signal sockets.
type SocketKind int

const (
	// KindData inputs wait for every producer (AND-join).
	KindData SocketKind = iota
	// KindSignal inputs fire on any producer whose token file exists (OR-trigger).
	KindSignal
)

func (k SocketKind) String() string {
	if k == KindSignal {
		return "signal"
	}
	return "data"
}

// ParseKind converts a metadata token to a SocketKind. Unknown or empty
// tokens are treated as data.
func ParseKind(s string) SocketKind {
	if strings.EqualFold(strings.TrimSpace(s), "signal") {
		return KindSignal
	}
	return KindData
}
