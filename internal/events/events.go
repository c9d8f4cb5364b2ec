// Package events defines the notifications the runner and the launcher
// publish while a graph executes.
package events

import (
	"github.com/specialistvlad/scriptgrid/internal/pubsub"
)

const (
	// NodeState is published when a node's run state changes.
	NodeState pubsub.EventType = "node_state"
	// RunState is published when the runner moves between Stop, Run and Pause.
	RunState pubsub.EventType = "run_state"
	// RunCompleted is published once every launched node has settled without error.
	RunCompleted pubsub.EventType = "run_completed"
	// RunFailed is published once per run with the fatal error message.
	RunFailed pubsub.EventType = "run_failed"
	// NodeOutput is published for every line a node's process prints.
	NodeOutput pubsub.EventType = "node_output"
)

// Notice is the payload of every event.
type Notice struct {
	RunID     string `json:"run_id" yaml:"run_id"`
	Node      string `json:"node,omitempty" yaml:"node,omitempty"`
	NodeState string `json:"node_state,omitempty" yaml:"node_state,omitempty"`
	RunState  string `json:"run_state,omitempty" yaml:"run_state,omitempty"`
	Stream    string `json:"stream,omitempty" yaml:"stream,omitempty"`
	Line      string `json:"line,omitempty" yaml:"line,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
	// Version is the node's output data version at the time of the notice.
	Version int `json:"version,omitempty" yaml:"version,omitempty"`
}

// Publisher is the publisher type used throughout scriptgrid.
type Publisher = pubsub.Publisher[Notice]

// Bus is the broker type used throughout scriptgrid.
type Bus = pubsub.Broker[Notice]

// NewBus creates an event bus.
func NewBus() *Bus {
	return pubsub.NewBroker[Notice]()
}
