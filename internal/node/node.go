package node

import (
	"path/filepath"
	"sync/atomic"
)

// Node is a single vertex in the execution graph: a working directory holding
// a user script, plus the sockets through which it exchanges data with other
// nodes.
//
// The run state is stored atomically so status readers on other goroutines
// can observe it. Everything else, including OutputDataVersion, belongs to the
// goroutine that owns the scheduler and must only be touched from there.
type Node struct {
	// ID is the unique identifier of the node within a graph.
	ID string
	// Name is an optional human-readable name used in messages.
	Name string
	// Dir is the node's working directory. Metadata files, the script and
	// signal token files live here.
	Dir string
	// Env holds extra environment variables for the node's process.
	Env map[string]string

	Inputs  []*InputSocket
	Outputs []*OutputSocket

	// OutputDataVersion counts successful completions during the current run.
	OutputDataVersion int

	state atomic.Int32
}

// New creates a node with no sockets.
func New(id, dir string) *Node {
	return &Node{ID: id, Dir: dir}
}

// DisplayName returns the name used in user-facing messages.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// State atomically returns the node's run state.
func (n *Node) State() RunState {
	return RunState(n.state.Load())
}

// SetState atomically sets the node's run state.
func (n *Node) SetState(s RunState) {
	n.state.Store(int32(s))
}

// AddInput appends an input socket to the node and returns it.
func (n *Node) AddInput(name string, kind SocketKind) *InputSocket {
	in := &InputSocket{Name: name, Kind: kind, Node: n}
	n.Inputs = append(n.Inputs, in)
	return in
}

// AddOutput appends an output socket to the node and returns it.
func (n *Node) AddOutput(name string, kind SocketKind) *OutputSocket {
	out := &OutputSocket{Name: name, Kind: kind, Node: n}
	n.Outputs = append(n.Outputs, out)
	return out
}

// Input looks up an input socket by name.
func (n *Node) Input(name string) (*InputSocket, bool) {
	for _, in := range n.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return nil, false
}

// Output looks up an output socket by name.
func (n *Node) Output(name string) (*OutputSocket, bool) {
	for _, out := range n.Outputs {
		if out.Name == name {
			return out, true
		}
	}
	return nil, false
}

// OutputSocket is a named connection point that other nodes' inputs join to.
type OutputSocket struct {
	Name string
	Kind SocketKind
	Node *Node
}

// FilePath returns the file correlated with the socket inside the owning
// node's directory. For signal sockets this is the token file.
func (o *OutputSocket) FilePath() string {
	return filepath.Join(o.Node.Dir, o.Name)
}

// InputSocket is a named connection point that references at most one output
// socket of another node.
type InputSocket struct {
	Name string
	Kind SocketKind
	Node *Node
	// Joined is the output this input consumes, or nil when unconnected.
	Joined *OutputSocket
	// LastProcessedDataVersion is the producer version captured when the
	// owning node was last launched.
	LastProcessedDataVersion int
}

// JoinedNode returns the node producing this input's data, or nil.
func (in *InputSocket) JoinedNode() *Node {
	if in.Joined == nil {
		return nil
	}
	return in.Joined.Node
}

// Changed reports whether the producer has completed since the owning node
// last captured this input.
func (in *InputSocket) Changed() bool {
	producer := in.JoinedNode()
	return producer != nil && producer.OutputDataVersion > in.LastProcessedDataVersion
}

// Capture records the producer's current version as processed.
func (in *InputSocket) Capture() {
	if producer := in.JoinedNode(); producer != nil {
		in.LastProcessedDataVersion = producer.OutputDataVersion
	}
}

// Reset clears per-run execution state: version, captures and run state.
func (n *Node) Reset() {
	n.OutputDataVersion = 0
	for _, in := range n.Inputs {
		in.LastProcessedDataVersion = 0
	}
	n.SetState(StateNone)
}
