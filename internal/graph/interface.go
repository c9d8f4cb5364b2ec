package graph

import "github.com/specialistvlad/scriptgrid/internal/node"

// Reader is the read model the readiness evaluator consumes.
type Reader interface {
	// Nodes returns all nodes in insertion order.
	Nodes() []*node.Node
	// Inputs returns the node's input sockets.
	Inputs(n *node.Node) []*node.InputSocket
	// OutputConnections returns every input socket elsewhere in the graph
	// that is joined to one of the node's outputs.
	OutputConnections(n *node.Node) []*node.InputSocket
}

var _ Reader = (*Graph)(nil)
