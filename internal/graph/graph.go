package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/scriptgrid/internal/dag"
	"github.com/specialistvlad/scriptgrid/internal/node"
)

var (
	// ErrUnconnectedInputs is returned by Validate when any input socket lacks a join.
	ErrUnconnectedInputs = errors.New("Some input sockets are not connected")
	// ErrDataCycle is returned by DataCycle when data joins alone form a cycle.
	ErrDataCycle = errors.New("data joins form a cycle")
	// ErrDuplicateNode is returned by AddNode when the id is already taken.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrNodeNotFound is returned when a node is not part of the graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrSocketNotFound is returned when a node has no socket with the given name.
	ErrSocketNotFound = errors.New("socket not found")
)

// Graph stores nodes in insertion order together with the reverse join index.
type Graph struct {
	nodes     []*node.Node
	byID      map[string]*node.Node
	consumers map[*node.OutputSocket][]*node.InputSocket
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		byID:      make(map[string]*node.Node),
		consumers: make(map[*node.OutputSocket][]*node.InputSocket),
	}
}

// AddNode appends a node. Joins already present on its inputs are indexed.
func (g *Graph) AddNode(n *node.Node) error {
	if _, ok := g.byID[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	for _, in := range n.Inputs {
		if in.Joined != nil {
			g.consumers[in.Joined] = append(g.consumers[in.Joined], in)
		}
	}
	return nil
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (*node.Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The slice must not be modified.
func (g *Graph) Nodes() []*node.Node {
	return g.nodes
}

// Inputs returns the node's input sockets.
func (g *Graph) Inputs(n *node.Node) []*node.InputSocket {
	return n.Inputs
}

// OutputConnections returns the input sockets joined to any of n's outputs,
// grouped by output in declaration order.
func (g *Graph) OutputConnections(n *node.Node) []*node.InputSocket {
	var conns []*node.InputSocket
	for _, out := range n.Outputs {
		conns = append(conns, g.consumers[out]...)
	}
	return conns
}

// Join connects inNode's input socket to outNode's output socket, replacing
// any previous join of that input.
func (g *Graph) Join(inNode *node.Node, inSocket string, outNode *node.Node, outSocket string) error {
	in, err := g.input(inNode, inSocket)
	if err != nil {
		return err
	}
	if _, ok := g.byID[outNode.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, outNode.ID)
	}
	out, ok := outNode.Output(outSocket)
	if !ok {
		return fmt.Errorf("%w: output '%s' on node '%s'", ErrSocketNotFound, outSocket, outNode.ID)
	}

	g.detach(in)
	in.Joined = out
	g.consumers[out] = append(g.consumers[out], in)
	return nil
}

// Unjoin removes the join of inNode's input socket, if any.
func (g *Graph) Unjoin(inNode *node.Node, inSocket string) error {
	in, err := g.input(inNode, inSocket)
	if err != nil {
		return err
	}
	g.detach(in)
	return nil
}

// Validate checks that every input socket is joined.
func (g *Graph) Validate() error {
	var missing []string
	for _, n := range g.nodes {
		for _, in := range n.Inputs {
			if in.Joined == nil {
				missing = append(missing, n.ID+"."+in.Name)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnconnectedInputs, strings.Join(missing, ", "))
	}
	return nil
}

// DataCycle reports a cycle made only of data joins.
func (g *Graph) DataCycle() error {
	d := dag.New()
	for _, n := range g.nodes {
		d.AddNode(n.ID)
	}
	for _, n := range g.nodes {
		for _, in := range n.Inputs {
			if in.Kind != node.KindData || in.Joined == nil {
				continue
			}
			producer := in.JoinedNode()
			if producer == n {
				return fmt.Errorf("%w: %w", ErrDataCycle, &dag.CycleError{Path: []string{n.ID, n.ID}})
			}
			if err := d.AddEdge(producer.ID, n.ID); err != nil {
				return err
			}
		}
	}
	if err := d.DetectCycles(); err != nil {
		return fmt.Errorf("%w: %w", ErrDataCycle, err)
	}
	return nil
}

func (g *Graph) input(n *node.Node, name string) (*node.InputSocket, error) {
	if _, ok := g.byID[n.ID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, n.ID)
	}
	in, ok := n.Input(name)
	if !ok {
		return nil, fmt.Errorf("%w: input '%s' on node '%s'", ErrSocketNotFound, name, n.ID)
	}
	return in, nil
}

func (g *Graph) detach(in *node.InputSocket) {
	if in.Joined == nil {
		return
	}
	list := g.consumers[in.Joined]
	if i := slices.Index(list, in); i >= 0 {
		list = slices.Delete(list, i, i+1)
	}
	if len(list) == 0 {
		delete(g.consumers, in.Joined)
	} else {
		g.consumers[in.Joined] = list
	}
	in.Joined = nil
}
