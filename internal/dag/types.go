package dag

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a string-keyed directed graph used to reason about dependencies
// between nodes. All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map and the insertion order.
	mutex sync.RWMutex
	// nodes stores all vertices, keyed by their unique ID.
	nodes map[string]*vertex
	// order keeps the IDs in insertion order so traversals are deterministic.
	order []string
}

// vertex is un-exported to enforce interaction via string IDs.
type vertex struct {
	id string
	// deps holds the vertices this vertex depends on (predecessors).
	deps map[string]*vertex
	// dependents holds the vertices depending on this one (successors).
	dependents map[string]*vertex
	// out keeps successor IDs in the order edges were added.
	out []string
}

// CycleError reports a dependency cycle. Path starts and ends with the same ID.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected involving node '%s': %s", e.Path[0], strings.Join(e.Path, " -> "))
}
