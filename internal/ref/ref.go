// Package ref parses join references of the form `<node id>.<output socket>`.
//
// Node ids are restricted to letters, digits, `_` and `-` so the first dot
// always separates the node from the socket. Socket names may contain further
// dots since they are file names (e.g. `A.data.csv`).
package ref

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/scriptgrid/internal/meta"
)

var nodeIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Ref points at an output socket of a node.
type Ref struct {
	Node   string
	Socket string
}

// ValidNodeID reports whether id can be used as a node identifier.
func ValidNodeID(id string) bool {
	return id != "-" && nodeIDRegex.MatchString(id)
}

// Parse creates a Ref from its canonical string form.
func Parse(raw string) (*Ref, error) {
	if raw == "" {
		return nil, fmt.Errorf("reference cannot be empty")
	}

	nodeID, socket, ok := strings.Cut(raw, ".")
	if !ok {
		return nil, fmt.Errorf("reference %q must have the form <node>.<socket>", raw)
	}
	return New(nodeID, socket)
}

// New validates both parts and builds a Ref.
func New(nodeID, socket string) (*Ref, error) {
	if !ValidNodeID(nodeID) {
		return nil, fmt.Errorf("invalid node id: %q", nodeID)
	}
	if !meta.ValidSocketName(socket) {
		return nil, fmt.Errorf("invalid socket name: %q", socket)
	}
	return &Ref{Node: nodeID, Socket: socket}, nil
}

// String serializes the Ref into its canonical form.
func (r *Ref) String() string {
	if r == nil {
		return ""
	}
	return r.Node + "." + r.Socket
}

// Equal checks two references for equality.
func (r *Ref) Equal(other *Ref) bool {
	if r == nil || other == nil {
		return r == other
	}
	return *r == *other
}
