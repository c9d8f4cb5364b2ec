package config

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/scriptgrid/internal/ref"
)

const (
	DefaultRunDescriptor = "run.meta"
	DefaultInputsMeta    = "sockets_i.meta"
	DefaultOutputsMeta   = "sockets_o.meta"
)

var (
	ErrDuplicateNode = errors.New("duplicate node")
	ErrDuplicateJoin = errors.New("duplicate join")
	ErrInvalidNodeID = errors.New("invalid node id")
)

// Project is the unified, format-agnostic representation of a scriptgrid
// project.
type Project struct {
	// Path is the first path the project was loaded from.
	Path string
	// Dir is the project root; relative node directories resolve against
	// the file that declared them, not against Dir.
	Dir      string
	Settings Settings
	Nodes    []*NodeDecl
	// Files lists every file that contributed to the project.
	Files []string
}

// Settings names the per-node metadata files.
type Settings struct {
	RunDescriptor string
	InputsMeta    string
	OutputsMeta   string
}

// DefaultSettings returns the settings used when a project declares none.
func DefaultSettings() Settings {
	return Settings{
		RunDescriptor: DefaultRunDescriptor,
		InputsMeta:    DefaultInputsMeta,
		OutputsMeta:   DefaultOutputsMeta,
	}
}

// WithDefaults fills empty fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.RunDescriptor == "" {
		s.RunDescriptor = d.RunDescriptor
	}
	if s.InputsMeta == "" {
		s.InputsMeta = d.InputsMeta
	}
	if s.OutputsMeta == "" {
		s.OutputsMeta = d.OutputsMeta
	}
	return s
}

// NodeDecl is one declared node.
type NodeDecl struct {
	ID  string
	Dir string
	Env map[string]string
	// Joins connect this node's input sockets to other nodes' outputs.
	Joins []JoinDecl
}

// JoinDecl connects the input socket Input to the output named by From.
type JoinDecl struct {
	Input string
	From  ref.Ref
}

// Node returns the declaration with the given id, or nil.
func (p *Project) Node(id string) *NodeDecl {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// AddNode appends decl, rejecting invalid and duplicate ids and inputs that
// are joined twice.
func (p *Project) AddNode(decl *NodeDecl) error {
	if !ref.ValidNodeID(decl.ID) {
		return fmt.Errorf("%w: '%s'", ErrInvalidNodeID, decl.ID)
	}
	if p.Node(decl.ID) != nil {
		return fmt.Errorf("%w: '%s'", ErrDuplicateNode, decl.ID)
	}
	seen := make(map[string]struct{}, len(decl.Joins))
	for _, j := range decl.Joins {
		if _, ok := seen[j.Input]; ok {
			return fmt.Errorf("%w: input '%s' of node '%s'", ErrDuplicateJoin, j.Input, decl.ID)
		}
		seen[j.Input] = struct{}{}
	}
	p.Nodes = append(p.Nodes, decl)
	return nil
}
