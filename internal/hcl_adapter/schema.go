package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Settings *SettingsBlock `hcl:"settings,block"`
	Nodes    []*NodeBlock   `hcl:"node,block"`
}

// SettingsBlock is the HCL schema of the `settings` block.
type SettingsBlock struct {
	RunDescriptor string `hcl:"run_descriptor,optional"`
	InputsMeta    string `hcl:"inputs_meta,optional"`
	OutputsMeta   string `hcl:"outputs_meta,optional"`
}

// NodeBlock is the HCL schema of a `node "<id>"` block.
type NodeBlock struct {
	ID    string         `hcl:"id,label"`
	Dir   string         `hcl:"dir,optional"`
	Env   hcl.Expression `hcl:"env,optional"`
	Joins []*JoinBlock   `hcl:"join,block"`
}

// JoinBlock is the HCL schema of a `join "<input>"` block.
type JoinBlock struct {
	Input string         `hcl:"input,label"`
	From  hcl.Expression `hcl:"from"`
}
