package cli

import (
	"maps"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/scriptgrid/internal/graph"
	"github.com/specialistvlad/scriptgrid/internal/ref"
)

type graphView struct {
	Nodes  []nodeView `yaml:"nodes"`
	Errors []string   `yaml:"errors,omitempty"`
}

type nodeView struct {
	ID      string            `yaml:"id"`
	Dir     string            `yaml:"dir"`
	Env     map[string]string `yaml:"env,omitempty"`
	Inputs  []socketView      `yaml:"inputs,omitempty"`
	Outputs []socketView      `yaml:"outputs,omitempty"`
}

type socketView struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	// From is "node.output" for joined inputs.
	From string `yaml:"from,omitempty"`
}

func (c *command) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [PROJECT...]",
		Short: "Print the resolved graph as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(args)
			if err != nil {
				return err
			}
			_, g, err := a.Load(cmd.Context())
			if err != nil {
				return failure(err)
			}

			enc := yaml.NewEncoder(c.outW)
			enc.SetIndent(2)
			if err := enc.Encode(describe(g)); err != nil {
				return failure(err)
			}
			return enc.Close()
		},
	}
}

// describe converts g into its printable form, listing validation errors
// instead of failing on them.
func describe(g *graph.Graph) graphView {
	var view graphView
	for _, n := range g.Nodes() {
		nv := nodeView{ID: n.ID, Dir: n.Dir}
		if len(n.Env) > 0 {
			nv.Env = maps.Clone(n.Env)
		}
		for _, in := range n.Inputs {
			sv := socketView{Name: in.Name, Kind: in.Kind.String()}
			if in.Joined != nil {
				from := ref.Ref{Node: in.Joined.Node.ID, Socket: in.Joined.Name}
				sv.From = from.String()
			}
			nv.Inputs = append(nv.Inputs, sv)
		}
		for _, out := range n.Outputs {
			nv.Outputs = append(nv.Outputs, socketView{Name: out.Name, Kind: out.Kind.String()})
		}
		view.Nodes = append(view.Nodes, nv)
	}

	if err := g.Validate(); err != nil {
		view.Errors = append(view.Errors, err.Error())
	}
	if err := g.DataCycle(); err != nil {
		view.Errors = append(view.Errors, err.Error())
	}
	return view
}
