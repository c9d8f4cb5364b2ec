package builder

import (
	"context"
	"maps"
	"path/filepath"

	"github.com/specialistvlad/scriptgrid/internal/config"
	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/graph"
	"github.com/specialistvlad/scriptgrid/internal/meta"
	"github.com/specialistvlad/scriptgrid/internal/node"
)

// createNodes adds one node per declaration, with sockets taken from the
// metadata files in its directory. A missing file means no sockets.
func createNodes(ctx context.Context, project *config.Project, settings config.Settings, cache *meta.Cache, g *graph.Graph) error {
	for _, decl := range project.Nodes {
		logger := ctxlog.FromContext(ctx).With("node", decl.ID)

		n := node.New(decl.ID, decl.Dir)
		n.Env = maps.Clone(decl.Env)

		inputs, err := cache.Sockets(ctx, filepath.Join(decl.Dir, settings.InputsMeta))
		if err != nil {
			return wrapNode(decl.ID, err)
		}
		for _, s := range inputs {
			n.AddInput(s.Name, s.Kind)
		}

		outputs, err := cache.Sockets(ctx, filepath.Join(decl.Dir, settings.OutputsMeta))
		if err != nil {
			return wrapNode(decl.ID, err)
		}
		for _, s := range outputs {
			n.AddOutput(s.Name, s.Kind)
		}

		if err := g.AddNode(n); err != nil {
			return err
		}
		logger.Debug("Created node.", "dir", n.Dir, "inputs", len(n.Inputs), "outputs", len(n.Outputs))
	}
	return nil
}
