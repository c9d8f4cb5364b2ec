package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/scriptgrid/internal/config"
	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/graph"
	"github.com/specialistvlad/scriptgrid/internal/meta"
)

var (
	ErrUnknownNode   = errors.New("join references an unknown node")
	ErrUnknownSocket = errors.New("join references an unknown socket")
)

// Build constructs the graph for project. A nil cache reads every socket
// file fresh.
func Build(ctx context.Context, project *config.Project, cache *meta.Cache) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "nodes", len(project.Nodes))

	if cache == nil {
		cache = meta.NewCache(meta.DefaultExpiration, meta.DefaultCleanupInterval)
	}

	g := graph.New()
	settings := project.Settings.WithDefaults()

	// First pass: create all nodes with their sockets.
	if err := createNodes(ctx, project, settings, cache, g); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(g.Nodes()))

	// Second pass: apply joins.
	if err := linkJoins(ctx, project, g); err != nil {
		return nil, err
	}
	logger.Debug("Build: Join linking complete.")

	return g, nil
}

func wrapNode(id string, err error) error {
	return fmt.Errorf("node '%s': %w", id, err)
}
