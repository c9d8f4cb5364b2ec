package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/scriptgrid/internal/config"
	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/graph"
)

// linkJoins applies every declared join to the graph.
func linkJoins(ctx context.Context, project *config.Project, g *graph.Graph) error {
	for _, decl := range project.Nodes {
		baseLogger := ctxlog.FromContext(ctx).With("node", decl.ID)
		consumer, _ := g.Node(decl.ID)

		for _, j := range decl.Joins {
			logger := baseLogger.With("input", j.Input, "from", j.From.String())
			logger.Debug("Resolving join.")

			in, ok := consumer.Input(j.Input)
			if !ok {
				return wrapNode(decl.ID, fmt.Errorf("%w: input '%s' is not declared in the node's inputs", ErrUnknownSocket, j.Input))
			}
			producer, ok := g.Node(j.From.Node)
			if !ok {
				return wrapNode(decl.ID, fmt.Errorf("%w: '%s'", ErrUnknownNode, j.From.Node))
			}
			out, ok := producer.Output(j.From.Socket)
			if !ok {
				return wrapNode(decl.ID, fmt.Errorf("%w: '%s' is not an output of node '%s'", ErrUnknownSocket, j.From.Socket, producer.ID))
			}

			if in.Kind != out.Kind {
				logger.Warn("Joined sockets have different kinds, the input kind decides scheduling.",
					"input_kind", in.Kind.String(), "output_kind", out.Kind.String())
			}
			if err := g.Join(consumer, in.Name, producer, out.Name); err != nil {
				return wrapNode(decl.ID, err)
			}
		}
	}
	return nil
}
