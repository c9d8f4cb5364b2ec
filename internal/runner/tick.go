package runner

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/events"
	"github.com/specialistvlad/scriptgrid/internal/executor"
	"github.com/specialistvlad/scriptgrid/internal/node"
)

// runNode captures the node's inputs and starts its process. It returns
// false when the launch failed and the run was stopped.
func (r *Runner) runNode(ctx context.Context, n *node.Node) bool {
	logger := ctxlog.FromContext(ctx)

	for _, in := range n.Inputs {
		in.Capture()
	}
	r.running[n] = nil
	n.SetState(node.StateRunning)
	r.publishNode(n, "")

	nodeCtx, span := r.tracer.Start(ctx, "scriptgrid.node",
		trace.WithAttributes(attribute.String("node.id", n.ID), attribute.String("node.dir", n.Dir)))
	r.nodeSpans[n] = span

	logger.Info("▶️ Node started.", "node", n.ID)
	h, err := r.launcher.Start(nodeCtx, n, r.queue.Push)
	if err != nil {
		delete(r.running, n)
		r.fail(ctx, n, err)
		r.Stop(ctx)
		return false
	}
	r.running[n] = h
	return true
}

// Tick reconciles every queued process exit, then, while the run is active,
// launches newly eligible nodes and detects completion.
//
// Exits are applied in arrival order. A failure stops the run, and exits
// queued after it in the same drain are dropped. Successes already applied
// earlier in that drain keep their version bump.
func (r *Runner) Tick(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	for _, c := range r.queue.Drain() {
		h, tracked := r.running[c.Node]
		if !tracked || h != c.Handle {
			logger.Debug("Dropping completion of an untracked process.", "node", c.Node.ID)
			continue
		}
		delete(r.running, c.Node)

		if c.Err != nil {
			r.fail(ctx, c.Node, c.Err)
			r.queue.Clear()
			r.Stop(ctx)
			return
		}
		r.complete(ctx, c)
	}

	if r.State() == StateRun {
		r.eval.Pass(r.runCtx, false, r, r.runNode)
	}
	if r.State() == StateRun && len(r.running) == 0 {
		logger.Info("🏁 Run completed.", "run_id", r.RunID())
		r.setState(ctx, StateStop)
		r.publisher.Publish(events.RunCompleted, events.Notice{RunID: r.RunID(), RunState: StateStop.String()})
	}
	r.surface(ctx)
}

func (r *Runner) complete(ctx context.Context, c executor.Completion) {
	n := c.Node
	r.ready[n] = struct{}{}
	n.OutputDataVersion++
	n.SetState(node.StateReady)
	r.publishNode(n, "")
	r.endNodeSpan(n, nil)
	ctxlog.FromContext(ctx).Info("✅ Node finished.", "node", n.ID, "version", n.OutputDataVersion)
}

// Ready returns the number of nodes that completed at least once this run.
func (r *Runner) Ready() int {
	return len(r.ready)
}
