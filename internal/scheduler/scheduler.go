package scheduler

import (
	"context"
	"os"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/graph"
	"github.com/specialistvlad/scriptgrid/internal/node"
)

// Evaluator applies the readiness rules to a graph.
type Evaluator struct {
	graph graph.Reader
	probe Probe
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithProbe replaces the token-file existence check.
func WithProbe(p Probe) Option {
	return func(e *Evaluator) {
		e.probe = p
	}
}

// New creates an evaluator over g. By default token files are checked with os.Stat.
func New(g graph.Reader, opts ...Option) *Evaluator {
	e := &Evaluator{graph: g, probe: FileExists}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FileExists is the default Probe.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Pass sweeps every node that is not running and launches the eligible ones.
// It returns the number of launches attempted.
func (e *Evaluator) Pass(ctx context.Context, isFirstRun bool, state RunningSet, launch LaunchFunc) int {
	logger := ctxlog.FromContext(ctx)
	launched := 0

	for _, n := range e.graph.Nodes() {
		if state.IsRunning(n) {
			continue
		}
		if !e.Decide(n, isFirstRun, state.IsRunning) {
			continue
		}

		logger.Debug("Node eligible, launching.", "node", n.ID, "first_run", isFirstRun)
		launched++
		if !launch(ctx, n) {
			logger.Debug("Launch stopped the pass.", "node", n.ID)
			break
		}
	}
	return launched
}

// Decide reports whether n should be launched now. isRunning tells whether a
// given node has a live process.
func (e *Evaluator) Decide(n *node.Node, isFirstRun bool, isRunning func(*node.Node) bool) bool {
	for _, consumer := range e.graph.OutputConnections(n) {
		if isRunning(consumer.Node) {
			return false
		}
	}

	inputs := e.graph.Inputs(n)
	if isFirstRun {
		return len(inputs) == 0
	}
	if len(inputs) == 0 {
		return false
	}

	dataInputs := 0
	allDataChanged := true
	for _, in := range inputs {
		if in.Kind != node.KindData {
			continue
		}
		dataInputs++
		if !in.Changed() {
			allDataChanged = false
		}
	}
	if dataInputs > 0 && allDataChanged {
		return true
	}

	for _, in := range inputs {
		if in.Kind == node.KindSignal && in.Changed() && e.probe(in.Joined.FilePath()) {
			return true
		}
	}
	return false
}
