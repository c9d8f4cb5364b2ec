package runner

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/events"
	"github.com/specialistvlad/scriptgrid/internal/executor"
	"github.com/specialistvlad/scriptgrid/internal/graph"
	"github.com/specialistvlad/scriptgrid/internal/node"
	"github.com/specialistvlad/scriptgrid/internal/pubsub"
	"github.com/specialistvlad/scriptgrid/internal/scheduler"
)

const commandBuffer = 16

// Runner executes a graph.
type Runner struct {
	launcher  executor.Launcher
	publisher events.Publisher
	tracer    trace.Tracer
	probe     scheduler.Probe

	state    atomic.Int32
	queue    *CompletionQueue
	commands chan Command

	// Owner-goroutine state.
	graph   *graph.Graph
	eval    *scheduler.Evaluator
	nodes   []*node.Node
	ready   map[*node.Node]struct{}
	running map[*node.Node]executor.Handle
	lastErr error
	result  error

	runCtx    context.Context
	runSpan   trace.Span
	nodeSpans map[*node.Node]trace.Span

	// statusMu guards the copies read by Snapshot.
	statusMu      sync.RWMutex
	runID         string
	snapshotNodes []*node.Node
	versions      map[string]int
}

// Option configures a Runner.
type Option func(*Runner)

// WithPublisher sets where notices are published.
func WithPublisher(p events.Publisher) Option {
	return func(r *Runner) {
		if p != nil {
			r.publisher = p
		}
	}
}

// WithTracer sets the tracer used for run and node spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithProbe replaces the signal token existence check.
func WithProbe(p scheduler.Probe) Option {
	return func(r *Runner) {
		r.probe = p
	}
}

// New creates a stopped Runner that starts processes with launcher.
func New(launcher executor.Launcher, opts ...Option) *Runner {
	r := &Runner{
		launcher:  launcher,
		publisher: pubsub.Discard[events.Notice]{},
		tracer:    noop.NewTracerProvider().Tracer("scriptgrid/runner"),
		probe:     scheduler.FileExists,
		queue:     NewCompletionQueue(),
		commands:  make(chan Command, commandBuffer),
		ready:     make(map[*node.Node]struct{}),
		running:   make(map[*node.Node]executor.Handle),
		nodeSpans: make(map[*node.Node]trace.Span),
		versions:  make(map[string]int),
		runCtx:    context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State atomically returns the run state. Safe from any goroutine.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// Err returns the fatal error of the last finished run, or nil.
func (r *Runner) Err() error {
	return r.result
}

// RunID returns the id of the current or last run.
func (r *Runner) RunID() string {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	return r.runID
}

// Run starts a new run of g. It returns synchronously when the graph is
// invalid; launch failures during the first pass are surfaced like any other
// fatal error, through Err and Serve.
func (r *Runner) Run(ctx context.Context, g *graph.Graph) error {
	logger := ctxlog.FromContext(ctx)

	if r.State() != StateStop {
		logger.Debug("Run requested while active, stopping first.")
		r.Stop(ctx)
	}

	r.reset(g)
	r.discardCommands(ctx)

	if err := g.Validate(); err != nil {
		return err
	}
	if err := g.DataCycle(); err != nil {
		return err
	}

	r.deleteSignalTokens(ctx)

	runID := r.RunID()
	r.runCtx, r.runSpan = r.tracer.Start(events.WithRunID(ctx, runID), "scriptgrid.run",
		trace.WithAttributes(attribute.String("run.id", runID), attribute.Int("run.nodes", len(r.nodes))))

	logger.Info("🚀 Starting run.", "run_id", runID, "nodes", len(r.nodes))
	r.setState(ctx, StateRun)
	launched := r.eval.Pass(r.runCtx, true, r, r.runNode)
	logger.Debug("First pass finished.", "launched", launched)

	r.surface(ctx)
	return nil
}

// reset clears all per-run state and binds the runner to g.
func (r *Runner) reset(g *graph.Graph) {
	r.graph = g
	r.eval = scheduler.New(g, scheduler.WithProbe(r.probe))
	r.nodes = g.Nodes()
	clear(r.ready)
	clear(r.running)
	clear(r.nodeSpans)
	r.queue.Clear()
	r.lastErr = nil
	r.result = nil

	for _, n := range r.nodes {
		n.Reset()
	}

	r.statusMu.Lock()
	r.runID = uuid.NewString()
	r.snapshotNodes = r.nodes
	clear(r.versions)
	for _, n := range r.nodes {
		r.versions[n.ID] = 0
	}
	r.statusMu.Unlock()
}

// deleteSignalTokens removes the token file behind every joined signal input
// so stale tokens from an earlier run cannot fire.
func (r *Runner) deleteSignalTokens(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, n := range r.nodes {
		for _, in := range n.Inputs {
			if in.Kind != node.KindSignal || in.Joined == nil {
				continue
			}
			path := in.Joined.FilePath()
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.Debug("Could not delete signal token.", "path", path, "error", err)
			}
		}
	}
}

// IsRunning implements scheduler.RunningSet.
func (r *Runner) IsRunning(n *node.Node) bool {
	_, ok := r.running[n]
	return ok
}

// Running returns the number of nodes with a live process.
func (r *Runner) Running() int {
	return len(r.running)
}

// Stop kills every tracked process and moves the run to Stop.
func (r *Runner) Stop(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	for n, h := range r.running {
		if h != nil {
			if err := h.Kill(); err != nil {
				logger.Debug("Kill failed, process likely exited.", "node", n.ID, "error", err)
			}
		}
		n.SetState(node.StateNone)
		r.publishNode(n, "")
		r.endNodeSpan(n, errors.New("stopped"))
	}
	clear(r.running)
	r.queue.Clear()

	if r.State() != StateStop {
		logger.Info("🛑 Run stopped.", "run_id", r.RunID())
		r.setState(ctx, StateStop)
	}
	r.surface(ctx)
}

// Pause stops new launches. Running processes continue and their exits are
// still reconciled.
func (r *Runner) Pause(ctx context.Context) {
	if r.State() == StateRun {
		ctxlog.FromContext(ctx).Info("⏸️ Run paused.")
		r.setState(ctx, StatePause)
	}
}

// Resume continues a paused run.
func (r *Runner) Resume(ctx context.Context) {
	if r.State() == StatePause {
		ctxlog.FromContext(ctx).Info("▶️ Run resumed.")
		r.setState(ctx, StateRun)
	}
}

// TogglePause switches between Run and Pause.
func (r *Runner) TogglePause(ctx context.Context) {
	switch r.State() {
	case StateRun:
		r.Pause(ctx)
	case StatePause:
		r.Resume(ctx)
	}
}

// fail records the first fatal error of the run and marks n as failed.
func (r *Runner) fail(ctx context.Context, n *node.Node, err error) {
	ctxlog.FromContext(ctx).Error("❌ Node failed.", "node", n.ID, "error", err)
	if r.lastErr == nil {
		r.lastErr = err
	}
	n.SetState(node.StateException)
	r.publishNode(n, err.Error())
	r.endNodeSpan(n, err)
}

// surface publishes a pending fatal error once the run has settled in Stop.
func (r *Runner) surface(ctx context.Context) {
	if r.State() != StateStop || r.lastErr == nil {
		return
	}
	err := r.lastErr
	r.lastErr = nil
	r.result = err

	ctxlog.FromContext(ctx).Error("💥 Run failed.", "run_id", r.RunID(), "error", err)
	r.publisher.Publish(events.RunFailed, events.Notice{RunID: r.RunID(), RunState: StateStop.String(), Error: err.Error()})
	if r.runSpan != nil {
		r.runSpan.RecordError(err)
		r.runSpan.SetStatus(codes.Error, err.Error())
	}
	r.endRunSpan()
}

func (r *Runner) setState(ctx context.Context, s State) {
	r.state.Store(int32(s))
	ctxlog.FromContext(ctx).Debug("Run state changed.", "state", s.String())
	r.publisher.Publish(events.RunState, events.Notice{RunID: r.RunID(), RunState: s.String()})
	if s == StateStop && r.lastErr == nil {
		r.endRunSpan()
	}
}

func (r *Runner) publishNode(n *node.Node, errMsg string) {
	r.statusMu.Lock()
	r.versions[n.ID] = n.OutputDataVersion
	runID := r.runID
	r.statusMu.Unlock()

	r.publisher.Publish(events.NodeState, events.Notice{
		RunID:     runID,
		Node:      n.ID,
		NodeState: n.State().String(),
		Version:   n.OutputDataVersion,
		Error:     errMsg,
	})
}

func (r *Runner) endNodeSpan(n *node.Node, err error) {
	span, ok := r.nodeSpans[n]
	if !ok {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	delete(r.nodeSpans, n)
}

func (r *Runner) endRunSpan() {
	if r.runSpan != nil {
		r.runSpan.End()
		r.runSpan = nil
	}
}

// Graph returns the graph of the current or last run.
func (r *Runner) Graph() *graph.Graph {
	return r.graph
}
