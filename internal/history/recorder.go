package history

import (
	"context"
	"time"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/events"
	"github.com/specialistvlad/scriptgrid/internal/pubsub"
)

// Recorder persists notices from the event bus into a Store.
type Recorder struct {
	store   *Store
	project string
	// running tracks nodes with a started execution per run, so a node reset
	// to none by a stop is recorded only when it was actually interrupted.
	running map[string]map[string]struct{}
}

// NewRecorder creates a Recorder that tags new runs with project.
func NewRecorder(store *Store, project string) *Recorder {
	return &Recorder{store: store, project: project, running: make(map[string]map[string]struct{})}
}

// Subscribe registers the subscription a Recorder reads: every notice but
// output lines, delivered without loss until ctx ends or the bus closes.
func Subscribe(ctx context.Context, bus pubsub.Subscriber[events.Notice]) <-chan pubsub.Event[events.Notice] {
	return bus.Subscribe(ctx, pubsub.ExceptTypes(events.NodeOutput), pubsub.Lossless())
}

// Run consumes notices until ch is closed or ctx is done. Store errors are
// logged and do not stop the recorder.
func (r *Recorder) Run(ctx context.Context, ch <-chan pubsub.Event[events.Notice]) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("History recorder started.", "path", r.store.Path())
	defer logger.Debug("History recorder stopped.")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := r.Handle(context.WithoutCancel(ctx), ev); err != nil {
				logger.Warn("Failed to record history.", "event", string(ev.Type), "error", err)
			}
		}
	}
}

// Handle persists a single event.
func (r *Recorder) Handle(ctx context.Context, ev pubsub.Event[events.Notice]) error {
	n := ev.Payload
	if n.RunID == "" {
		return nil
	}
	at := ev.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	switch ev.Type {
	case events.RunState:
		switch n.RunState {
		case "run":
			return r.store.BeginRun(ctx, n.RunID, r.project, at)
		case "stop":
			delete(r.running, n.RunID)
			return r.store.FinishRun(ctx, n.RunID, StatusStopped, "", at)
		}
	case events.RunCompleted:
		return r.store.FinishRun(ctx, n.RunID, StatusCompleted, "", at)
	case events.RunFailed:
		return r.store.FinishRun(ctx, n.RunID, StatusFailed, n.Error, at)
	case events.NodeState:
		return r.nodeState(ctx, n, at)
	}
	return nil
}

func (r *Recorder) nodeState(ctx context.Context, n events.Notice, at time.Time) error {
	running := r.running[n.RunID]
	if running == nil {
		running = make(map[string]struct{})
		r.running[n.RunID] = running
	}

	switch n.NodeState {
	case "running":
		running[n.Node] = struct{}{}
		return nil
	case "ready", "exception":
	case "none":
		if _, ok := running[n.Node]; !ok {
			return nil
		}
		n.NodeState = "stopped"
	default:
		return nil
	}

	delete(running, n.Node)
	return r.store.RecordNode(ctx, NodeRun{
		RunID:   n.RunID,
		Node:    n.Node,
		State:   n.NodeState,
		Version: n.Version,
		Error:   n.Error,
		At:      at,
	})
}
