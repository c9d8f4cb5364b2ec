package runner

import (
	"context"
	"time"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
)

// DefaultInterval is the tick interval used when Serve gets a non-positive one.
const DefaultInterval = 50 * time.Millisecond

// Send posts a command for Serve to apply. It never blocks and reports
// whether the command was accepted.
func (r *Runner) Send(cmd Command) bool {
	select {
	case r.commands <- cmd:
		return true
	default:
		return false
	}
}

// Serve owns the runner until the run settles in Stop. It ticks every
// interval, and early whenever a process exits, and applies commands posted
// with Send. It returns nil on completion, the fatal error on failure, or
// ctx.Err() after stopping the run on cancellation.
func (r *Runner) Serve(ctx context.Context, interval time.Duration) error {
	logger := ctxlog.FromContext(ctx)
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if r.State() == StateStop {
			return r.Err()
		}

		select {
		case <-ctx.Done():
			logger.Debug("Serve cancelled, stopping run.")
			r.Stop(context.WithoutCancel(ctx))
			return ctx.Err()
		case cmd := <-r.commands:
			r.apply(ctx, cmd)
		case <-r.queue.Ready():
			r.Tick(ctx)
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

func (r *Runner) apply(ctx context.Context, cmd Command) {
	ctxlog.FromContext(ctx).Debug("Applying command.", "command", cmd.String())
	switch cmd {
	case CmdPause:
		r.Pause(ctx)
	case CmdResume:
		r.Resume(ctx)
	case CmdToggle:
		r.TogglePause(ctx)
	case CmdStop:
		r.Stop(ctx)
	}
}

// discardCommands drops commands posted while no run was active.
func (r *Runner) discardCommands(ctx context.Context) {
	for {
		select {
		case cmd := <-r.commands:
			ctxlog.FromContext(ctx).Debug("Discarding command sent between runs.", "command", cmd.String())
		default:
			return
		}
	}
}
