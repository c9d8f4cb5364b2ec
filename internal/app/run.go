package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/scriptgrid/internal/config"
	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/events"
	"github.com/specialistvlad/scriptgrid/internal/executor"
	"github.com/specialistvlad/scriptgrid/internal/graph"
	"github.com/specialistvlad/scriptgrid/internal/history"
	"github.com/specialistvlad/scriptgrid/internal/runner"
	"github.com/specialistvlad/scriptgrid/internal/tracing"
)

// Run executes the main application logic: load, build, execute and, in
// watch mode, re-execute after every change. An App runs once.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger
	logger.Debug("App.Run method started.")
	defer a.bus.Close()

	provider, err := tracing.NewProvider(ctx, a.config.Tracing, a.outW)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Tracing shutdown failed.", "error", err)
		}
	}()

	project, g, err := a.Load(ctx)
	if err != nil {
		return err
	}

	stopHistory, err := a.startHistory(ctx, project)
	if err != nil {
		return err
	}
	defer stopHistory()

	launcher := executor.New(
		executor.WithRunDescriptor(project.Settings.RunDescriptor),
		executor.WithPublisher(events.Fanout{a.bus, a.lines}),
	)
	r := runner.New(launcher, runner.WithPublisher(a.bus), runner.WithTracer(provider.Tracer()))
	a.runner.Store(r)

	if err := a.startStatusServer(ctx); err != nil {
		return err
	}
	defer a.closeStatusServer(ctx)

	if a.config.Watch {
		return a.watch(ctx, r, g)
	}
	err = a.execute(ctx, r, g)
	logger.Debug("App.Run method finished.")
	return err
}

// execute runs g to completion.
func (a *App) execute(ctx context.Context, r *runner.Runner, g *graph.Graph) error {
	logger := ctxlog.FromContext(ctx)
	if len(g.Nodes()) == 0 {
		logger.Warn("No nodes found in graph, execution not required.")
		return nil
	}

	if err := r.Run(ctx, g); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	if err := r.Serve(ctx, a.config.Tick); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	return nil
}

// startHistory opens the history database and records every notice until
// the returned function is called. The function closes the bus.
func (a *App) startHistory(ctx context.Context, project *config.Project) (func(), error) {
	logger := ctxlog.FromContext(ctx)
	if a.config.HistoryPath == "" {
		logger.Debug("History disabled.")
		return func() {}, nil
	}

	store, err := history.Open(ctx, a.config.HistoryPath)
	if err != nil {
		return nil, err
	}

	// The notices published while a cancelled run is stopped must still be
	// recorded, so the subscription lives until the bus closes.
	sub := history.Subscribe(context.WithoutCancel(ctx), a.bus)
	done := make(chan struct{})
	go func() {
		defer close(done)
		history.NewRecorder(store, project.Path).Run(context.WithoutCancel(ctx), sub)
	}()

	return func() {
		a.bus.Close()
		<-done
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close history database.", "error", err)
		}
	}, nil
}
