package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/scriptgrid/internal/builder"
	"github.com/specialistvlad/scriptgrid/internal/config"
	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/events"
	"github.com/specialistvlad/scriptgrid/internal/graph"
	"github.com/specialistvlad/scriptgrid/internal/meta"
	"github.com/specialistvlad/scriptgrid/internal/pubsub"
	"github.com/specialistvlad/scriptgrid/internal/runner"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader
	cache  *meta.Cache
	bus    *events.Bus
	lines  *lineWriter

	runner atomic.Pointer[runner.Runner]
	server *statusServer

	mu      sync.RWMutex
	project *config.Project
}

// NewApp is the constructor for the main application. Logs and node output
// are written to outW.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader,
		cache:  meta.NewCache(meta.DefaultExpiration, meta.DefaultCleanupInterval),
		bus:    events.NewBus(),
		lines:  &lineWriter{w: outW},
	}
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Bus returns the event bus every notice is published on.
func (a *App) Bus() *events.Bus {
	return a.bus
}

// Runner returns the runner of the current Run, or nil before it starts.
func (a *App) Runner() *runner.Runner {
	return a.runner.Load()
}

// Project returns the last successfully loaded project.
func (a *App) Project() *config.Project {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.project
}

// Load reads the project and builds its graph.
func (a *App) Load(ctx context.Context) (*config.Project, *graph.Graph, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Loading project.", "paths", a.config.ProjectPaths)

	project, err := a.loader.Load(ctx, a.config.ProjectPaths...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load project: %w", err)
	}
	g, err := builder.Build(ctx, project, a.cache)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build graph: %w", err)
	}

	a.mu.Lock()
	a.project = project
	a.mu.Unlock()

	a.logger.Debug("Project loaded.", "nodes", len(g.Nodes()), "files", len(project.Files))
	return project, g, nil
}

// Validate loads the project and reports the errors a run would reject it with.
func (a *App) Validate(ctx context.Context) (*config.Project, *graph.Graph, error) {
	project, g, err := a.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := g.Validate(); err != nil {
		return project, g, err
	}
	if err := g.DataCycle(); err != nil {
		return project, g, err
	}
	return project, g, nil
}

// lineWriter prints node output lines synchronously so none are dropped.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lineWriter) Publish(eventType pubsub.EventType, n events.Notice) {
	if eventType != events.NodeOutput {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, n.Line)
}
