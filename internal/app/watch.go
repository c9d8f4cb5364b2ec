package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/specialistvlad/scriptgrid/internal/config"
	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/graph"
	"github.com/specialistvlad/scriptgrid/internal/runner"
	"github.com/specialistvlad/scriptgrid/internal/watcher"
)

// watch executes g, then reloads and re-executes after every change until
// ctx is done. Failed runs and failed reloads are logged and wait for the
// next change.
func (a *App) watch(ctx context.Context, r *runner.Runner, g *graph.Graph) error {
	logger := ctxlog.FromContext(ctx)
	project := a.Project()

	w, err := watcher.New(watcher.Config{
		Dirs:     watchDirs(project),
		Match:    watchMatch(project.Settings),
		Debounce: a.config.WatchDebounce,
	})
	if err != nil {
		return err
	}
	defer w.Stop()
	changes, err := w.Start(ctx)
	if err != nil {
		return err
	}

	runDescriptor := project.Settings.RunDescriptor
	for {
		if g != nil {
			if err := a.execute(ctx, r, g); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("💥 Run failed, waiting for changes.", "error", err)
			}
		}
		if ctx.Err() != nil {
			return nil
		}

		logger.Info("👀 Watching for changes.")
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
		}

		logger.Info("🔄 Change detected, reloading project.")
		var reloaded *config.Project
		reloaded, g, err = a.Load(ctx)
		if err != nil {
			logger.Error("Reload failed.", "error", err)
			g = nil
			continue
		}
		if reloaded.Settings.RunDescriptor != runDescriptor {
			logger.Warn("Run descriptor setting changed, restart to apply.", "run_descriptor", reloaded.Settings.RunDescriptor)
		}
		if err := w.Add(ctx, watchDirs(reloaded)...); err != nil {
			logger.Warn("Could not watch new directories.", "error", err)
		}
	}
}

// watchDirs lists the project directories and every existing node directory.
func watchDirs(p *config.Project) []string {
	dirs := []string{p.Dir}
	for _, f := range p.Files {
		dirs = append(dirs, filepath.Dir(f))
	}
	for _, n := range p.Nodes {
		if info, err := os.Stat(n.Dir); err == nil && info.IsDir() {
			dirs = append(dirs, n.Dir)
		}
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

// watchMatch accepts project files and node metadata files.
func watchMatch(s config.Settings) func(string) bool {
	names := []string{s.RunDescriptor, s.InputsMeta, s.OutputsMeta}
	return func(path string) bool {
		return filepath.Ext(path) == ".hcl" || slices.Contains(names, filepath.Base(path))
	}
}
