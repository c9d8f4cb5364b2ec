// Package watcher watches project and node metadata files and reports
// debounced changes.
package watcher

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 500 * time.Millisecond

// Config holds watcher configuration options.
type Config struct {
	// Dirs are watched non-recursively.
	Dirs []string
	// Match reports whether a changed path is relevant. Nil matches everything.
	Match    func(path string) bool
	Debounce time.Duration
}

// Watcher reports changes of relevant files in a set of directories.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	cfg       Config
	onChange  chan struct{}
	done      chan struct{}
}

// New creates a watcher. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{
		fsWatcher: fsw,
		cfg:       cfg,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching. The returned channel receives one value per burst
// of relevant changes; bursts arriving while a value is pending coalesce.
func (w *Watcher) Start(ctx context.Context) (<-chan struct{}, error) {
	if err := w.Add(ctx, w.cfg.Dirs...); err != nil {
		return nil, err
	}

	go w.loop(ctx)

	return w.onChange, nil
}

// Add watches more directories. Directories already watched are skipped.
func (w *Watcher) Add(ctx context.Context, dirs ...string) error {
	logger := ctxlog.FromContext(ctx)
	dirs = slices.Clone(dirs)
	slices.Sort(dirs)
	watched := w.fsWatcher.WatchList()
	for _, dir := range slices.Compact(dirs) {
		if slices.Contains(watched, dir) {
			continue
		}
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
		logger.Debug("Watching directory.", "dir", dir)
	}
	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing.
func (w *Watcher) loop(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			logger.Debug("Relevant file changed.", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.cfg.Debounce)

		case <-timer.C:
			select {
			case w.onChange <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Warn("File watcher error.", "error", err)

		case <-ctx.Done():
			return
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return w.cfg.Match == nil || w.cfg.Match(event.Name)
}
