package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusStopped   = "stopped"
)

var ErrRunNotFound = errors.New("run not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		finished_at INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS node_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		node_id TEXT NOT NULL,
		state TEXT NOT NULL,
		version INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_node_runs_run ON node_runs(run_id)`,
}

// Run is one row of the runs table.
type Run struct {
	ID       string    `json:"id" yaml:"id"`
	Project  string    `json:"project" yaml:"project"`
	Status   string    `json:"status" yaml:"status"`
	Error    string    `json:"error,omitempty" yaml:"error,omitempty"`
	Started  time.Time `json:"started" yaml:"started"`
	Finished time.Time `json:"finished,omitzero" yaml:"finished,omitempty"`
}

// Duration returns how long the run took, or zero while it is unfinished.
func (r Run) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// NodeRun is one finished node execution.
type NodeRun struct {
	RunID   string    `json:"run_id" yaml:"run_id"`
	Node    string    `json:"node" yaml:"node"`
	State   string    `json:"state" yaml:"state"`
	Version int       `json:"version" yaml:"version"`
	Error   string    `json:"error,omitempty" yaml:"error,omitempty"`
	At      time.Time `json:"at" yaml:"at"`
}

// Store provides access to the history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Opening history database.", "path", path)

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply history schema: %w", err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts a running run. Beginning the same run twice is a no-op.
func (s *Store) BeginRun(ctx context.Context, runID, project string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO runs (id, project, status, started_at) VALUES (?, ?, ?, ?)`,
		runID, project, StatusRunning, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to begin run %s: %w", runID, err)
	}
	return nil
}

// FinishRun sets the final status of a run. A completed or failed status
// replaces a stopped one; stopped never replaces a final status.
func (s *Store) FinishRun(ctx context.Context, runID, status, errMsg string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ?
		 WHERE id = ? AND (status = ? OR (status = ? AND ? <> ?))`,
		status, errMsg, at.UnixMilli(), runID, StatusRunning, StatusStopped, status, StatusStopped)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		ctxlog.FromContext(ctx).Debug("Run status left unchanged.", "run_id", runID, "status", status)
	}
	return nil
}

// RecordNode appends a node execution to a run.
func (s *Store) RecordNode(ctx context.Context, nr NodeRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO node_runs (run_id, node_id, state, version, error, at) VALUES (?, ?, ?, ?, ?, ?)`,
		nr.RunID, nr.Node, nr.State, nr.Version, nr.Error, nr.At.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record node %s of run %s: %w", nr.Node, nr.RunID, err)
	}
	return nil
}

// Runs returns the most recent runs first. A non-positive limit returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project, status, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Run returns a single run.
func (s *Store) Run(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project, status, error, started_at, finished_at FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// NodeRuns returns the node executions of a run in the order they finished.
func (s *Store) NodeRuns(ctx context.Context, runID string) ([]NodeRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, node_id, state, version, error, at
		 FROM node_runs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list node runs: %w", err)
	}
	defer rows.Close()

	var out []NodeRun
	for rows.Next() {
		var nr NodeRun
		var at int64
		if err := rows.Scan(&nr.RunID, &nr.Node, &nr.State, &nr.Version, &nr.Error, &at); err != nil {
			return nil, err
		}
		nr.At = time.UnixMilli(at)
		out = append(out, nr)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var started int64
	var finished sql.NullInt64
	if err := row.Scan(&run.ID, &run.Project, &run.Status, &run.Error, &started, &finished); err != nil {
		return Run{}, err
	}
	run.Started = time.UnixMilli(started)
	if finished.Valid {
		run.Finished = time.UnixMilli(finished.Int64)
	}
	return run, nil
}
