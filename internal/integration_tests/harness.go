// Package integration_tests holds the harness shared by the end-to-end
// suites in its subdirectories. Each suite writes a project of /bin/sh node
// folders into a temporary directory and runs it through the App.
package integration_tests

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/scriptgrid/internal/app"
	"github.com/specialistvlad/scriptgrid/internal/hcl_adapter"
	"github.com/specialistvlad/scriptgrid/internal/runner"
	"github.com/specialistvlad/scriptgrid/internal/testutil"
)

// DefaultTimeout bounds every integration run.
const DefaultTimeout = 30 * time.Second

// Result holds everything a run produced.
type Result struct {
	Root   string
	Err    error
	Logs   string
	Status runner.Status
	out    *testutil.SafeBuffer
	// Elapsed is the wall time of App.Run.
	Elapsed time.Duration
}

// Lines returns the output lines printed by node id, in order.
func (r *Result) Lines(id string) []string {
	return r.out.Lines(id + "> ")
}

// Node returns the final status of node id.
func (r *Result) Node(t *testing.T, id string) runner.NodeStatus {
	t.Helper()
	for _, n := range r.Status.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node '%s' not in status %+v", id, r.Status)
	return runner.NodeStatus{}
}

// RunIntegrationTest writes the project and runs it to completion at debug
// level. Set SCRIPTGRID_TEST_LOGS=true to print the full log of every test.
func RunIntegrationTest(t *testing.T, projectHCL string, nodes ...testutil.ScriptNode) *Result {
	t.Helper()
	root := testutil.WriteProject(t, projectHCL, nodes...)
	return RunProject(t, root)
}

// RunProject runs an already written project at root.
func RunProject(t *testing.T, root string) *Result {
	t.Helper()
	cfg, err := app.NewConfig(app.Config{
		ProjectPaths: []string{root},
		LogLevel:     "debug",
		Tick:         10 * time.Millisecond,
	})
	require.NoError(t, err)

	out := &testutil.SafeBuffer{}
	a := app.NewApp(out, cfg, hcl_adapter.NewLoader())

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	start := time.Now()
	runErr := a.Run(ctx)
	result := &Result{Root: root, Err: runErr, Logs: out.String(), Elapsed: time.Since(start), out: out}
	if r := a.Runner(); r != nil {
		result.Status = r.Snapshot()
	}

	if os.Getenv("SCRIPTGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.Logs)
	}
	return result
}
