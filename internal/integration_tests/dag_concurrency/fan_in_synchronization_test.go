package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	it "github.com/specialistvlad/scriptgrid/internal/integration_tests"
	"github.com/specialistvlad/scriptgrid/internal/testutil"
)

// TestDagConcurrency_FanInSynchronization validates that a node with two
// data inputs waits for both producers and runs exactly once.
func TestDagConcurrency_FanInSynchronization(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	projectHCL := `
node "A" {}
node "B" {
  join "x" { from = node.A.x }
}
node "C" {
  join "x" { from = node.A.x }
}
node "D" {
  join "b" { from = node.B.b }
  join "c" { from = node.C.c }
}
`
	nodes := []testutil.ScriptNode{
		{Dir: "A", Script: "echo 1 > x\n", Outputs: "x\n"},
		{Dir: "B", Script: "sleep 0.3\necho fast > b\n", Inputs: "x\n", Outputs: "b\n"},
		{Dir: "C", Script: "sleep 0.6\necho slow > c\n", Inputs: "x\n", Outputs: "c\n"},
		{Dir: "D", Script: "echo \"$(cat ../B/b) $(cat ../C/c)\"\n", Inputs: "b\nc\n"},
	}

	// --- Act ---
	result := it.RunIntegrationTest(t, projectHCL, nodes...)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"fast slow"}, result.Lines("D"))
	assert.Equal(t, 1, result.Node(t, "D").Version)
}
