package testutil

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertNodeRan checks the log output to confirm that a node finished
// successfully at least once.
func AssertNodeRan(t *testing.T, logOutput, nodeID string) {
	t.Helper()

	expected := fmt.Sprintf("node=%s", nodeID)
	for _, line := range strings.Split(logOutput, "\n") {
		if strings.Contains(line, "Node finished.") && slices.Contains(strings.Fields(line), expected) {
			return
		}
	}
	require.Fail(t, "node did not finish", "expected a 'Node finished.' log line for node '%s'", nodeID)
}

// AssertNodeNotRan is the inverse of AssertNodeRan.
func AssertNodeNotRan(t *testing.T, logOutput, nodeID string) {
	t.Helper()

	expected := fmt.Sprintf("node=%s", nodeID)
	for _, line := range strings.Split(logOutput, "\n") {
		if strings.Contains(line, "Node started.") && slices.Contains(strings.Fields(line), expected) {
			require.Fail(t, "node ran", "unexpected start of node '%s'", nodeID)
		}
	}
}
