package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFiles writes every file under root. Names are slash-separated paths
// relative to root; missing directories are created.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// ScriptNode describes a node folder backed by a /bin/sh script.
type ScriptNode struct {
	Dir    string
	Script string
	// Inputs and Outputs are the raw contents of the socket metadata files.
	// Empty means the file is not written.
	Inputs  string
	Outputs string
}

// Files returns the files of the node folder keyed by their path under root,
// using the default metadata file names.
func (n ScriptNode) Files() map[string]string {
	files := map[string]string{
		n.Dir + "/run.meta":  "/bin/sh\nscript.sh\n",
		n.Dir + "/script.sh": n.Script,
	}
	if n.Inputs != "" {
		files[n.Dir+"/sockets_i.meta"] = n.Inputs
	}
	if n.Outputs != "" {
		files[n.Dir+"/sockets_o.meta"] = n.Outputs
	}
	return files
}

// WriteProject writes the project file and every node folder into a fresh
// temporary directory and returns its path.
func WriteProject(t *testing.T, projectHCL string, nodes ...ScriptNode) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{"project.hcl": projectHCL}
	for _, n := range nodes {
		for name, content := range n.Files() {
			files[name] = content
		}
	}
	WriteFiles(t, root, files)
	return root
}
