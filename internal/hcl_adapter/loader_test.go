package hcl_adapter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/scriptgrid/internal/config"
	"github.com/specialistvlad/scriptgrid/internal/ref"
	"github.com/specialistvlad/scriptgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, files map[string]string, paths ...string) (*config.Project, error) {
	t.Helper()
	root := t.TempDir()
	testutil.WriteFiles(t, root, files)
	if len(paths) == 0 {
		paths = []string{root}
	}
	for i, p := range paths {
		if !filepath.IsAbs(p) {
			paths[i] = filepath.Join(root, p)
		}
	}
	return NewLoader().Load(context.Background(), paths...)
}

func TestLoad_FullProject(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"project.hcl": `
settings {
  run_descriptor = "launch.txt"
}

node "A" {
  dir = "nodes/a"
  env = { MODE = "fast", LEVEL = 3 }
}

node "B" {
  dir = "nodes/b"
  join "x" { from = node.A.x }
  join "go" { from = "A.done.flag" }
}
`,
	}

	// --- Act ---
	project, err := load(t, files)

	// --- Assert ---
	require.NoError(t, err)
	root := project.Dir

	assert.Equal(t, config.Settings{
		RunDescriptor: "launch.txt",
		InputsMeta:    config.DefaultInputsMeta,
		OutputsMeta:   config.DefaultOutputsMeta,
	}, project.Settings)

	want := []*config.NodeDecl{
		{ID: "A", Dir: filepath.Join(root, "nodes", "a"), Env: map[string]string{"MODE": "fast", "LEVEL": "3"}},
		{ID: "B", Dir: filepath.Join(root, "nodes", "b"), Joins: []config.JoinDecl{
			{Input: "x", From: ref.Ref{Node: "A", Socket: "x"}},
			{Input: "go", From: ref.Ref{Node: "A", Socket: "done.flag"}},
		}},
	}
	if diff := cmp.Diff(want, project.Nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, project.Files, 1)
}

func TestLoad_DefaultsAndImplicitDir(t *testing.T) {
	project, err := load(t, map[string]string{
		"sub/grid.hcl": `node "worker" {}`,
	})

	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), project.Settings)
	require.Len(t, project.Nodes, 1)
	assert.Equal(t, filepath.Join(project.Dir, "sub", "worker"), project.Nodes[0].Dir)
	assert.Nil(t, project.Nodes[0].Env)
}

func TestLoad_SingleFilePath(t *testing.T) {
	project, err := load(t, map[string]string{
		"a.hcl":       `node "A" {}`,
		"ignored.hcl": `node "B" {}`,
		"notes.txt":   `not hcl`,
	}, "a.hcl")

	require.NoError(t, err)
	require.Len(t, project.Nodes, 1)
	assert.Equal(t, "A", project.Nodes[0].ID)
	assert.Equal(t, filepath.Dir(project.Path), project.Dir)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr error
		wantMsg string
	}{
		{
			name:    "duplicate node across files",
			files:   map[string]string{"a.hcl": `node "A" {}`, "b.hcl": `node "A" {}`},
			wantErr: config.ErrDuplicateNode,
		},
		{
			name:    "settings in two files",
			files:   map[string]string{"a.hcl": `settings {}`, "b.hcl": `settings {}`},
			wantErr: ErrDuplicateSettings,
		},
		{
			name:    "invalid traversal root",
			files:   map[string]string{"a.hcl": "node \"B\" {\n  join \"x\" { from = step.A.x }\n}"},
			wantMsg: "reference must have the form node.<id>.<socket>",
		},
		{
			name:    "string reference without socket",
			files:   map[string]string{"a.hcl": "node \"B\" {\n  join \"x\" { from = \"A\" }\n}"},
			wantMsg: "must have the form <node>.<socket>",
		},
		{
			name:    "non-string reference",
			files:   map[string]string{"a.hcl": "node \"B\" {\n  join \"x\" { from = 42 }\n}"},
			wantMsg: "from must be a reference",
		},
		{
			name:    "env is not a map",
			files:   map[string]string{"a.hcl": `node "A" { env = ["x"] }`},
			wantMsg: "env must be a map of strings",
		},
		{
			name:    "unknown attribute",
			files:   map[string]string{"a.hcl": `node "A" { command = "x" }`},
			wantMsg: "failed to decode HCL file",
		},
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `node "A" {`},
			wantMsg: "failed to parse HCL file",
		},
		{
			name:    "no files",
			files:   map[string]string{"readme.md": "# nothing"},
			wantErr: ErrNoProjectFiles,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, tc.files)

			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}
