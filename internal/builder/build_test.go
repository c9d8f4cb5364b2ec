package builder

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/scriptgrid/internal/config"
	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/meta"
	"github.com/specialistvlad/scriptgrid/internal/node"
	"github.com/specialistvlad/scriptgrid/internal/ref"
	"github.com/specialistvlad/scriptgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(root string, nodes ...*config.NodeDecl) *config.Project {
	for _, n := range nodes {
		n.Dir = filepath.Join(root, n.ID)
	}
	return &config.Project{Dir: root, Settings: config.DefaultSettings(), Nodes: nodes}
}

func TestBuild_CreatesNodesAndJoins(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"A/sockets_o.meta": "x\ndone signal\n",
		"B/sockets_i.meta": "x data\ngo signal\n",
	})
	p := project(root,
		&config.NodeDecl{ID: "A", Env: map[string]string{"K": "V"}},
		&config.NodeDecl{ID: "B", Joins: []config.JoinDecl{
			{Input: "x", From: ref.Ref{Node: "A", Socket: "x"}},
			{Input: "go", From: ref.Ref{Node: "A", Socket: "done"}},
		}},
	)

	// --- Act ---
	g, err := Build(context.Background(), p, nil)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, g.Nodes(), 2)

	a, _ := g.Node("A")
	b, _ := g.Node("B")
	assert.Equal(t, map[string]string{"K": "V"}, a.Env)
	assert.Empty(t, a.Inputs)
	require.Len(t, a.Outputs, 2)
	assert.Equal(t, node.KindSignal, a.Outputs[1].Kind)

	x, _ := b.Input("x")
	goIn, _ := b.Input("go")
	assert.Same(t, a, x.JoinedNode())
	assert.Equal(t, node.KindSignal, goIn.Kind)
	assert.Equal(t, filepath.Join(root, "A", "done"), goIn.Joined.FilePath())
	assert.Len(t, g.OutputConnections(a), 2)
	assert.NoError(t, g.Validate())
}

func TestBuild_CustomMetaNames(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"A/in.txt":         "y\n",
		"A/sockets_i.meta": "ignored\n",
	})
	p := project(root, &config.NodeDecl{ID: "A"})
	p.Settings = config.Settings{InputsMeta: "in.txt"}

	g, err := Build(context.Background(), p, nil)

	require.NoError(t, err)
	a, _ := g.Node("A")
	require.Len(t, a.Inputs, 1)
	assert.Equal(t, "y", a.Inputs[0].Name)
	assert.ErrorContains(t, g.Validate(), "A.y")
}

func TestBuild_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		joins   []config.JoinDecl
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown producer",
			files:   map[string]string{"B/sockets_i.meta": "x\n"},
			joins:   []config.JoinDecl{{Input: "x", From: ref.Ref{Node: "Z", Socket: "x"}}},
			wantErr: ErrUnknownNode,
		},
		{
			name:    "unknown output",
			files:   map[string]string{"B/sockets_i.meta": "x\n", "A/sockets_o.meta": "y\n"},
			joins:   []config.JoinDecl{{Input: "x", From: ref.Ref{Node: "A", Socket: "x"}}},
			wantErr: ErrUnknownSocket,
			wantMsg: "'x' is not an output of node 'A'",
		},
		{
			name:    "unknown input",
			files:   map[string]string{"A/sockets_o.meta": "x\n"},
			joins:   []config.JoinDecl{{Input: "x", From: ref.Ref{Node: "A", Socket: "x"}}},
			wantErr: ErrUnknownSocket,
			wantMsg: "node 'B'",
		},
		{
			name:    "invalid socket file",
			files:   map[string]string{"B/sockets_i.meta": "x\nx\n"},
			wantMsg: "node 'B'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			testutil.WriteFiles(t, root, tc.files)
			p := project(root, &config.NodeDecl{ID: "A"}, &config.NodeDecl{ID: "B", Joins: tc.joins})

			_, err := Build(context.Background(), p, nil)

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

func TestBuild_KindMismatchWarns(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"A/sockets_o.meta": "x signal\n",
		"B/sockets_i.meta": "x data\n",
	})
	p := project(root, &config.NodeDecl{ID: "A"}, &config.NodeDecl{ID: "B", Joins: []config.JoinDecl{
		{Input: "x", From: ref.Ref{Node: "A", Socket: "x"}},
	}})
	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))

	g, err := Build(ctx, p, nil)

	require.NoError(t, err)
	assert.NoError(t, g.Validate())
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "input_kind=data")
}

func TestBuild_ReusesCache(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"A/sockets_o.meta": "x\n"})
	p := project(root, &config.NodeDecl{ID: "A"})
	cache := meta.NewCache(meta.DefaultExpiration, meta.DefaultCleanupInterval)

	_, err := Build(context.Background(), p, cache)
	require.NoError(t, err)
	_, err = Build(context.Background(), p, cache)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.Len(), "only existing socket files are cached")
}
