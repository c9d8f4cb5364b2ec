package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/scriptgrid/internal/testutil"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"b.hcl":          "",
		"a/nested.hcl":   "",
		"a/notes.txt":    "",
		".git/hooks.hcl": "",
	})

	files, err := FindFilesByExtension(root, ".hcl")

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a", "nested.hcl"),
		filepath.Join(root, "b.hcl"),
	}, files)
}

func TestFindFilesByExtension_EmptyExtension(t *testing.T) {
	_, err := FindFilesByExtension(t.TempDir(), "")

	assert.ErrorIs(t, err, ErrEmptyExtension)
}
