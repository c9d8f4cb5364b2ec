package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRunDescriptor(t *testing.T) {
	testCases := []struct {
		name    string
		content *string
		want    RunDescriptor
	}{
		{name: "missing file", content: nil, want: RunDescriptor{}},
		{name: "empty file", content: ptr(""), want: RunDescriptor{}},
		{name: "executable only", content: ptr("/bin/sh\n"), want: RunDescriptor{Executable: "/bin/sh"}},
		{
			name:    "both lines with CRLF",
			content: ptr("/bin/sh\r\nrun.sh --fast\r\nignored\r\n"),
			want:    RunDescriptor{Executable: "/bin/sh", CommandLine: "run.sh --fast"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			path := filepath.Join(t.TempDir(), "run.meta")
			if tc.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tc.content), 0o644))
			}

			// --- Act ---
			got, err := ReadRunDescriptor(path)

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReadRunDescriptor_DirectoryIsAnError(t *testing.T) {
	_, err := ReadRunDescriptor(t.TempDir())
	assert.Error(t, err)
}

func TestSplitCommandLine(t *testing.T) {
	testCases := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "   ", want: nil},
		{in: "a b\tc", want: []string{"a", "b", "c"}},
		{in: `script.sh "hello world" x`, want: []string{"script.sh", "hello world", "x"}},
		{in: `'it''s' raw`, want: []string{"its", "raw"}},
		{in: `'a \ b'`, want: []string{`a \ b`}},
		{in: `a\ b c`, want: []string{"a b", "c"}},
		{in: `"say \"hi\""`, want: []string{`say "hi"`}},
		{in: `"" x`, want: []string{"", "x"}},
		{in: `pre"mid"post`, want: []string{"premidpost"}},
		{in: `"unterminated arg`, want: []string{"unterminated arg"}},
		{in: `trailing\`, want: []string{`trailing\`}},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, SplitCommandLine(tc.in)); diff != "" {
				t.Errorf("SplitCommandLine(%q) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestRunDescriptor_Args(t *testing.T) {
	d := RunDescriptor{Executable: "/bin/sh", CommandLine: "-c 'echo hi'"}
	assert.Equal(t, []string{"-c", "echo hi"}, d.Args())
}

func ptr(s string) *string { return &s }
