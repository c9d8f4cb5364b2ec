package meta

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// RunDescriptor says how to start a node's script.
type RunDescriptor struct {
	Executable  string
	CommandLine string
}

// Args splits the command line into process arguments.
func (d RunDescriptor) Args() []string {
	return SplitCommandLine(d.CommandLine)
}

// ReadRunDescriptor reads the descriptor at path. Line one is the executable,
// line two the command line. Missing lines, or a missing file, leave the
// corresponding fields empty.
func ReadRunDescriptor(path string) (RunDescriptor, error) {
	var d RunDescriptor

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return d, nil
		}
		return d, fmt.Errorf("failed to open run descriptor: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	fields := []*string{&d.Executable, &d.CommandLine}
	for i := 0; i < len(fields) && scanner.Scan(); i++ {
		*fields[i] = strings.TrimSpace(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return RunDescriptor{}, fmt.Errorf("failed to read run descriptor %s: %w", path, err)
	}
	return d, nil
}

// SplitCommandLine splits s on whitespace. Single quotes preserve their
// content literally; inside double quotes and outside quotes a backslash
// escapes the next character. An unterminated quote runs to the end of s.
func SplitCommandLine(s string) []string {
	var (
		args    []string
		current strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)

	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inArg = true
		case quote == '"':
			if r == '"' {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if escaped {
		current.WriteRune('\\')
	}
	if inArg {
		args = append(args, current.String())
	}
	return args
}
