package meta

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/specialistvlad/scriptgrid/internal/node"
)

// ErrInvalidSocketName is returned for socket names that cannot be used as file names.
var ErrInvalidSocketName = errors.New("invalid socket name")

// SocketSpec is one line of a socket metadata file.
type SocketSpec struct {
	Name string
	Kind node.SocketKind
}

// ValidSocketName reports whether name can serve as a file name inside the
// node directory.
func ValidSocketName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// ParseSockets reads one socket per line, `<name> [<kind>]`. Blank lines are
// ignored and the kind defaults to data.
func ParseSockets(r io.Reader) ([]SocketSpec, error) {
	var specs []SocketSpec
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if !ValidSocketName(name) {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrInvalidSocketName, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("line %d: duplicate socket %q", lineNo, name)
		}
		seen[name] = true

		spec := SocketSpec{Name: name, Kind: node.KindData}
		if len(fields) > 1 {
			spec.Kind = node.ParseKind(fields[1])
		}
		specs = append(specs, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return specs, nil
}

// ReadSockets parses the socket file at path. A missing file yields no sockets.
func ReadSockets(path string) ([]SocketSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open socket file: %w", err)
	}
	defer f.Close()

	specs, err := ParseSockets(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse socket file %s: %w", path, err)
	}
	return specs, nil
}
