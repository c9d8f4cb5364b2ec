package testutil

import (
	"bytes"
	"strings"
	"sync"
)

// SafeBuffer collects the log and node output of a run. Writes may come from
// the logger and from every node's forwarding goroutine at once.
type SafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (s *SafeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

// String returns everything written so far.
func (s *SafeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Lines returns the complete lines written so far that start with prefix,
// with the prefix removed.
func (s *SafeBuffer) Lines(prefix string) []string {
	var lines []string
	for _, line := range strings.Split(s.String(), "\n") {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			lines = append(lines, rest)
		}
	}
	return lines
}
