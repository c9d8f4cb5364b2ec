package executor

import (
	"bufio"
	"errors"
	"io"
	"sync"

	"github.com/specialistvlad/scriptgrid/internal/events"
)

const (
	streamStdout = "stdout"
	streamStderr = "stderr"

	// stderrTail is how many trailing stderr lines are kept for ExitError.
	stderrTail = 5

	readBufferBytes = 64 * 1024
	// maxLineBytes caps a forwarded line.
	maxLineBytes = 1024 * 1024
)

// tail keeps the last few lines written to it.
type tail struct {
	mu    sync.Mutex
	lines []string
}

func (t *tail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > stderrTail {
		t.lines = t.lines[len(t.lines)-stderrTail:]
	}
}

func (t *tail) snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

// forward reads r line by line and publishes each line as "<id>> <line>".
// Lines longer than maxLineBytes are cut; the rest of such a line is read and
// discarded so the writer never blocks on a full pipe.
func (p *Process) forward(r io.Reader, stream string, keep *tail) {
	br := bufio.NewReaderSize(r, readBufferBytes)
	var line []byte
	truncated := false

	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				p.logger.Debug("Output reader stopped.", "stream", stream, "error", err)
			}
			return
		}
		room := maxLineBytes - len(line)
		if len(chunk) > room {
			chunk = chunk[:room]
			truncated = true
		}
		line = append(line, chunk...)
		if isPrefix {
			continue
		}

		if truncated {
			p.logger.Debug("Output line truncated.", "stream", stream, "limit", maxLineBytes)
		}
		p.publishLine(stream, string(line), keep)
		line = line[:0]
		truncated = false
	}
}

func (p *Process) publishLine(stream, line string, keep *tail) {
	if keep != nil {
		keep.add(line)
	}
	p.publisher.Publish(events.NodeOutput, events.Notice{
		RunID:  p.runID,
		Node:   p.node.ID,
		Stream: stream,
		Line:   p.node.ID + "> " + line,
	})
}
