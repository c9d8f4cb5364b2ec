package runner

import (
	"sync"

	"github.com/specialistvlad/scriptgrid/internal/executor"
)

// CompletionQueue is the FIFO of process exits waiting to be reconciled.
// Push is called from launcher goroutines; Drain and Clear from the owner.
type CompletionQueue struct {
	mu    sync.Mutex
	items []executor.Completion
	// notify holds at most one pending wake-up for Serve.
	notify chan struct{}
}

// NewCompletionQueue creates an empty queue.
func NewCompletionQueue() *CompletionQueue {
	return &CompletionQueue{notify: make(chan struct{}, 1)}
}

// Push appends a completion. It never blocks.
func (q *CompletionQueue) Push(c executor.Completion) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns everything queued, oldest first.
func (q *CompletionQueue) Drain() []executor.Completion {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Clear discards everything queued.
func (q *CompletionQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Len returns the number of queued completions.
func (q *CompletionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready fires after a Push.
func (q *CompletionQueue) Ready() <-chan struct{} {
	return q.notify
}
