package events

import (
	"sync"

	"github.com/specialistvlad/scriptgrid/internal/pubsub"
)

// Recorder is a Publisher that keeps every event in memory. Useful in tests
// and for the status snapshot of the last run.
type Recorder struct {
	mu     sync.Mutex
	events []pubsub.Event[Notice]
}

func (r *Recorder) Publish(eventType pubsub.EventType, payload Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, pubsub.Event[Notice]{Type: eventType, Payload: payload})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []pubsub.Event[Notice] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]pubsub.Event[Notice], len(r.events))
	copy(out, r.events)
	return out
}

// Of returns the payloads of the recorded events of the given type.
func (r *Recorder) Of(eventType pubsub.EventType) []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notice
	for _, ev := range r.events {
		if ev.Type == eventType {
			out = append(out, ev.Payload)
		}
	}
	return out
}

// Fanout publishes to several publishers in order.
type Fanout []Publisher

func (f Fanout) Publish(eventType pubsub.EventType, payload Notice) {
	for _, p := range f {
		p.Publish(eventType, payload)
	}
}
