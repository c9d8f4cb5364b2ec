package events

import "github.com/specialistvlad/scriptgrid/internal/pubsub"

// Message is the wire form of an event sent to monitors: the event type
// next to the flattened notice fields.
type Message struct {
	Type pubsub.EventType `json:"type" yaml:"type"`
	Notice
}

// MessageFrom converts a bus event into its wire form.
func MessageFrom(ev pubsub.Event[Notice]) Message {
	return Message{Type: ev.Type, Notice: ev.Payload}
}
