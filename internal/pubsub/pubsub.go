// Package pubsub is a small generic publish/subscribe broker. By default
// publishing never blocks: a subscriber whose buffer is full misses the
// event. Lossless subscriptions instead hold the publisher until there is
// room, except for the event types they name as droppable.
package pubsub

import (
	"context"
	"time"
)

// EventType names the kind of a published event.
type EventType string

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context, opts ...SubscribeOption) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

// Discard is a Publisher that drops every event.
type Discard[T any] struct{}

func (Discard[T]) Publish(EventType, T) {}
