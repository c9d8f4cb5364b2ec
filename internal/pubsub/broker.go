package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 256

// Broker fans events out to every live subscription.
type Broker[T any] struct {
	mu         sync.RWMutex
	subs       map[chan Event[T]]*subscription
	done       chan struct{}
	bufferSize int
}

// NewBroker creates a broker with the default per-subscriber buffer.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker with the given per-subscriber buffer.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:       make(map[chan Event[T]]*subscription),
		done:       make(chan struct{}),
		bufferSize: size,
	}
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscription)

type subscription struct {
	only      map[EventType]bool
	except    map[EventType]bool
	lossless  bool
	droppable map[EventType]bool
	ctxDone   <-chan struct{}
}

// OnlyTypes delivers just the given event types.
func OnlyTypes(types ...EventType) SubscribeOption {
	return func(s *subscription) {
		s.only = typeSet(types)
	}
}

// ExceptTypes delivers every event type but the given ones.
func ExceptTypes(types ...EventType) SubscribeOption {
	return func(s *subscription) {
		s.except = typeSet(types)
	}
}

// Lossless makes Publish wait for buffer room instead of dropping the event.
// Events of the droppable types are still dropped when the buffer is full.
func Lossless(droppable ...EventType) SubscribeOption {
	return func(s *subscription) {
		s.lossless = true
		s.droppable = typeSet(droppable)
	}
}

func typeSet(types []EventType) map[EventType]bool {
	set := make(map[EventType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

func (s *subscription) wants(t EventType) bool {
	if s.only != nil && !s.only[t] {
		return false
	}
	return !s.except[t]
}

func (s *subscription) blocks(t EventType) bool {
	return s.lossless && !s.droppable[t]
}

// Subscribe registers a subscription. The channel is closed when ctx is done
// or the broker closes, whichever happens first.
func (b *Broker[T]) Subscribe(ctx context.Context, opts ...SubscribeOption) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	cfg := &subscription{ctxDone: ctx.Done()}
	for _, opt := range opts {
		opt(cfg)
	}
	sub := make(chan Event[T], b.bufferSize)
	b.subs[sub] = cfg

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[sub]; ok {
			delete(b.subs, sub)
			close(sub)
		}
	}()

	return sub
}

// Publish delivers the event to every interested subscriber. It drops the
// event for subscribers with a full buffer, unless the subscription is
// lossless for its type; then it waits until the event is taken or the
// subscription's context ends.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed() {
		return
	}

	event := Event[T]{Type: eventType, Payload: payload, Timestamp: time.Now()}
	for sub, cfg := range b.subs {
		if !cfg.wants(eventType) {
			continue
		}
		if cfg.blocks(eventType) {
			select {
			case sub <- event:
			case <-cfg.ctxDone:
			}
			continue
		}
		select {
		case sub <- event:
		default:
		}
	}
}

// Close shuts the broker down and closes every subscription. Safe to call twice.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		return
	}
	close(b.done)
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// SubscriberCount returns the number of active subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker[T]) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}
