// Package events carries planner lifecycle notifications from the service to
// whoever is watching: the server log, the terminal browser.
package events

import (
	"sync"
	"sync/atomic"
)

const defaultBufSize = 256

// subscription is one subscriber channel. An empty topic receives everything.
type subscription struct {
	topic string
	ch    chan Event
}

func (s subscription) wants(topic string) bool {
	return s.topic == "" || s.topic == topic
}

// EventBus fans events out to buffered subscriber channels. Publishing never
// waits on a slow subscriber; the event is dropped for that subscriber and
// counted instead.
type EventBus struct {
	mu      sync.RWMutex
	subs    []subscription
	closed  bool
	dropped atomic.Uint64
}

// NewEventBus creates an open bus with no subscribers.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe returns a channel that receives events published on topic.
// bufSize <= 0 selects the default buffer of 256.
func (b *EventBus) Subscribe(topic string, bufSize int) <-chan Event {
	return b.add(topic, bufSize)
}

// SubscribeAll returns a channel that receives events from every topic.
func (b *EventBus) SubscribeAll(bufSize int) <-chan Event {
	return b.add("", bufSize)
}

func (b *EventBus) add(topic string, bufSize int) <-chan Event {
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	sub := subscription{topic: topic, ch: make(chan Event, bufSize)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub.ch
	}
	b.subs = append(b.subs, sub)
	return sub.ch
}

// Unsubscribe detaches and closes a channel returned by Subscribe or
// SubscribeAll. Unknown channels are ignored.
func (b *EventBus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for i, sub := range b.subs {
		if (<-chan Event)(sub.ch) == ch {
			close(sub.ch)
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers event to every subscriber of topic and every
// SubscribeAll channel. Nothing happens after Close.
func (b *EventBus) Publish(topic string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		if !sub.wants(topic) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped reports how many deliveries were skipped because a subscriber's
// buffer was full.
func (b *EventBus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel. Later calls do nothing.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
}
