// Package authstate is the single source of truth for "who is signed in".
// The auth module publishes every identity change (sign-in, sign-out) and
// interested components subscribe once at startup, mirroring how the old
// client hung everything off one auth-state listener.
package authstate

import "sync"

// EventKind distinguishes identity-change notifications.
type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Event describes one identity change.
type Event struct {
	Kind     EventKind
	UserID   string
	Email    string
	Role     string
	Provider string
}

// Notifier fans identity-change events out to subscribers. Implemented as an
// interface pair so tests can inject a fake stream.
type Notifier interface {
	Publish(Event)
}

// Stream is the subscription side of a Notifier.
type Stream interface {
	Subscribe() <-chan Event
	Close()
}

// Broadcaster is the in-process Notifier/Stream implementation.
type Broadcaster struct {
	mu        sync.Mutex
	listeners []chan Event
	closed    bool
}

func NewBroadcaster() *Broadcaster { return &Broadcaster{} }

// Publish delivers the event to every subscriber. Slow subscribers drop
// events rather than block the publishing request handler.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a new listener channel.
func (b *Broadcaster) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, 16)
	if b.closed {
		close(ch)
		return ch
	}
	b.listeners = append(b.listeners, ch)
	return ch
}

// Close shuts down all listener channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.listeners {
		close(ch)
	}
	b.listeners = nil
}
