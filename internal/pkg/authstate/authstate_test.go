package authstate

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()

	b.Publish(Event{Kind: SignedIn, UserID: "u1", Provider: "password"})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Kind != SignedIn || ev.UserID != "u1" {
				t.Fatalf("subscriber %d got %+v", i, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the event", i)
		}
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()

	// Fill the buffer and then some; Publish must not block.
	for i := 0; i < 100; i++ {
		b.Publish(Event{Kind: SignedOut})
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
			continue
		default:
		}
		break
	}
	if drained == 0 || drained > 16 {
		t.Fatalf("drained = %d, want 1..16", drained)
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	b.Close()

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}

	// Publish and Subscribe after Close are safe no-ops.
	b.Publish(Event{Kind: SignedIn})
	if _, ok := <-b.Subscribe(); ok {
		t.Fatal("post-close subscription should be closed immediately")
	}
}
