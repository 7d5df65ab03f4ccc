package notify

import (
	"testing"

	"alphawealth/internal/amqp"
)

func TestHubDeliversToOwnerOnly(t *testing.T) {
	hub := NewHub()
	alice := hub.Subscribe("alice")
	bob := hub.Subscribe("bob")

	hub.Publish(amqp.NewChangeEvent(amqp.TableTransactions, amqp.ActionCreated, "tx-1", "alice", 1))

	select {
	case ev := <-alice.Events:
		if ev.EntityID != "tx-1" {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatalf("alice should have received the event")
	}

	select {
	case ev := <-bob.Events:
		t.Fatalf("bob must not see alice's event: %+v", ev)
	default:
	}
}

func TestHubSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("u1")

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(amqp.NewChangeEvent(amqp.TableAccounts, amqp.ActionUpdated, "a-1", "u1", 0))
	}

	if got := len(sub.Events); got != subscriberBuffer {
		t.Fatalf("buffered = %d, want %d", got, subscriberBuffer)
	}
}

func TestHubListenersSeeEveryEvent(t *testing.T) {
	hub := NewHub()
	var seen []string
	hub.AddListener(func(ev *amqp.ChangeEvent) {
		seen = append(seen, ev.UserID)
	})

	// Listeners fire even when the user has no live subscribers.
	hub.Publish(amqp.NewChangeEvent(amqp.TableTransactions, amqp.ActionCreated, "tx-1", "alice", 1))
	hub.Publish(amqp.NewChangeEvent(amqp.TableBudgets, amqp.ActionDeleted, "b-1", "bob", 0))

	if len(seen) != 2 || seen[0] != "alice" || seen[1] != "bob" {
		t.Fatalf("unexpected listener calls %v", seen)
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("u1")
	hub.Unsubscribe(sub)

	if _, ok := <-sub.Events; ok {
		t.Fatalf("channel should be closed")
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("subscriber count should be 0")
	}

	// Double unsubscribe must not panic.
	hub.Unsubscribe(sub)

	// Publishing after unsubscribe is a no-op.
	hub.Publish(amqp.NewChangeEvent(amqp.TableBudgets, amqp.ActionDeleted, "b-1", "u1", 0))
}
