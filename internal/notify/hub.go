// Package notify fans change events out to live subscribers. Each API
// instance consumes the broker's change stream through its own broadcast
// queue and forwards every event to the connected clients of the affected
// user.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"alphawealth/internal/amqp"
)

const subscriberBuffer = 16

type Subscriber struct {
	UserID string
	Events chan *amqp.ChangeEvent
}

type Hub struct {
	mu        sync.Mutex
	subs      map[string]map[*Subscriber]struct{}
	listeners []func(*amqp.ChangeEvent)
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscriber]struct{})}
}

// AddListener registers a callback invoked for every published event, before
// subscriber fanout. The HTTP layer uses it to drop cached analytics for the
// affected user. Register listeners before Run; registration is not
// synchronized with publishing.
func (h *Hub) AddListener(fn func(*amqp.ChangeEvent)) {
	h.listeners = append(h.listeners, fn)
}

func (h *Hub) Subscribe(userID string) *Subscriber {
	sub := &Subscriber{
		UserID: userID,
		Events: make(chan *amqp.ChangeEvent, subscriberBuffer),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscriber]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.UserID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.UserID)
	}
	close(sub.Events)
}

// Publish delivers the event to every subscriber of its user. Delivery never
// blocks: a subscriber whose buffer is full misses this event, which is
// acceptable because events carry no state and clients refetch on receipt.
func (h *Hub) Publish(ev *amqp.ChangeEvent) {
	for _, fn := range h.listeners {
		fn(ev)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[ev.UserID] {
		select {
		case sub.Events <- ev:
		default:
		}
	}
}

// SubscriberCount reports the number of live subscribers across all users.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, set := range h.subs {
		n += len(set)
	}
	return n
}

// Run consumes the change stream and feeds the hub until ctx is cancelled.
func (h *Hub) Run(ctx context.Context, client *amqp.Client) error {
	queue, err := client.BroadcastQueue("#")
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Notification hub consuming change events", "queue", queue)
	return client.Consume(ctx, queue, func(ev *amqp.ChangeEvent) error {
		h.Publish(ev)
		return nil
	})
}
