package auth

import (
	"sync"

	"github.com/google/uuid"
)

// EventKind names a session change.
type EventKind string

const (
	EventSignedIn         EventKind = "SIGNED_IN"
	EventSignedOut        EventKind = "SIGNED_OUT"
	EventTokenRefreshed   EventKind = "TOKEN_REFRESHED"
	EventUserUpdated      EventKind = "USER_UPDATED"
	EventPasswordRecovery EventKind = "PASSWORD_RECOVERY"
)

// Event is a session change notification. Session is nil for EventSignedOut.
// For EventUserUpdated, User carries the new user state and applies to every
// session of that user.
type Event struct {
	Kind      EventKind
	SessionID string
	UserID    uuid.UUID
	Session   *Session
	User      *User
}

// Subscription is returned by Hub.Subscribe. Unsubscribe is idempotent.
type Subscription struct {
	hub *Hub
	id  uint64
}

// Unsubscribe stops delivery to the subscriber. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.hub == nil {
		return
	}
	s.hub.remove(s.id)
}

// Hub fans session change events out to in-process subscribers.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func(Event)
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]func(Event))}
}

// Subscribe registers fn for every future event.
func (h *Hub) Subscribe(fn func(Event)) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	h.subs[h.nextID] = fn
	return &Subscription{hub: h, id: h.nextID}
}

// Publish delivers ev to every subscriber synchronously. Callbacks run
// outside the hub lock, so a callback may unsubscribe itself.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	fns := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}
