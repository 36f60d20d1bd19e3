// Package bus is the in-process publish/subscribe channel for real-time
// notification delivery. Delivery is best-effort: a publish never blocks,
// and a subscriber whose buffer is full simply misses the push (the
// durable notification row remains authoritative).
package bus

import (
	"sync"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

const subscriberBuffer = 16

// Bus fans notifications out to live subscribers keyed by user id.
// Zero, one or many subscribers per user are all fine.
type Bus struct {
	mu   sync.RWMutex
	subs map[int64]map[*Subscriber]struct{}
}

// Subscriber receives pushes for one user on C until Close.
type Subscriber struct {
	C      chan dom.Notification
	userID int64
	bus    *Bus
	once   sync.Once
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int64]map[*Subscriber]struct{})}
}

// Subscribe registers a live channel for the user.
func (b *Bus) Subscribe(userID int64) *Subscriber {
	s := &Subscriber{C: make(chan dom.Notification, subscriberBuffer), userID: userID, bus: b}
	b.mu.Lock()
	set := b.subs[userID]
	if set == nil {
		set = make(map[*Subscriber]struct{})
		b.subs[userID] = set
	}
	set[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Close unregisters the subscriber and closes its channel. Safe to call
// more than once.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		b := s.bus
		b.mu.Lock()
		if set := b.subs[s.userID]; set != nil {
			delete(set, s)
			if len(set) == 0 {
				delete(b.subs, s.userID)
			}
		}
		b.mu.Unlock()
		close(s.C)
	})
}

// Publish delivers n to every live subscriber for the target user without
// ever blocking: full buffers drop the push.
func (b *Bus) Publish(n dom.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs[n.UserID] {
		select {
		case s.C <- n:
		default:
		}
	}
}

// SubscriberCount reports live subscribers for a user.
func (b *Bus) SubscriberCount(userID int64) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}
