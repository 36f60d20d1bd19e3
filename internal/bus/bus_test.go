package bus

import (
	"testing"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

func TestPublishReachesOnlyTargetUser(t *testing.T) {
	b := New()
	s1 := b.Subscribe(1)
	defer s1.Close()
	s2 := b.Subscribe(2)
	defer s2.Close()

	b.Publish(dom.Notification{ID: 10, UserID: 1})

	select {
	case n := <-s1.C:
		if n.ID != 10 {
			t.Errorf("got notification %d", n.ID)
		}
	default:
		t.Fatal("subscriber 1 got nothing")
	}
	select {
	case n := <-s2.C:
		t.Errorf("subscriber 2 unexpectedly got %d", n.ID)
	default:
	}
}

func TestPublishFanOutToMultipleSubscribers(t *testing.T) {
	b := New()
	a := b.Subscribe(1)
	defer a.Close()
	c := b.Subscribe(1)
	defer c.Close()

	b.Publish(dom.Notification{ID: 1, UserID: 1})

	for i, s := range []*Subscriber{a, c} {
		select {
		case <-s.C:
		default:
			t.Errorf("subscriber %d got nothing", i)
		}
	}
}

func TestPublishNeverBlocksOnFullBuffer(t *testing.T) {
	b := New()
	s := b.Subscribe(1)
	defer s.Close()

	// Overfill the buffer; the extra publishes must drop, not hang.
	for i := 0; i < subscriberBuffer+5; i++ {
		b.Publish(dom.Notification{ID: int64(i), UserID: 1})
	}
	if got := len(s.C); got != subscriberBuffer {
		t.Errorf("buffered = %d, want %d", got, subscriberBuffer)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := New()
	b.Publish(dom.Notification{UserID: 42}) // must not panic
}

func TestCloseUnregistersAndIsIdempotent(t *testing.T) {
	b := New()
	s := b.Subscribe(7)
	if got := b.SubscriberCount(7); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}

	s.Close()
	s.Close()

	if got := b.SubscriberCount(7); got != 0 {
		t.Errorf("count = %d after close, want 0", got)
	}
	if _, ok := <-s.C; ok {
		t.Error("channel not closed")
	}
	// Publishing after close must not panic on the closed channel.
	b.Publish(dom.Notification{UserID: 7})
}
