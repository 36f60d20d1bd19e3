package mem

import (
	"context"
	"sort"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

type memNotificationRepo struct {
	s *memState
}

func (r memNotificationRepo) Create(ctx context.Context, n dom.Notification) (dom.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.createNotifLocked(n), nil
}

func (s *memState) createNotifLocked(n dom.Notification) dom.Notification {
	s.nextNotif++
	n.ID = s.nextNotif
	n.Read = false
	n.CreatedAt = now()
	n.UpdatedAt = n.CreatedAt
	s.notifs[n.ID] = n
	return n
}

func (r memNotificationRepo) CreateBulk(ctx context.Context, ns []dom.Notification) ([]dom.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]dom.Notification, 0, len(ns))
	for _, n := range ns {
		out = append(out, r.s.createNotifLocked(n))
	}
	return out, nil
}

func (r memNotificationRepo) ListByUser(ctx context.Context, userID int64, unreadOnly bool, p dom.Pagination) ([]dom.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p = p.Normalize()
	var matched []dom.Notification
	for _, n := range r.s.notifs {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))
	lo := p.Offset()
	if lo >= len(matched) {
		return nil, total, nil
	}
	hi := lo + p.PageSize
	if hi > len(matched) {
		hi = len(matched)
	}
	return matched[lo:hi], total, nil
}

func (r memNotificationRepo) MarkRead(ctx context.Context, userID int64, ids []int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		v, ok := r.s.notifs[id]
		if !ok || v.UserID != userID || v.Read {
			continue
		}
		v.Read = true
		v.UpdatedAt = now()
		r.s.notifs[id] = v
		n++
	}
	return n, nil
}

func (r memNotificationRepo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, v := range r.s.notifs {
		if v.UserID != userID || v.Read {
			continue
		}
		v.Read = true
		v.UpdatedAt = now()
		r.s.notifs[id] = v
		n++
	}
	return n, nil
}

func (r memNotificationRepo) Delete(ctx context.Context, userID int64, ids []int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if v, ok := r.s.notifs[id]; ok && v.UserID == userID {
			delete(r.s.notifs, id)
			n++
		}
	}
	return n, nil
}

func (r memNotificationRepo) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, v := range r.s.notifs {
		if v.Read && v.CreatedAt.Before(cutoff) {
			delete(r.s.notifs, id)
			n++
		}
	}
	return n, nil
}

func (r memNotificationRepo) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, v := range r.s.notifs {
		if v.UserID == userID && !v.Read {
			n++
		}
	}
	return n, nil
}
