package mem

import (
	"context"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

type memHistoryRepo struct {
	s *memState
}

func (r memHistoryRepo) Append(ctx context.Context, h dom.TaskHistory) (dom.TaskHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextHistory++
	h.ID = r.s.nextHistory
	h.CreatedAt = now()
	r.s.history = append(r.s.history, h)
	return h, nil
}

func (r memHistoryRepo) ListByTask(ctx context.Context, taskID int64) ([]dom.TaskHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []dom.TaskHistory
	for i := len(r.s.history) - 1; i >= 0; i-- {
		if r.s.history[i].TaskID == taskID {
			list = append(list, r.s.history[i])
		}
	}
	return list, nil
}

func (r memHistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.history[:0]
	var removed int64
	for _, h := range r.s.history {
		if h.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, h)
	}
	r.s.history = kept
	return removed, nil
}
