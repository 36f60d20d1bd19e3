package mem

import (
	"context"
	"fmt"
	"sort"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

type memTagRepo struct {
	s *memState
}

func (r memTagRepo) Create(ctx context.Context, name, color string) (dom.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tags {
		if t.Name == name {
			return dom.Tag{}, fmt.Errorf("%w: tag name %q", dom.ErrConflict, name)
		}
	}
	r.s.nextTag++
	t := dom.Tag{ID: r.s.nextTag, Name: name, Color: color, CreatedAt: now()}
	r.s.tags[t.ID] = t
	return t, nil
}

func (r memTagRepo) GetByID(ctx context.Context, id int64) (dom.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tags[id]
	if !ok {
		return dom.Tag{}, dom.ErrNotFound
	}
	return t, nil
}

func (r memTagRepo) List(ctx context.Context) ([]dom.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]dom.Tag, 0, len(r.s.tags))
	for _, t := range r.s.tags {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UsageCount != list[j].UsageCount {
			return list[i].UsageCount > list[j].UsageCount
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (r memTagRepo) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.s.tags[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r memTagRepo) Attach(ctx context.Context, taskID int64, tagIDs []int64, countUsage bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := r.s.taskTags[taskID]
	if set == nil {
		set = make(map[int64]bool)
		r.s.taskTags[taskID] = set
	}
	for _, id := range tagIDs {
		if _, ok := r.s.tags[id]; !ok {
			return fmt.Errorf("%w: task_tags.tag_id", dom.ErrConstraint)
		}
		set[id] = true
	}
	if countUsage {
		r.s.adjustUsageLocked(tagIDs, 1)
	}
	return nil
}

func (r memTagRepo) Detach(ctx context.Context, taskID int64, tagIDs []int64, countUsage bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := r.s.taskTags[taskID]
	for _, id := range tagIDs {
		delete(set, id)
	}
	if countUsage {
		r.s.adjustUsageLocked(tagIDs, -1)
	}
	return nil
}

func (r memTagRepo) AdjustUsage(ctx context.Context, tagIDs []int64, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.adjustUsageLocked(tagIDs, delta)
	return nil
}

func (s *memState) adjustUsageLocked(tagIDs []int64, delta int64) {
	for _, id := range tagIDs {
		if t, ok := s.tags[id]; ok {
			t.UsageCount += delta
			s.tags[id] = t
		}
	}
}
