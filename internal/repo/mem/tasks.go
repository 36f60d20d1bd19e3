package mem

import (
	"context"
	"sort"
	"strings"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

type memTaskRepo struct {
	s *memState
}

func (r memTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextTask++
	t.ID = r.s.nextTask
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	t.UpdatedBy = t.CreatedBy
	t.TagIDs = nil
	r.s.tasks[t.ID] = t
	r.s.taskTags[t.ID] = make(map[int64]bool)
	return t, nil
}

func (r memTaskRepo) GetByID(ctx context.Context, id int64) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return dom.Task{}, dom.ErrNotFound
	}
	t.TagIDs = r.s.tagIDsLocked(id)
	return t, nil
}

func (r memTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.tasks[t.ID]
	if !ok {
		return dom.Task{}, dom.ErrNotFound
	}
	t.CreatedAt = old.CreatedAt
	t.CreatedBy = old.CreatedBy
	t.UpdatedAt = now()
	t.TagIDs = nil
	r.s.tasks[t.ID] = t
	t.TagIDs = r.s.tagIDsLocked(t.ID)
	return t, nil
}

func (r memTaskRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return dom.ErrNotFound
	}
	delete(r.s.tasks, id)
	delete(r.s.taskTags, id)
	// Mirror the parent_task_id ON DELETE SET NULL behavior.
	for cid, child := range r.s.tasks {
		if child.ParentID != nil && *child.ParentID == id {
			child.ParentID = nil
			r.s.tasks[cid] = child
		}
	}
	return nil
}

func (r memTaskRepo) List(ctx context.Context, f dom.TaskFilter, p dom.Pagination, ord dom.SortOrder) ([]dom.Task, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p = p.Normalize()

	var matched []dom.Task
	for id, t := range r.s.tasks {
		if r.s.matchesLocked(t, f) {
			t.TagIDs = r.s.tagIDsLocked(id)
			matched = append(matched, t)
		}
	}
	sortTasks(matched, ord)

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

func (s *memState) matchesLocked(t dom.Task, f dom.TaskFilter) bool {
	if !f.IncludeArchived && t.ArchivedAt != nil {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, t.Priority) {
		return false
	}
	if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
		return false
	}
	if f.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *f.AssigneeID) {
		return false
	}
	if f.DueFrom != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueFrom)) {
		return false
	}
	if f.DueTo != nil && (t.DueDate == nil || t.DueDate.After(*f.DueTo)) {
		return false
	}
	if len(f.TagIDs) > 0 {
		set := s.taskTags[t.ID]
		any := false
		for _, id := range f.TagIDs {
			if set[id] {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

func containsStatus(set []dom.TaskStatus, s dom.TaskStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(set []dom.TaskPriority, p dom.TaskPriority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

var priorityWeight = map[dom.TaskPriority]int{
	dom.PriorityLow: 1, dom.PriorityMedium: 2, dom.PriorityHigh: 3,
	dom.PriorityUrgent: 4, dom.PriorityCritical: 5,
}

func sortTasks(list []dom.Task, ord dom.SortOrder) {
	field := ord.Field
	desc := ord.Desc
	if _, ok := map[string]bool{"created_at": true, "updated_at": true, "due_date": true,
		"title": true, "status": true, "priority": true}[field]; !ok {
		field, desc = "created_at", true
	}
	less := func(a, b dom.Task) bool {
		switch field {
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "due_date":
			switch {
			case a.DueDate == nil:
				return b.DueDate != nil
			case b.DueDate == nil:
				return false
			default:
				return a.DueDate.Before(*b.DueDate)
			}
		case "title":
			return a.Title < b.Title
		case "status":
			return a.Status < b.Status
		case "priority":
			return priorityWeight[a.Priority] < priorityWeight[b.Priority]
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if less(a, b) != less(b, a) {
			if desc {
				return less(b, a)
			}
			return less(a, b)
		}
		if desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
}

func (s *memState) tagIDsLocked(taskID int64) []int64 {
	set := s.taskTags[taskID]
	if len(set) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r memTaskRepo) TagIDs(ctx context.Context, taskID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.tagIDsLocked(taskID), nil
}

func (r memTaskRepo) TagIDsForTasks(ctx context.Context, taskIDs []int64) (map[int64][]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[int64][]int64, len(taskIDs))
	for _, id := range taskIDs {
		if ids := r.s.tagIDsLocked(id); ids != nil {
			out[id] = ids
		}
	}
	return out, nil
}

func (r memTaskRepo) Stats(ctx context.Context, userID int64, projectID *int64) (dom.TaskStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := dom.TaskStats{
		ByStatus:   make(map[dom.TaskStatus]int64),
		ByPriority: make(map[dom.TaskPriority]int64),
	}
	for _, t := range r.s.tasks {
		if t.ArchivedAt != nil {
			continue
		}
		if t.CreatedBy != userID && (t.AssigneeID == nil || *t.AssigneeID != userID) {
			continue
		}
		if projectID != nil && (t.ProjectID == nil || *t.ProjectID != *projectID) {
			continue
		}
		stats.Total++
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
	}
	return stats, nil
}
