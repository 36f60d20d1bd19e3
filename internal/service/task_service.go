package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/k-iizuka000/ai-todo-sub007/internal/cache"
	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
	"github.com/k-iizuka000/ai-todo-sub007/internal/repo"

	"golang.org/x/sync/singleflight"
)

const defaultHistoryRetention = 90 * 24 * time.Hour

// TaskService is the transactional mutation core. Every mutation runs as
// one unit of work: the entity write, the tag-association bookkeeping and
// the audit entry commit together or not at all. Notification fan-out
// happens after commit and never affects the mutation's outcome.
type TaskService struct {
	store    repo.Store
	cache    *cache.TaskCache
	notifier *NotificationService
	log      *slog.Logger
	sf       singleflight.Group
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled;
// if notifier is nil, no fan-out happens.
func NewTaskService(store repo.Store, c *cache.TaskCache, notifier *NotificationService, log *slog.Logger) *TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{store: store, cache: c, notifier: notifier, log: log}
}

// CreateTaskInput carries the fields for a new task.
type CreateTaskInput struct {
	Title          string
	Description    string
	Status         dom.TaskStatus
	Priority       dom.TaskPriority
	ProjectID      *int64
	AssigneeID     *int64
	ParentID       *int64
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	TagIDs         []int64
}

// UpdateTaskInput is a partial update; nil fields are left unchanged.
// Tags, when present, replaces the whole association set; the delta is
// computed here, not by the caller.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *dom.TaskStatus
	Priority       *dom.TaskPriority
	ProjectID      *int64
	AssigneeID     *int64
	ParentID       *int64
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Tags           *[]int64
}

// Create inserts a task with its tags and a CREATED audit entry, all in
// one transaction. Status defaults to TODO, priority to MEDIUM.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput, userID int64) (dom.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return dom.Task{}, fmt.Errorf("%w: title is required", dom.ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = dom.StatusTodo
	}
	if !status.Valid() {
		return dom.Task{}, fmt.Errorf("%w: %q", dom.ErrInvalidStatus, in.Status)
	}
	if status == dom.StatusArchived {
		return dom.Task{}, fmt.Errorf("%w: cannot create a task as ARCHIVED", dom.ErrValidation)
	}
	priority := in.Priority
	if priority == "" {
		priority = dom.PriorityMedium
	}
	if !priority.Valid() {
		return dom.Task{}, fmt.Errorf("%w: unknown priority %q", dom.ErrValidation, in.Priority)
	}

	task := dom.Task{
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		Status:         status,
		Priority:       priority,
		ProjectID:      in.ProjectID,
		AssigneeID:     in.AssigneeID,
		ParentID:       in.ParentID,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
		ActualHours:    in.ActualHours,
		CreatedBy:      userID,
		UpdatedBy:      userID,
	}
	tagIDs := normalizeIDs(in.TagIDs)

	var out dom.Task
	err := s.store.InTx(ctx, func(ctx context.Context, st repo.Store) error {
		created, err := st.Tasks().Create(ctx, task)
		if err != nil {
			return err
		}
		if err := applyTagDelta(ctx, st, created.ID, nil, tagIDs, true); err != nil {
			return err
		}
		created.TagIDs = tagIDs
		if _, err := st.History().Append(ctx, dom.TaskHistory{
			TaskID:  created.ID,
			UserID:  userID,
			Action:  dom.ActionCreated,
			Changes: marshalChanges(initialValues(created)),
		}); err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return dom.Task{}, err
	}

	s.invalidateCache(ctx)
	if out.AssigneeID != nil {
		s.dispatch(ctx, TaskEvent{Type: dom.NotifTaskAssigned, Task: out, ActorID: userID})
	}
	return out, nil
}

// Update applies a partial update plus full-replace tag semantics, diffs
// the before/after state on the same transaction handle, and appends one
// audit entry when anything tracked changed. A no-op update writes no
// history.
func (s *TaskService) Update(ctx context.Context, id int64, in UpdateTaskInput, userID int64) (dom.Task, error) {
	var out dom.Task
	var before dom.Task
	err := s.store.InTx(ctx, func(ctx context.Context, st repo.Store) error {
		var err error
		before, err = st.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}

		patch := before
		if in.Title != nil {
			patch.Title = strings.TrimSpace(*in.Title)
			if patch.Title == "" {
				return fmt.Errorf("%w: title is required", dom.ErrValidation)
			}
		}
		if in.Description != nil {
			patch.Description = strings.TrimSpace(*in.Description)
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return fmt.Errorf("%w: %q", dom.ErrInvalidStatus, *in.Status)
			}
			patch.Status = *in.Status
		}
		if in.Priority != nil {
			if !in.Priority.Valid() {
				return fmt.Errorf("%w: unknown priority %q", dom.ErrValidation, *in.Priority)
			}
			patch.Priority = *in.Priority
		}
		if in.ProjectID != nil {
			patch.ProjectID = in.ProjectID
		}
		if in.AssigneeID != nil {
			patch.AssigneeID = in.AssigneeID
		}
		if in.ParentID != nil {
			patch.ParentID = in.ParentID
		}
		if in.DueDate != nil {
			patch.DueDate = in.DueDate
		}
		if in.EstimatedHours != nil {
			patch.EstimatedHours = in.EstimatedHours
		}
		if in.ActualHours != nil {
			patch.ActualHours = in.ActualHours
		}
		reconcileArchival(&patch, before)
		patch.UpdatedBy = userID

		updated, err := st.Tasks().Update(ctx, patch)
		if err != nil {
			return err
		}

		finalTags := before.TagIDs
		if in.Tags != nil {
			finalTags = normalizeIDs(*in.Tags)
			// Counts follow the task's state going into the delta; the
			// archive transition below settles the rest.
			if err := applyTagDelta(ctx, st, id, before.TagIDs, finalTags, !before.Archived()); err != nil {
				return err
			}
		}
		if err := settleArchiveCounts(ctx, st, before, updated, finalTags); err != nil {
			return err
		}
		updated.TagIDs = finalTags

		if diff := diffTasks(before, updated); len(diff) > 0 {
			if _, err := st.History().Append(ctx, dom.TaskHistory{
				TaskID:  id,
				UserID:  userID,
				Action:  historyAction(diff),
				Changes: marshalChanges(diff),
			}); err != nil {
				return err
			}
		}
		out = updated
		return nil
	})
	if err != nil {
		return dom.Task{}, err
	}

	s.invalidateCache(ctx)
	if assigneeChanged(before.AssigneeID, out.AssigneeID) && out.AssigneeID != nil {
		s.dispatch(ctx, TaskEvent{Type: dom.NotifTaskAssigned, Task: out, ActorID: userID})
	}
	if before.Status != out.Status {
		s.dispatch(ctx, TaskEvent{
			Type: dom.NotifStatusChanged, Task: out, ActorID: userID,
			OldStatus: before.Status, NewStatus: out.Status,
		})
	}
	return out, nil
}

// UpdateStatus changes only the status. Values outside the enum fail with
// ErrInvalidStatus before anything is touched; setting the same status is
// a no-op with no history row.
func (s *TaskService) UpdateStatus(ctx context.Context, id int64, status dom.TaskStatus, userID int64) (dom.Task, error) {
	if !status.Valid() {
		return dom.Task{}, fmt.Errorf("%w: %q", dom.ErrInvalidStatus, status)
	}
	var out dom.Task
	var before dom.Task
	err := s.store.InTx(ctx, func(ctx context.Context, st repo.Store) error {
		var err error
		before, err = st.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if before.Status == status {
			out = before
			return nil
		}
		patch := before
		patch.Status = status
		reconcileArchival(&patch, before)
		patch.UpdatedBy = userID

		updated, err := st.Tasks().Update(ctx, patch)
		if err != nil {
			return err
		}
		if err := settleArchiveCounts(ctx, st, before, updated, before.TagIDs); err != nil {
			return err
		}
		updated.TagIDs = before.TagIDs

		diff := diffTasks(before, updated)
		if _, err := st.History().Append(ctx, dom.TaskHistory{
			TaskID:  id,
			UserID:  userID,
			Action:  dom.ActionStatusChanged,
			Changes: marshalChanges(diff),
		}); err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return dom.Task{}, err
	}

	if before.Status != out.Status {
		s.invalidateCache(ctx)
		s.dispatch(ctx, TaskEvent{
			Type: dom.NotifStatusChanged, Task: out, ActorID: userID,
			OldStatus: before.Status, NewStatus: out.Status,
		})
	}
	return out, nil
}

// Archive soft-deletes: archived_at is stamped, status stays as it was,
// and the task's tags each lose one usage count since archived tasks do
// not participate in usage ranking. Archiving an archived task is a no-op.
func (s *TaskService) Archive(ctx context.Context, id int64, userID int64) error {
	var archived dom.Task
	var wasActive bool
	err := s.store.InTx(ctx, func(ctx context.Context, st repo.Store) error {
		before, err := st.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if before.Archived() {
			return nil
		}
		wasActive = true

		now := time.Now().UTC()
		patch := before
		patch.ArchivedAt = &now
		patch.UpdatedBy = userID
		updated, err := st.Tasks().Update(ctx, patch)
		if err != nil {
			return err
		}
		if err := st.Tags().AdjustUsage(ctx, before.TagIDs, -1); err != nil {
			return err
		}
		if _, err := st.History().Append(ctx, dom.TaskHistory{
			TaskID: id,
			UserID: userID,
			Action: dom.ActionArchived,
			Changes: marshalChanges(map[string]FieldChange{
				"archived_at": {From: nil, To: now.Format(time.RFC3339)},
			}),
		}); err != nil {
			return err
		}
		updated.TagIDs = before.TagIDs
		archived = updated
		return nil
	})
	if err != nil {
		return err
	}
	if wasActive {
		s.invalidateCache(ctx)
		s.dispatch(ctx, TaskEvent{Type: dom.NotifTaskArchived, Task: archived, ActorID: userID})
	}
	return nil
}

// Delete permanently removes the task and its associations. Usage counts
// drop once per live association (the archive already settled them for
// archived tasks) and the audit trail stays behind.
func (s *TaskService) Delete(ctx context.Context, id int64, userID int64) error {
	var deleted dom.Task
	err := s.store.InTx(ctx, func(ctx context.Context, st repo.Store) error {
		before, err := st.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !before.Archived() {
			if err := st.Tags().AdjustUsage(ctx, before.TagIDs, -1); err != nil {
				return err
			}
		}
		if _, err := st.History().Append(ctx, dom.TaskHistory{
			TaskID:  id,
			UserID:  userID,
			Action:  dom.ActionDeleted,
			Changes: marshalChanges(map[string]any{"title": before.Title}),
		}); err != nil {
			return err
		}
		if err := st.Tasks().Delete(ctx, id); err != nil {
			return err
		}
		deleted = before
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateCache(ctx)
	s.dispatch(ctx, TaskEvent{Type: dom.NotifTaskDeleted, Task: deleted, ActorID: userID})
	return nil
}

// Duplicate copies a task as a fresh creation: same fields, title
// suffixed, ownership reset to the actor, tags copied with their counts,
// and a brand-new audit trail starting at CREATED.
func (s *TaskService) Duplicate(ctx context.Context, id int64, userID int64) (dom.Task, error) {
	var out dom.Task
	err := s.store.InTx(ctx, func(ctx context.Context, st repo.Store) error {
		src, err := st.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		copyTask := src
		copyTask.ID = 0
		copyTask.Title = src.Title + " (copy)"
		copyTask.CreatedBy = userID
		copyTask.UpdatedBy = userID
		copyTask.ArchivedAt = nil
		if copyTask.Status == dom.StatusArchived {
			copyTask.Status = dom.StatusTodo
		}
		created, err := st.Tasks().Create(ctx, copyTask)
		if err != nil {
			return err
		}
		if err := applyTagDelta(ctx, st, created.ID, nil, src.TagIDs, true); err != nil {
			return err
		}
		created.TagIDs = src.TagIDs
		if _, err := st.History().Append(ctx, dom.TaskHistory{
			TaskID:  created.ID,
			UserID:  userID,
			Action:  dom.ActionCreated,
			Changes: marshalChanges(initialValues(created)),
		}); err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return dom.Task{}, err
	}

	s.invalidateCache(ctx)
	if out.AssigneeID != nil {
		s.dispatch(ctx, TaskEvent{Type: dom.NotifTaskAssigned, Task: out, ActorID: userID})
	}
	return out, nil
}

// Get returns one task, archived or not.
func (s *TaskService) Get(ctx context.Context, id int64) (dom.Task, error) {
	return s.store.Tasks().GetByID(ctx, id)
}

// List returns a filtered, sorted page of tasks. Archived tasks are
// excluded unless the filter opts in.
func (s *TaskService) List(ctx context.Context, f dom.TaskFilter, p dom.Pagination, ord dom.SortOrder) ([]dom.Task, dom.PageInfo, error) {
	p = p.Normalize()
	items, total, err := s.store.Tasks().List(ctx, f, p, ord)
	if err != nil {
		return nil, dom.PageInfo{}, err
	}
	return items, dom.NewPageInfo(p, total), nil
}

// History returns the audit trail for a task, newest first. The trail of
// a deleted task remains queryable.
func (s *TaskService) History(ctx context.Context, taskID int64) ([]dom.TaskHistory, error) {
	return s.store.History().ListByTask(ctx, taskID)
}

// Stats aggregates the user's active tasks, cached behind singleflight.
func (s *TaskService) Stats(ctx context.Context, userID int64, projectID *int64) (dom.TaskStats, error) {
	if s.cache == nil {
		return s.store.Tasks().Stats(ctx, userID, projectID)
	}
	key := "stats:" + strconv.FormatInt(userID, 10)
	if projectID != nil {
		key += ":p" + strconv.FormatInt(*projectID, 10)
	}
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if cached, err := s.cache.GetStats(ctx, userID, projectID); err == nil && cached != nil {
			return *cached, nil
		}
		stats, err := s.store.Tasks().Stats(ctx, userID, projectID)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetStats(ctx, userID, projectID, stats)
		return stats, nil
	})
	if err != nil {
		return dom.TaskStats{}, err
	}
	return v.(dom.TaskStats), nil
}

// CleanupHistory is the explicit audit retention operation; nothing else
// ever deletes history. Zero age means the 90-day default.
func (s *TaskService) CleanupHistory(ctx context.Context, age time.Duration) (int64, error) {
	if age <= 0 {
		age = defaultHistoryRetention
	}
	return s.store.History().DeleteOlderThan(ctx, time.Now().UTC().Add(-age))
}

// reconcileArchival keeps archived_at in sync with status: moving into
// ARCHIVED stamps it, moving out clears it. Archive() itself touches only
// archived_at, so the implication runs one way.
func reconcileArchival(patch *dom.Task, before dom.Task) {
	switch {
	case patch.Status == dom.StatusArchived && !before.Archived():
		now := time.Now().UTC()
		patch.ArchivedAt = &now
	case patch.Status != dom.StatusArchived && before.Archived() && patch.Status != before.Status:
		patch.ArchivedAt = nil
	}
}

// settleArchiveCounts moves usage counts when a mutation crosses the
// active/archived boundary: the final tag set leaves or re-enters active
// accounting as a whole.
func settleArchiveCounts(ctx context.Context, st repo.Store, before, after dom.Task, finalTags []int64) error {
	switch {
	case !before.Archived() && after.Archived():
		return st.Tags().AdjustUsage(ctx, finalTags, -1)
	case before.Archived() && !after.Archived():
		return st.Tags().AdjustUsage(ctx, finalTags, 1)
	}
	return nil
}

func assigneeChanged(before, after *int64) bool {
	switch {
	case before == nil && after == nil:
		return false
	case before == nil || after == nil:
		return true
	default:
		return *before != *after
	}
}

func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("cache invalidation failed", "err", err)
		}
	}
}

func (s *TaskService) dispatch(ctx context.Context, ev TaskEvent) {
	if s.notifier != nil {
		s.notifier.Dispatch(ctx, ev)
	}
}
