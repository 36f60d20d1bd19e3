package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
	"github.com/k-iizuka000/ai-todo-sub007/internal/repo/mem"
)

func newTestService(t *testing.T) (*TaskService, *mem.Mem) {
	t.Helper()
	store := mem.New()
	return NewTaskService(store, nil, nil, nil), store
}

func mustTag(t *testing.T, store *mem.Mem, name string) dom.Tag {
	t.Helper()
	tag, err := store.Tags().Create(context.Background(), name, "")
	if err != nil {
		t.Fatalf("create tag %q: %v", name, err)
	}
	return tag
}

func usageCount(t *testing.T, store *mem.Mem, tagID int64) int64 {
	t.Helper()
	tag, err := store.Tags().GetByID(context.Background(), tagID)
	if err != nil {
		t.Fatalf("get tag %d: %v", tagID, err)
	}
	return tag.UsageCount
}

func historyFor(t *testing.T, store *mem.Mem, taskID int64) []dom.TaskHistory {
	t.Helper()
	hs, err := store.History().ListByTask(context.Background(), taskID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	return hs
}

func TestCreateDefaultsAndHistory(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "  write report  "}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Title != "write report" {
		t.Errorf("title = %q, want trimmed", task.Title)
	}
	if task.Status != dom.StatusTodo {
		t.Errorf("status = %q, want TODO", task.Status)
	}
	if task.Priority != dom.PriorityMedium {
		t.Errorf("priority = %q, want MEDIUM", task.Priority)
	}

	hs := historyFor(t, store, task.ID)
	if len(hs) != 1 {
		t.Fatalf("history entries = %d, want 1", len(hs))
	}
	if hs[0].Action != dom.ActionCreated {
		t.Errorf("action = %q, want CREATED", hs[0].Action)
	}
	var changes map[string]any
	if err := json.Unmarshal(hs[0].Changes, &changes); err != nil {
		t.Fatalf("unmarshal changes: %v", err)
	}
	if changes["title"] != "write report" {
		t.Errorf("initial title = %v", changes["title"])
	}
	if _, ok := changes["description"]; ok {
		t.Error("empty description should not appear in initial values")
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateTaskInput
		want error
	}{
		{"empty title", CreateTaskInput{Title: "   "}, dom.ErrValidation},
		{"bad status", CreateTaskInput{Title: "t", Status: "NOPE"}, dom.ErrInvalidStatus},
		{"archived on create", CreateTaskInput{Title: "t", Status: dom.StatusArchived}, dom.ErrValidation},
		{"bad priority", CreateTaskInput{Title: "t", Priority: "WHENEVER"}, dom.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.in, 1); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateWithUnknownTagRollsBack(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	tag := mustTag(t, store, "go")

	_, err := svc.Create(ctx, CreateTaskInput{Title: "t", TagIDs: []int64{tag.ID, 999}}, 1)
	if !errors.Is(err, dom.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	// The known tag must not have been counted by the aborted transaction.
	if got := usageCount(t, store, tag.ID); got != 0 {
		t.Errorf("usage count = %d, want 0 after rollback", got)
	}
	items, total, err := store.Tasks().List(ctx, dom.TaskFilter{}, dom.Pagination{}, dom.SortOrder{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("tasks persisted after rollback: %d", total)
	}
}

func TestTagReplaceAdjustsUsageCounts(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	a := mustTag(t, store, "a")
	b := mustTag(t, store, "b")
	c := mustTag(t, store, "c")

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t", TagIDs: []int64{a.ID, b.ID}}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := usageCount(t, store, a.ID); got != 1 {
		t.Fatalf("a usage = %d, want 1", got)
	}

	next := []int64{b.ID, c.ID}
	updated, err := svc.Update(ctx, task.ID, UpdateTaskInput{Tags: &next}, 1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.TagIDs) != 2 {
		t.Fatalf("tag ids = %v", updated.TagIDs)
	}
	for _, tt := range []struct {
		tag  dom.Tag
		want int64
	}{{a, 0}, {b, 1}, {c, 1}} {
		if got := usageCount(t, store, tt.tag.ID); got != tt.want {
			t.Errorf("%s usage = %d, want %d", tt.tag.Name, got, tt.want)
		}
	}
}

func TestUpdateNoopWritesNoHistory(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t"}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	title := "t"
	if _, err := svc.Update(ctx, task.ID, UpdateTaskInput{Title: &title}, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if hs := historyFor(t, store, task.ID); len(hs) != 1 {
		t.Errorf("history entries = %d, want only CREATED", len(hs))
	}
}

func TestUpdateWritesSingleDiffEntry(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "old"}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	title := "new"
	prio := dom.PriorityHigh
	if _, err := svc.Update(ctx, task.ID, UpdateTaskInput{Title: &title, Priority: &prio}, 2); err != nil {
		t.Fatalf("update: %v", err)
	}

	hs := historyFor(t, store, task.ID)
	if len(hs) != 2 {
		t.Fatalf("history entries = %d, want 2", len(hs))
	}
	entry := hs[0] // newest first
	if entry.Action != dom.ActionUpdated {
		t.Errorf("action = %q, want UPDATED", entry.Action)
	}
	var diff map[string]FieldChange
	if err := json.Unmarshal(entry.Changes, &diff); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(diff) != 2 {
		t.Errorf("diff fields = %v, want title and priority only", diff)
	}
	if diff["title"].From != "old" || diff["title"].To != "new" {
		t.Errorf("title diff = %+v", diff["title"])
	}
}

func TestAssigneeOnlyChangeIsAssignedAction(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t"}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assignee := int64(7)
	if _, err := svc.Update(ctx, task.ID, UpdateTaskInput{AssigneeID: &assignee}, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	hs := historyFor(t, store, task.ID)
	if hs[0].Action != dom.ActionAssigned {
		t.Errorf("action = %q, want ASSIGNED", hs[0].Action)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t"}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("invalid value touches nothing", func(t *testing.T) {
		if _, err := svc.UpdateStatus(ctx, task.ID, "BOGUS", 1); !errors.Is(err, dom.ErrInvalidStatus) {
			t.Fatalf("err = %v, want ErrInvalidStatus", err)
		}
		got, _ := store.Tasks().GetByID(ctx, task.ID)
		if got.Status != dom.StatusTodo {
			t.Errorf("status = %q, want unchanged TODO", got.Status)
		}
		if hs := historyFor(t, store, task.ID); len(hs) != 1 {
			t.Errorf("history entries = %d, want 1", len(hs))
		}
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		if _, err := svc.UpdateStatus(ctx, task.ID, dom.StatusTodo, 1); err != nil {
			t.Fatalf("update status: %v", err)
		}
		if hs := historyFor(t, store, task.ID); len(hs) != 1 {
			t.Errorf("history entries = %d, want 1 (no-op writes none)", len(hs))
		}
	})

	t.Run("transition records STATUS_CHANGED", func(t *testing.T) {
		out, err := svc.UpdateStatus(ctx, task.ID, dom.StatusInProgress, 1)
		if err != nil {
			t.Fatalf("update status: %v", err)
		}
		if out.Status != dom.StatusInProgress {
			t.Errorf("status = %q", out.Status)
		}
		hs := historyFor(t, store, task.ID)
		if len(hs) != 2 || hs[0].Action != dom.ActionStatusChanged {
			t.Errorf("history = %d entries, newest action %q", len(hs), hs[0].Action)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := svc.UpdateStatus(ctx, 12345, dom.StatusDone, 1); !errors.Is(err, dom.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestStatusArchivedStampsAndClears(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	tag := mustTag(t, store, "ops")

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t", TagIDs: []int64{tag.ID}}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	out, err := svc.UpdateStatus(ctx, task.ID, dom.StatusArchived, 1)
	if err != nil {
		t.Fatalf("archive via status: %v", err)
	}
	if out.ArchivedAt == nil {
		t.Fatal("archived_at not stamped on ARCHIVED status")
	}
	if got := usageCount(t, store, tag.ID); got != 0 {
		t.Errorf("usage = %d, want 0 while archived", got)
	}

	out, err = svc.UpdateStatus(ctx, task.ID, dom.StatusTodo, 1)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if out.ArchivedAt != nil {
		t.Error("archived_at not cleared on restore")
	}
	if got := usageCount(t, store, tag.ID); got != 1 {
		t.Errorf("usage = %d, want 1 after restore", got)
	}
}

func TestArchive(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	tag := mustTag(t, store, "infra")

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t", Status: dom.StatusInProgress, TagIDs: []int64{tag.ID}}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Archive(ctx, task.ID, 1); err != nil {
		t.Fatalf("archive: %v", err)
	}
	got, _ := store.Tasks().GetByID(ctx, task.ID)
	if got.ArchivedAt == nil {
		t.Fatal("archived_at not set")
	}
	if got.Status != dom.StatusInProgress {
		t.Errorf("status = %q, archive must not change status", got.Status)
	}
	if c := usageCount(t, store, tag.ID); c != 0 {
		t.Errorf("usage = %d, want 0", c)
	}

	// Second archive is a no-op: no double decrement, no extra history.
	if err := svc.Archive(ctx, task.ID, 1); err != nil {
		t.Fatalf("re-archive: %v", err)
	}
	if c := usageCount(t, store, tag.ID); c != 0 {
		t.Errorf("usage = %d after re-archive, want 0", c)
	}
	if hs := historyFor(t, store, task.ID); len(hs) != 2 {
		t.Errorf("history entries = %d, want CREATED + ARCHIVED", len(hs))
	}

	if err := svc.Archive(ctx, 999, 1); !errors.Is(err, dom.ErrNotFound) {
		t.Errorf("archive missing: err = %v, want ErrNotFound", err)
	}
}

func TestTagReplaceOnArchivedTaskKeepsCounts(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	a := mustTag(t, store, "a")
	b := mustTag(t, store, "b")

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t", TagIDs: []int64{a.ID}}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Archive(ctx, task.ID, 1); err != nil {
		t.Fatalf("archive: %v", err)
	}

	next := []int64{b.ID}
	if _, err := svc.Update(ctx, task.ID, UpdateTaskInput{Tags: &next}, 1); err != nil {
		t.Fatalf("update tags: %v", err)
	}
	// Rows moved, counts untouched: archived tasks are outside accounting.
	if c := usageCount(t, store, a.ID); c != 0 {
		t.Errorf("a usage = %d, want 0", c)
	}
	if c := usageCount(t, store, b.ID); c != 0 {
		t.Errorf("b usage = %d, want 0", c)
	}

	// Restoring makes the current tag set count again.
	if _, err := svc.UpdateStatus(ctx, task.ID, dom.StatusTodo, 1); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if c := usageCount(t, store, b.ID); c != 1 {
		t.Errorf("b usage = %d after restore, want 1", c)
	}
	if c := usageCount(t, store, a.ID); c != 0 {
		t.Errorf("a usage = %d after restore, want 0", c)
	}
}

func TestDelete(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	tag := mustTag(t, store, "x")

	task, err := svc.Create(ctx, CreateTaskInput{Title: "doomed", TagIDs: []int64{tag.ID}}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, task.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Tasks().GetByID(ctx, task.ID); !errors.Is(err, dom.ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}
	if c := usageCount(t, store, tag.ID); c != 0 {
		t.Errorf("usage = %d, want 0", c)
	}

	// Audit trail survives the delete.
	hs := historyFor(t, store, task.ID)
	if len(hs) != 2 {
		t.Fatalf("history entries = %d, want CREATED + DELETED", len(hs))
	}
	if hs[0].Action != dom.ActionDeleted {
		t.Errorf("newest action = %q, want DELETED", hs[0].Action)
	}
}

func TestDeleteArchivedDoesNotDoubleDecrement(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	tag := mustTag(t, store, "x")

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t", TagIDs: []int64{tag.ID}}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Archive(ctx, task.ID, 1); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := svc.Delete(ctx, task.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if c := usageCount(t, store, tag.ID); c != 0 {
		t.Errorf("usage = %d, want 0 (archive already settled)", c)
	}
}

func TestDuplicate(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	tag := mustTag(t, store, "x")
	hours := 2.5

	src, err := svc.Create(ctx, CreateTaskInput{
		Title: "original", Priority: dom.PriorityHigh,
		EstimatedHours: &hours, TagIDs: []int64{tag.ID},
	}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	dup, err := svc.Duplicate(ctx, src.ID, 2)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.ID == src.ID {
		t.Fatal("duplicate returned the source task")
	}
	if dup.Title != "original (copy)" {
		t.Errorf("title = %q", dup.Title)
	}
	if dup.CreatedBy != 2 {
		t.Errorf("created_by = %d, want the duplicating user", dup.CreatedBy)
	}
	if dup.Priority != dom.PriorityHigh {
		t.Errorf("priority = %q, want copied", dup.Priority)
	}
	if c := usageCount(t, store, tag.ID); c != 2 {
		t.Errorf("usage = %d, want 2", c)
	}
	// Fresh trail, not the source's.
	hs := historyFor(t, store, dup.ID)
	if len(hs) != 1 || hs[0].Action != dom.ActionCreated {
		t.Errorf("duplicate history = %d entries", len(hs))
	}
}

func TestDuplicateArchivedResets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	src, err := svc.Create(ctx, CreateTaskInput{Title: "t"}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, src.ID, dom.StatusArchived, 1); err != nil {
		t.Fatalf("archive: %v", err)
	}

	dup, err := svc.Duplicate(ctx, src.ID, 1)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.ArchivedAt != nil {
		t.Error("duplicate of archived task must be active")
	}
	if dup.Status != dom.StatusTodo {
		t.Errorf("status = %q, want TODO", dup.Status)
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i, in := range []CreateTaskInput{
		{Title: "alpha", Priority: dom.PriorityHigh},
		{Title: "beta"},
		{Title: "gamma", Status: dom.StatusDone},
	} {
		if _, err := svc.Create(ctx, in, 1); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	arch, err := svc.Create(ctx, CreateTaskInput{Title: "old"}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Archive(ctx, arch.ID, 1); err != nil {
		t.Fatalf("archive: %v", err)
	}

	items, meta, err := svc.List(ctx, dom.TaskFilter{}, dom.Pagination{}, dom.SortOrder{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if meta.Total != 3 {
		t.Errorf("total = %d, want 3 (archived excluded)", meta.Total)
	}
	if len(items) != 3 {
		t.Errorf("items = %d", len(items))
	}

	_, meta, err = svc.List(ctx, dom.TaskFilter{IncludeArchived: true}, dom.Pagination{}, dom.SortOrder{})
	if err != nil {
		t.Fatalf("list archived: %v", err)
	}
	if meta.Total != 4 {
		t.Errorf("total = %d, want 4 with archived", meta.Total)
	}

	items, _, err = svc.List(ctx, dom.TaskFilter{Statuses: []dom.TaskStatus{dom.StatusDone}}, dom.Pagination{}, dom.SortOrder{})
	if err != nil {
		t.Fatalf("list done: %v", err)
	}
	if len(items) != 1 || items[0].Title != "gamma" {
		t.Errorf("done filter = %v", items)
	}

	items, meta, err = svc.List(ctx, dom.TaskFilter{}, dom.Pagination{Page: 2, PageSize: 2}, dom.SortOrder{})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(items) != 1 || meta.TotalPages != 2 {
		t.Errorf("page 2 items = %d, total pages = %d", len(items), meta.TotalPages)
	}
}

func TestStatsCountsOwnActiveTasks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateTaskInput{Title: "mine"}, 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateTaskInput{Title: "done", Status: dom.StatusDone}, 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateTaskInput{Title: "theirs"}, 2); err != nil {
		t.Fatalf("create: %v", err)
	}

	stats, err := svc.Stats(ctx, 1, nil)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.ByStatus[dom.StatusTodo] != 1 || stats.ByStatus[dom.StatusDone] != 1 {
		t.Errorf("by status = %v", stats.ByStatus)
	}
}
