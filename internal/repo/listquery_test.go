package repo

import (
	"strings"
	"testing"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

func TestBuildTaskListQuery(t *testing.T) {
	page := dom.Pagination{Page: 1, PageSize: 20}

	t.Run("zero filter excludes archived", func(t *testing.T) {
		sel, count, args := buildTaskListQuery(dom.TaskFilter{}, page, dom.SortOrder{})
		if !strings.Contains(sel, "archived_at IS NULL") {
			t.Errorf("select missing archived guard: %s", sel)
		}
		if !strings.Contains(count, "archived_at IS NULL") {
			t.Errorf("count missing archived guard: %s", count)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want none", args)
		}
		if !strings.Contains(sel, "ORDER BY created_at DESC, id DESC") {
			t.Errorf("default ordering wrong: %s", sel)
		}
	})

	t.Run("include archived drops the guard", func(t *testing.T) {
		sel, _, _ := buildTaskListQuery(dom.TaskFilter{IncludeArchived: true}, page, dom.SortOrder{})
		if strings.Contains(sel, "archived_at IS NULL") {
			t.Errorf("archived guard present: %s", sel)
		}
	})

	t.Run("placeholders number sequentially", func(t *testing.T) {
		pid := int64(3)
		due := time.Now()
		f := dom.TaskFilter{
			Statuses:   []dom.TaskStatus{dom.StatusTodo},
			Priorities: []dom.TaskPriority{dom.PriorityHigh},
			ProjectID:  &pid,
			DueFrom:    &due,
			TagIDs:     []int64{1, 2},
			Search:     "report",
		}
		sel, count, args := buildTaskListQuery(f, page, dom.SortOrder{})
		if len(args) != 6 {
			t.Fatalf("args = %d, want 6", len(args))
		}
		for _, ph := range []string{"$1", "$2", "$3", "$4", "$5", "$6"} {
			if !strings.Contains(sel, ph) {
				t.Errorf("select missing %s: %s", ph, sel)
			}
		}
		if strings.Contains(sel, "$7") {
			t.Errorf("stray placeholder: %s", sel)
		}
		if !strings.Contains(count, "$6") {
			t.Errorf("count must share the same placeholders: %s", count)
		}
	})

	t.Run("search wraps pattern", func(t *testing.T) {
		_, _, args := buildTaskListQuery(dom.TaskFilter{Search: "pay"}, page, dom.SortOrder{})
		if args[0] != "%pay%" {
			t.Errorf("pattern = %v", args[0])
		}
	})

	t.Run("tag filter uses EXISTS not JOIN", func(t *testing.T) {
		sel, _, _ := buildTaskListQuery(dom.TaskFilter{TagIDs: []int64{9}}, page, dom.SortOrder{})
		if !strings.Contains(sel, "EXISTS (SELECT 1 FROM task_tags") {
			t.Errorf("no EXISTS subquery: %s", sel)
		}
	})

	t.Run("priority sorts by weight", func(t *testing.T) {
		sel, _, _ := buildTaskListQuery(dom.TaskFilter{}, page, dom.SortOrder{Field: "priority"})
		if !strings.Contains(sel, "CASE priority") {
			t.Errorf("priority should sort by CASE weights: %s", sel)
		}
		if !strings.Contains(sel, "ASC") {
			t.Errorf("explicit field defaults ascending: %s", sel)
		}
	})

	t.Run("unknown sort falls back to created_at desc", func(t *testing.T) {
		sel, _, _ := buildTaskListQuery(dom.TaskFilter{}, page, dom.SortOrder{Field: "evil; DROP TABLE tasks"})
		if !strings.Contains(sel, "ORDER BY created_at DESC") {
			t.Errorf("fallback ordering wrong: %s", sel)
		}
		if strings.Contains(sel, "DROP TABLE") {
			t.Errorf("unwhitelisted expression leaked: %s", sel)
		}
	})

	t.Run("pagination inlined", func(t *testing.T) {
		sel, _, _ := buildTaskListQuery(dom.TaskFilter{}, dom.Pagination{Page: 3, PageSize: 10}, dom.SortOrder{})
		if !strings.Contains(sel, "LIMIT 10 OFFSET 20") {
			t.Errorf("pagination wrong: %s", sel)
		}
	})
}
