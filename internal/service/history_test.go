package service

import (
	"testing"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

func TestDiffTasks(t *testing.T) {
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assignee := int64(4)

	base := dom.Task{Title: "t", Status: dom.StatusTodo, Priority: dom.PriorityMedium, TagIDs: []int64{1, 2}}

	t.Run("identical tasks yield empty diff", func(t *testing.T) {
		if d := diffTasks(base, base); len(d) != 0 {
			t.Errorf("diff = %v, want empty", d)
		}
	})

	t.Run("changed fields only", func(t *testing.T) {
		after := base
		after.Title = "renamed"
		after.Status = dom.StatusDone
		d := diffTasks(base, after)
		if len(d) != 2 {
			t.Fatalf("diff = %v", d)
		}
		if d["title"].From != "t" || d["title"].To != "renamed" {
			t.Errorf("title = %+v", d["title"])
		}
		if d["status"].From != "TODO" || d["status"].To != "DONE" {
			t.Errorf("status = %+v", d["status"])
		}
	})

	t.Run("nil vs value pointer", func(t *testing.T) {
		after := base
		after.AssigneeID = &assignee
		after.DueDate = &due
		d := diffTasks(base, after)
		if d["assignee_id"].From != nil || d["assignee_id"].To != assignee {
			t.Errorf("assignee = %+v", d["assignee_id"])
		}
		if d["due_date"].To != "2025-06-01T00:00:00Z" {
			t.Errorf("due date = %+v", d["due_date"])
		}
	})

	t.Run("tag order does not matter", func(t *testing.T) {
		after := base
		after.TagIDs = []int64{1, 2}
		if d := diffTasks(base, after); len(d) != 0 {
			t.Errorf("diff = %v", d)
		}
		after.TagIDs = []int64{1, 3}
		d := diffTasks(base, after)
		if _, ok := d["tags"]; !ok {
			t.Error("tag change not recorded")
		}
	})
}

func TestHistoryAction(t *testing.T) {
	tests := []struct {
		name string
		diff map[string]FieldChange
		want dom.HistoryAction
	}{
		{"assignee only", map[string]FieldChange{"assignee_id": {}}, dom.ActionAssigned},
		{"assignee plus title", map[string]FieldChange{"assignee_id": {}, "title": {}}, dom.ActionUpdated},
		{"title only", map[string]FieldChange{"title": {}}, dom.ActionUpdated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := historyAction(tt.diff); got != tt.want {
				t.Errorf("action = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInitialValuesSkipsEmpties(t *testing.T) {
	hours := 1.5
	vals := initialValues(dom.Task{Title: "t", Status: dom.StatusTodo, Priority: dom.PriorityLow, EstimatedHours: &hours})
	if vals["title"] != "t" {
		t.Errorf("title = %v", vals["title"])
	}
	if vals["estimated_hours"] != 1.5 {
		t.Errorf("estimated_hours = %v", vals["estimated_hours"])
	}
	for _, absent := range []string{"description", "project_id", "due_date", "tags", "actual_hours"} {
		if _, ok := vals[absent]; ok {
			t.Errorf("%s present in initial values", absent)
		}
	}
}

func TestDiffIDSets(t *testing.T) {
	tests := []struct {
		name         string
		prev, next   []int64
		added, remov int
	}{
		{"disjoint", []int64{1, 2}, []int64{3}, 1, 2},
		{"overlap", []int64{1, 2}, []int64{2, 3}, 1, 1},
		{"equal", []int64{1, 2}, []int64{2, 1}, 0, 0},
		{"from empty", nil, []int64{5}, 1, 0},
		{"to empty", []int64{5}, nil, 0, 1},
		{"duplicates collapse", []int64{1, 1}, []int64{2, 2}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := diffIDSets(tt.prev, tt.next)
			if len(added) != tt.added || len(removed) != tt.remov {
				t.Errorf("added %v removed %v, want %d/%d", added, removed, tt.added, tt.remov)
			}
		})
	}
}

func TestNormalizeIDs(t *testing.T) {
	got := normalizeIDs([]int64{3, 1, 3, 2, 1})
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if normalizeIDs(nil) != nil {
		t.Error("nil input should stay nil")
	}
}
