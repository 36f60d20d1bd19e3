package service

import (
	"encoding/json"
	"reflect"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

// FieldChange records one tracked field's transition in an audit entry.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// trackedFields captures the task fields the audit trail diffs. Tag
// associations count as a tracked field ("tags").
func trackedFields(t dom.Task) map[string]any {
	return map[string]any{
		"title":           t.Title,
		"description":     t.Description,
		"status":          string(t.Status),
		"priority":        string(t.Priority),
		"project_id":      int64Val(t.ProjectID),
		"assignee_id":     int64Val(t.AssigneeID),
		"parent_id":       int64Val(t.ParentID),
		"due_date":        timeVal(t.DueDate),
		"estimated_hours": floatVal(t.EstimatedHours),
		"actual_hours":    floatVal(t.ActualHours),
		"tags":            append([]int64{}, t.TagIDs...),
	}
}

func int64Val(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatVal(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func timeVal(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC().Format(time.RFC3339)
}

// diffTasks computes the field-level diff between two states. Fields with
// equal values are omitted; an empty result means nothing to record.
func diffTasks(before, after dom.Task) map[string]FieldChange {
	b := trackedFields(before)
	a := trackedFields(after)
	diff := make(map[string]FieldChange)
	for field, old := range b {
		if !reflect.DeepEqual(old, a[field]) {
			diff[field] = FieldChange{From: old, To: a[field]}
		}
	}
	return diff
}

// initialValues is the CREATED payload: every tracked field that carries
// a value on the fresh task.
func initialValues(t dom.Task) map[string]any {
	out := make(map[string]any)
	for field, v := range trackedFields(t) {
		switch vv := v.(type) {
		case nil:
			continue
		case string:
			if vv == "" {
				continue
			}
		case []int64:
			if len(vv) == 0 {
				continue
			}
		}
		out[field] = v
	}
	return out
}

func marshalChanges(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Tracked values are plain strings/numbers/slices; this cannot
		// fail for real payloads.
		return []byte("{}")
	}
	return b
}

// historyAction picks the action kind for an update diff: a change that
// touches only the assignee is an assignment.
func historyAction(diff map[string]FieldChange) dom.HistoryAction {
	if len(diff) == 1 {
		if _, ok := diff["assignee_id"]; ok {
			return dom.ActionAssigned
		}
	}
	return dom.ActionUpdated
}
