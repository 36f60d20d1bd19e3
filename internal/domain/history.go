package domain

import "time"

// HistoryAction is the kind of change an audit entry records.
type HistoryAction string

const (
	ActionCreated       HistoryAction = "CREATED"
	ActionUpdated       HistoryAction = "UPDATED"
	ActionStatusChanged HistoryAction = "STATUS_CHANGED"
	ActionAssigned      HistoryAction = "ASSIGNED"
	ActionArchived      HistoryAction = "ARCHIVED"
	ActionDeleted       HistoryAction = "DELETED"
)

// TaskHistory is an append-only audit entry for a task. Entries are never
// mutated and deliberately outlive the task row itself (no FK), so a hard
// delete keeps the trail queryable.
type TaskHistory struct {
	ID        int64
	TaskID    int64
	UserID    int64
	Action    HistoryAction
	// Changes is the field-level diff payload, marshalled JSON:
	// {"title":{"from":"a","to":"b"}} for updates, initial values for CREATED.
	Changes   []byte
	CreatedAt time.Time
}
