package domain

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
	StatusArchived   TaskStatus = "ARCHIVED"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusArchived:
		return true
	}
	return false
}

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "LOW"
	PriorityMedium   TaskPriority = "MEDIUM"
	PriorityHigh     TaskPriority = "HIGH"
	PriorityUrgent   TaskPriority = "URGENT"
	PriorityCritical TaskPriority = "CRITICAL"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PriorityCritical:
		return true
	}
	return false
}

// Task is the primary work-item entity.
// Does not depend on Gin, Postgres or Redis.
type Task struct {
	ID             int64
	Title          string
	Description    string
	Status         TaskStatus
	Priority       TaskPriority
	ProjectID      *int64
	AssigneeID     *int64
	ParentID       *int64
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	ArchivedAt     *time.Time
	CreatedBy      int64
	UpdatedBy      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// TagIDs holds the live task↔tag associations, hydrated on read.
	TagIDs []int64
}

// Archived reports whether the task is soft-deleted.
func (t Task) Archived() bool { return t.ArchivedAt != nil }

// TaskFilter narrows task listings. Zero value matches all active tasks.
type TaskFilter struct {
	Statuses        []TaskStatus
	Priorities      []TaskPriority
	ProjectID       *int64
	AssigneeID      *int64
	DueFrom         *time.Time
	DueTo           *time.Time
	TagIDs          []int64
	Search          string
	IncludeArchived bool
}

// Pagination is 1-indexed. Normalize clamps out-of-range values.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize returns a copy with page >= 1 and 1 <= size <= MaxPageSize.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the page.
func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }

// SortOrder selects the list ordering. Zero value means created_at DESC.
type SortOrder struct {
	Field string // created_at, updated_at, due_date, priority, title, status
	Desc  bool
}

// PageInfo is the listing metadata returned alongside items.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPageInfo computes TotalPages from total and page size.
func NewPageInfo(p Pagination, total int64) PageInfo {
	pages := int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	return PageInfo{Page: p.Page, PageSize: p.PageSize, Total: total, TotalPages: pages}
}

// TaskStats aggregates task counts for a user, optionally within a project.
type TaskStats struct {
	Total      int64                  `json:"total"`
	ByStatus   map[TaskStatus]int64   `json:"by_status"`
	ByPriority map[TaskPriority]int64 `json:"by_priority"`
}
