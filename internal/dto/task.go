package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

// DueDate parses due_date from JSON as either date-only ("2006-01-02") or
// RFC3339. Date-only is stored as start of that day in UTC.
type DueDate struct{ t *time.Time }

func (d *DueDate) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			if layout == "2006-01-02" {
				parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			}
			d.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("due_date: use date (YYYY-MM-DD) or RFC3339 datetime")
}

// Ptr returns *time.Time for use in service/domain.
func (d DueDate) Ptr() *time.Time { return d.t }

type CreateTaskRequest struct {
	Title          string   `json:"title" binding:"required,min=1,max=200"`
	Description    string   `json:"description" binding:"max=2000"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	ProjectID      *int64   `json:"project_id"`
	AssigneeID     *int64   `json:"assignee_id"`
	ParentID       *int64   `json:"parent_id"`
	DueDate        DueDate  `json:"due_date"`
	EstimatedHours *float64 `json:"estimated_hours" binding:"omitempty,gte=0"`
	ActualHours    *float64 `json:"actual_hours" binding:"omitempty,gte=0"`
	TagIDs         []int64  `json:"tag_ids"`
}

// UpdateTaskRequest is a partial update: absent fields keep their
// current value. JSON null is indistinguishable from an absent field
// here, so nullable columns (project_id, assignee_id, parent_id,
// due_date) cannot be cleared through this endpoint once set.
type UpdateTaskRequest struct {
	Title          *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Description    *string  `json:"description" binding:"omitempty,max=2000"`
	Status         *string  `json:"status"`
	Priority       *string  `json:"priority"`
	ProjectID      *int64   `json:"project_id"`
	AssigneeID     *int64   `json:"assignee_id"`
	ParentID       *int64   `json:"parent_id"`
	DueDate        *DueDate `json:"due_date"` // nil = keep as is
	EstimatedHours *float64 `json:"estimated_hours" binding:"omitempty,gte=0"`
	ActualHours    *float64 `json:"actual_hours" binding:"omitempty,gte=0"`
	TagIDs         *[]int64 `json:"tag_ids"` // non-nil replaces the whole set
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TaskResponse struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	ProjectID      *int64     `json:"project_id"`
	AssigneeID     *int64     `json:"assignee_id"`
	ParentID       *int64     `json:"parent_id"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
	ArchivedAt     *time.Time `json:"archived_at"`
	TagIDs         []int64    `json:"tag_ids"`
	CreatedBy      int64      `json:"created_by"`
	UpdatedBy      int64      `json:"updated_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type ListTasksResponse struct {
	Items []TaskResponse `json:"items"`
	Meta  dom.PageInfo   `json:"meta"`
}

type TaskHistoryResponse struct {
	ID        int64           `json:"id"`
	TaskID    int64           `json:"task_id"`
	UserID    int64           `json:"user_id"`
	Action    string          `json:"action"`
	Changes   json.RawMessage `json:"changes"`
	CreatedAt time.Time       `json:"created_at"`
}

type ListTaskHistoryResponse struct {
	Items []TaskHistoryResponse `json:"items"`
}

type CleanupHistoryRequest struct {
	MaxAgeDays int `json:"max_age_days" binding:"omitempty,gte=0"`
}
