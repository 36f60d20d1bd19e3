package domain

import "time"

// NotificationType identifies what kind of event produced a notification.
type NotificationType string

const (
	NotifTaskAssigned  NotificationType = "TASK_ASSIGNED"
	NotifStatusChanged NotificationType = "TASK_STATUS_CHANGED"
	NotifTaskArchived  NotificationType = "TASK_ARCHIVED"
	NotifTaskDeleted   NotificationType = "TASK_DELETED"
	NotifAnnouncement  NotificationType = "ANNOUNCEMENT"
)

// NotificationPriority controls how prominently a notification is surfaced.
type NotificationPriority string

const (
	NotifPriorityLow    NotificationPriority = "LOW"
	NotifPriorityNormal NotificationPriority = "NORMAL"
	NotifPriorityHigh   NotificationPriority = "HIGH"
)

// Notification is the durable record pushed to a user. The row is
// authoritative; the real-time push over the bus is best-effort.
type Notification struct {
	ID        int64                `json:"id"`
	UserID    int64                `json:"user_id"`
	Type      NotificationType     `json:"type"`
	Priority  NotificationPriority `json:"priority"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Read      bool                 `json:"read"`
	ActionURL string               `json:"action_url,omitempty"`
	Metadata  map[string]string    `json:"metadata,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}
