package dto

import dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"

type BroadcastNotificationRequest struct {
	UserIDs   []int64           `json:"user_ids"` // empty = all users
	Type      string            `json:"type"`
	Priority  string            `json:"priority"`
	Title     string            `json:"title" binding:"required,min=1,max=200"`
	Message   string            `json:"message" binding:"max=2000"`
	ActionURL string            `json:"action_url" binding:"omitempty,max=500"`
	Metadata  map[string]string `json:"metadata"`
}

type NotificationIDsRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}

type CleanupNotificationsRequest struct {
	MaxAgeDays int `json:"max_age_days" binding:"omitempty,gte=0"`
}

type ListNotificationsResponse struct {
	Items []dom.Notification `json:"items"`
	Meta  dom.PageInfo       `json:"meta"`
}
