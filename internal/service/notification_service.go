package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/k-iizuka000/ai-todo-sub007/internal/bus"
	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
	"github.com/k-iizuka000/ai-todo-sub007/internal/repo"
	"github.com/k-iizuka000/ai-todo-sub007/internal/utils"
)

const (
	defaultCleanupAge = 30 * 24 * time.Hour
	maxCleanupAge     = 365 * 24 * time.Hour
)

// ErrNoTargets wraps ErrValidation so the HTTP layer responds 4xx.
var ErrNoTargets = fmt.Errorf("%w: no target users", dom.ErrValidation)

// notifTemplate renders one notification kind. Message templates use
// {{var}} placeholders; unknown variables stay literal in the output.
type notifTemplate struct {
	Title    string
	Message  string
	Priority dom.NotificationPriority
}

var notifTemplates = map[dom.NotificationType]notifTemplate{
	dom.NotifTaskAssigned: {
		Title:    "Task assigned to you",
		Message:  `{{actor}} assigned "{{task}}" to you`,
		Priority: dom.NotifPriorityHigh,
	},
	dom.NotifStatusChanged: {
		Title:    "Task status changed",
		Message:  `{{actor}} moved "{{task}}" from {{from}} to {{to}}`,
		Priority: dom.NotifPriorityNormal,
	},
	dom.NotifTaskArchived: {
		Title:    "Task archived",
		Message:  `{{actor}} archived "{{task}}"`,
		Priority: dom.NotifPriorityLow,
	},
	dom.NotifTaskDeleted: {
		Title:    "Task deleted",
		Message:  `{{actor}} deleted "{{task}}"`,
		Priority: dom.NotifPriorityLow,
	},
}

// TaskEvent is a committed domain mutation the dispatcher fans out.
type TaskEvent struct {
	Type      dom.NotificationType
	Task      dom.Task
	ActorID   int64
	OldStatus dom.TaskStatus
	NewStatus dom.TaskStatus
}

// NotificationService creates, queries and fans out notifications. It is
// invoked strictly after the originating transaction commits and its
// failures never roll back or fail the mutation that triggered it.
type NotificationService struct {
	store repo.Store
	bus   *bus.Bus
	log   *slog.Logger
}

// NewNotificationService returns a NotificationService. If b is nil,
// real-time push is disabled and only durable rows are written.
func NewNotificationService(store repo.Store, b *bus.Bus, log *slog.Logger) *NotificationService {
	if log == nil {
		log = slog.Default()
	}
	return &NotificationService{store: store, bus: b, log: log}
}

// Dispatch builds and stores notifications for everyone interested in the
// event and pushes them to live subscribers. Errors are logged, never
// returned: the mutation already committed.
func (s *NotificationService) Dispatch(ctx context.Context, ev TaskEvent) {
	tmpl, ok := notifTemplates[ev.Type]
	if !ok {
		s.log.Warn("notification dispatch: unknown event type", "type", ev.Type)
		return
	}
	vars := map[string]string{
		"actor": s.actorName(ctx, ev.ActorID),
		"task":  ev.Task.Title,
		"from":  string(ev.OldStatus),
		"to":    string(ev.NewStatus),
	}
	for _, userID := range eventTargets(ev) {
		n := dom.Notification{
			UserID:    userID,
			Type:      ev.Type,
			Priority:  tmpl.Priority,
			Title:     tmpl.Title,
			Message:   utils.RenderTemplate(tmpl.Message, vars),
			ActionURL: "/tasks/" + strconv.FormatInt(ev.Task.ID, 10),
			Metadata:  map[string]string{"task_id": strconv.FormatInt(ev.Task.ID, 10)},
		}
		created, err := s.store.Notifications().Create(ctx, n)
		if err != nil {
			s.log.Error("notification dispatch: create failed",
				"type", ev.Type, "user_id", userID, "task_id", ev.Task.ID, "err", err)
			continue
		}
		s.publish(created)
	}
}

// eventTargets picks who hears about the event: the assignee for
// assignments, creator and assignee for status changes, the assignee for
// archive/delete. The actor never notifies themselves.
func eventTargets(ev TaskEvent) []int64 {
	seen := map[int64]bool{ev.ActorID: true}
	var targets []int64
	add := func(id *int64) {
		if id != nil && !seen[*id] {
			seen[*id] = true
			targets = append(targets, *id)
		}
	}
	switch ev.Type {
	case dom.NotifTaskAssigned:
		add(ev.Task.AssigneeID)
	case dom.NotifStatusChanged:
		creator := ev.Task.CreatedBy
		add(&creator)
		add(ev.Task.AssigneeID)
	default:
		add(ev.Task.AssigneeID)
	}
	return targets
}

func (s *NotificationService) actorName(ctx context.Context, actorID int64) string {
	u, err := s.store.Users().GetByID(ctx, actorID)
	if err != nil {
		return "someone"
	}
	return u.Username
}

func (s *NotificationService) publish(n dom.Notification) {
	if s.bus != nil {
		s.bus.Publish(n)
	}
}

// CreateInput is a directly requested (non-event) notification.
type CreateInput struct {
	UserID    int64
	Type      dom.NotificationType
	Priority  dom.NotificationPriority
	Title     string
	Message   string
	ActionURL string
	Metadata  map[string]string
}

// Create stores a single notification and pushes it.
func (s *NotificationService) Create(ctx context.Context, in CreateInput) (dom.Notification, error) {
	if strings.TrimSpace(in.Title) == "" {
		return dom.Notification{}, fmt.Errorf("%w: title is required", dom.ErrValidation)
	}
	if in.Priority == "" {
		in.Priority = dom.NotifPriorityNormal
	}
	n, err := s.store.Notifications().Create(ctx, dom.Notification{
		UserID: in.UserID, Type: in.Type, Priority: in.Priority,
		Title: in.Title, Message: in.Message, ActionURL: in.ActionURL, Metadata: in.Metadata,
	})
	if err != nil {
		return dom.Notification{}, err
	}
	s.publish(n)
	return n, nil
}

// Broadcast stores one notification per target user (every user when
// userIDs is empty) and pushes each. Used for system-wide announcements.
func (s *NotificationService) Broadcast(ctx context.Context, userIDs []int64, in CreateInput) ([]dom.Notification, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", dom.ErrValidation)
	}
	if in.Type == "" {
		in.Type = dom.NotifAnnouncement
	}
	if in.Priority == "" {
		in.Priority = dom.NotifPriorityNormal
	}
	if len(userIDs) == 0 {
		var err error
		userIDs, err = s.store.Users().ListIDs(ctx)
		if err != nil {
			return nil, err
		}
	}
	if len(userIDs) == 0 {
		return nil, ErrNoTargets
	}
	batch := make([]dom.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		batch = append(batch, dom.Notification{
			UserID: id, Type: in.Type, Priority: in.Priority,
			Title: in.Title, Message: in.Message, ActionURL: in.ActionURL, Metadata: in.Metadata,
		})
	}
	created, err := s.store.Notifications().CreateBulk(ctx, batch)
	if err != nil {
		return nil, err
	}
	for _, n := range created {
		s.publish(n)
	}
	return created, nil
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID int64, unreadOnly bool, p dom.Pagination) ([]dom.Notification, dom.PageInfo, error) {
	p = p.Normalize()
	items, total, err := s.store.Notifications().ListByUser(ctx, userID, unreadOnly, p)
	if err != nil {
		return nil, dom.PageInfo{}, err
	}
	return items, dom.NewPageInfo(p, total), nil
}

// UnreadCount returns the user's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.store.Notifications().UnreadCount(ctx, userID)
}

// MarkRead marks the given notifications read; ids not owned by the user
// are ignored. Returns how many rows changed.
func (s *NotificationService) MarkRead(ctx context.Context, userID int64, ids []int64) (int64, error) {
	return s.store.Notifications().MarkRead(ctx, userID, ids)
}

// MarkAllRead marks every unread notification for the user.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.store.Notifications().MarkAllRead(ctx, userID)
}

// Delete removes the given notifications owned by the user.
func (s *NotificationService) Delete(ctx context.Context, userID int64, ids []int64) (int64, error) {
	return s.store.Notifications().Delete(ctx, userID, ids)
}

// Cleanup deletes read notifications older than age. Zero or negative
// means the 30-day default; anything above a year is capped.
func (s *NotificationService) Cleanup(ctx context.Context, age time.Duration) (int64, error) {
	if age <= 0 {
		age = defaultCleanupAge
	}
	if age > maxCleanupAge {
		age = maxCleanupAge
	}
	return s.store.Notifications().DeleteReadOlderThan(ctx, time.Now().UTC().Add(-age))
}
