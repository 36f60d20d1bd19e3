package repo

import (
	"context"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

// Store bundles all repositories behind one handle. InTx yields a Store
// whose repositories share a single transaction, so multi-entity writes
// for one logical mutation are atomic.
type Store interface {
	Tasks() TaskRepo
	Tags() TagRepo
	History() HistoryRepo
	Notifications() NotificationRepo
	Projects() ProjectRepo
	Users() UserRepo

	// InTx runs fn inside one transaction. Every write performed through
	// the Store passed to fn commits atomically when fn returns nil and
	// rolls back otherwise. There is no internal retry: write conflicts
	// surface to the caller, retrying the whole unit of work is theirs.
	InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// TaskRepo provides task persistence.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id int64) (dom.Task, error)
	Update(ctx context.Context, t dom.Task) (dom.Task, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f dom.TaskFilter, p dom.Pagination, ord dom.SortOrder) ([]dom.Task, int64, error)
	TagIDs(ctx context.Context, taskID int64) ([]int64, error)
	TagIDsForTasks(ctx context.Context, taskIDs []int64) (map[int64][]int64, error)
	Stats(ctx context.Context, userID int64, projectID *int64) (dom.TaskStats, error)
}

// TagRepo provides tag persistence and the paired association/counter
// primitives the usage tracker is built on. Attach and Detach write the
// task_tags rows and, when countUsage is set, move usage_count in the
// same statement batch; callers outside the tracker never touch counts.
type TagRepo interface {
	Create(ctx context.Context, name, color string) (dom.Tag, error)
	GetByID(ctx context.Context, id int64) (dom.Tag, error)
	List(ctx context.Context) ([]dom.Tag, error)
	ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	Attach(ctx context.Context, taskID int64, tagIDs []int64, countUsage bool) error
	Detach(ctx context.Context, taskID int64, tagIDs []int64, countUsage bool) error
	AdjustUsage(ctx context.Context, tagIDs []int64, delta int64) error
}

// HistoryRepo provides the append-only audit trail.
type HistoryRepo interface {
	Append(ctx context.Context, h dom.TaskHistory) (dom.TaskHistory, error)
	ListByTask(ctx context.Context, taskID int64) ([]dom.TaskHistory, error)
	// DeleteOlderThan is the explicit retention maintenance operation;
	// nothing in the mutation path ever removes history.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationRepo provides notification persistence.
type NotificationRepo interface {
	Create(ctx context.Context, n dom.Notification) (dom.Notification, error)
	CreateBulk(ctx context.Context, ns []dom.Notification) ([]dom.Notification, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, p dom.Pagination) ([]dom.Notification, int64, error)
	MarkRead(ctx context.Context, userID int64, ids []int64) (int64, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, userID int64, ids []int64) (int64, error)
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

// ProjectRepo provides project persistence.
type ProjectRepo interface {
	Create(ctx context.Context, p dom.Project) (dom.Project, error)
	List(ctx context.Context) ([]dom.Project, error)
}

// UserRepo provides user persistence.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (dom.User, error)
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	Create(ctx context.Context, username, passwordHash string) (dom.User, error)
	ListIDs(ctx context.Context) ([]int64, error)
}
