// Package mem is an in-memory Store used by tests. State lives in indexed
// maps; InTx snapshots the whole state and restores it on error, which
// gives the same all-or-nothing behavior tests need without Postgres.
package mem

import (
	"context"
	"sync"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
	"github.com/k-iizuka000/ai-todo-sub007/internal/repo"
)

type memState struct {
	mu sync.Mutex

	tasks    map[int64]dom.Task
	taskTags map[int64]map[int64]bool
	tags     map[int64]dom.Tag
	history  []dom.TaskHistory
	notifs   map[int64]dom.Notification
	projects map[int64]dom.Project
	users    map[int64]dom.User

	nextTask, nextTag, nextHistory, nextNotif, nextProject, nextUser int64
}

func (s *memState) clone() *memState {
	c := &memState{
		tasks:       make(map[int64]dom.Task, len(s.tasks)),
		taskTags:    make(map[int64]map[int64]bool, len(s.taskTags)),
		tags:        make(map[int64]dom.Tag, len(s.tags)),
		history:     append([]dom.TaskHistory(nil), s.history...),
		notifs:      make(map[int64]dom.Notification, len(s.notifs)),
		projects:    make(map[int64]dom.Project, len(s.projects)),
		users:       make(map[int64]dom.User, len(s.users)),
		nextTask:    s.nextTask,
		nextTag:     s.nextTag,
		nextHistory: s.nextHistory,
		nextNotif:   s.nextNotif,
		nextProject: s.nextProject,
		nextUser:    s.nextUser,
	}
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	for k, set := range s.taskTags {
		cp := make(map[int64]bool, len(set))
		for id := range set {
			cp[id] = true
		}
		c.taskTags[k] = cp
	}
	for k, v := range s.tags {
		c.tags[k] = v
	}
	for k, v := range s.notifs {
		c.notifs[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func (s *memState) restore(from *memState) {
	s.tasks = from.tasks
	s.taskTags = from.taskTags
	s.tags = from.tags
	s.history = from.history
	s.notifs = from.notifs
	s.projects = from.projects
	s.users = from.users
	s.nextTask = from.nextTask
	s.nextTag = from.nextTag
	s.nextHistory = from.nextHistory
	s.nextNotif = from.nextNotif
	s.nextProject = from.nextProject
	s.nextUser = from.nextUser
}

// Mem implements repo.Store in memory.
type Mem struct {
	s    *memState
	inTx bool
}

// New returns an empty in-memory store.
func New() *Mem {
	return &Mem{s: &memState{
		tasks:    make(map[int64]dom.Task),
		taskTags: make(map[int64]map[int64]bool),
		tags:     make(map[int64]dom.Tag),
		notifs:   make(map[int64]dom.Notification),
		projects: make(map[int64]dom.Project),
		users:    make(map[int64]dom.User),
	}}
}

func (m *Mem) Tasks() repo.TaskRepo                 { return memTaskRepo{m.s} }
func (m *Mem) Tags() repo.TagRepo                   { return memTagRepo{m.s} }
func (m *Mem) History() repo.HistoryRepo            { return memHistoryRepo{m.s} }
func (m *Mem) Notifications() repo.NotificationRepo { return memNotificationRepo{m.s} }
func (m *Mem) Projects() repo.ProjectRepo           { return memProjectRepo{m.s} }
func (m *Mem) Users() repo.UserRepo                 { return memUserRepo{m.s} }

// InTx snapshots state, runs fn, and restores the snapshot when fn fails
// or the context is cancelled. Nested calls reuse the outer transaction.
func (m *Mem) InTx(ctx context.Context, fn func(ctx context.Context, s repo.Store) error) error {
	if m.inTx {
		return fn(ctx, m)
	}
	m.s.mu.Lock()
	snap := m.s.clone()
	m.s.mu.Unlock()

	err := fn(ctx, &Mem{s: m.s, inTx: true})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		m.s.mu.Lock()
		m.s.restore(snap)
		m.s.mu.Unlock()
		return err
	}
	return nil
}

func now() time.Time { return time.Now().UTC() }
