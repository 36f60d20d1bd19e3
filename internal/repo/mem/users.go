package mem

import (
	"context"
	"fmt"
	"sort"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
)

type memUserRepo struct {
	s *memState
}

func (r memUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return dom.User{}, dom.ErrNotFound
	}
	return u, nil
}

func (r memUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return dom.User{}, dom.ErrNotFound
}

func (r memUserRepo) Create(ctx context.Context, username, passwordHash string) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return dom.User{}, fmt.Errorf("%w: username %q", dom.ErrConflict, username)
		}
	}
	r.s.nextUser++
	u := dom.User{ID: r.s.nextUser, Username: username, PasswordHash: passwordHash, CreatedAt: now()}
	r.s.users[u.ID] = u
	return u, nil
}

func (r memUserRepo) ListIDs(ctx context.Context) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int64, 0, len(r.s.users))
	for id := range r.s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type memProjectRepo struct {
	s *memState
}

func (r memProjectRepo) Create(ctx context.Context, p dom.Project) (dom.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.projects {
		if v.Name == p.Name {
			return dom.Project{}, fmt.Errorf("%w: project name %q", dom.ErrConflict, p.Name)
		}
	}
	r.s.nextProject++
	p.ID = r.s.nextProject
	p.CreatedAt = now()
	r.s.projects[p.ID] = p
	return p, nil
}

func (r memProjectRepo) List(ctx context.Context) ([]dom.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]dom.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}
