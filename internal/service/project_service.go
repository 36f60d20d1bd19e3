package service

import (
	"context"
	"fmt"
	"strings"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
	"github.com/k-iizuka000/ai-todo-sub007/internal/repo"
	"github.com/k-iizuka000/ai-todo-sub007/internal/utils"
)

// colorFor is the shared palette pick for tags and projects.
func colorFor(name string) string { return utils.ColorForName(name) }

// ProjectService manages the project catalog tasks reference.
type ProjectService struct {
	store repo.Store
}

// NewProjectService returns a new ProjectService.
func NewProjectService(store repo.Store) *ProjectService {
	return &ProjectService{store: store}
}

// Create adds a project owned by the acting user.
func (s *ProjectService) Create(ctx context.Context, name, color string, ownerID int64) (dom.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return dom.Project{}, fmt.Errorf("%w: project name is required", dom.ErrValidation)
	}
	if color == "" {
		color = colorFor(name)
	}
	return s.store.Projects().Create(ctx, dom.Project{Name: name, Color: color, OwnerID: ownerID})
}

// List returns all projects.
func (s *ProjectService) List(ctx context.Context) ([]dom.Project, error) {
	return s.store.Projects().List(ctx)
}
