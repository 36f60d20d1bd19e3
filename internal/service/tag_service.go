package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/k-iizuka000/ai-todo-sub007/internal/cache"
	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
	"github.com/k-iizuka000/ai-todo-sub007/internal/repo"

	"golang.org/x/sync/singleflight"
)

// TagService manages the tag catalog. Usage counts on the returned tags
// are maintained by the mutation core, never here.
type TagService struct {
	store repo.Store
	cache *cache.TaskCache
	sf    singleflight.Group
}

// NewTagService creates a TagService. If c is nil, caching is disabled.
func NewTagService(store repo.Store, c *cache.TaskCache) *TagService {
	return &TagService{store: store, cache: c}
}

// Create adds a tag. A duplicate name surfaces as ErrConflict; an empty
// color gets a deterministic palette pick.
func (s *TagService) Create(ctx context.Context, name, color string) (dom.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return dom.Tag{}, fmt.Errorf("%w: tag name is required", dom.ErrValidation)
	}
	if color == "" {
		color = colorFor(name)
	}
	tag, err := s.store.Tags().Create(ctx, name, color)
	if err != nil {
		return dom.Tag{}, err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
	return tag, nil
}

// List returns all tags, most used first ("popular tags").
func (s *TagService) List(ctx context.Context) ([]dom.Tag, error) {
	if s.cache == nil {
		return s.store.Tags().List(ctx)
	}
	v, err, _ := s.sf.Do("tags:popular", func() (interface{}, error) {
		if cached, err := s.cache.GetPopularTags(ctx); err == nil && cached != nil {
			return cached, nil
		}
		tags, err := s.store.Tags().List(ctx)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetPopularTags(ctx, tags)
		return tags, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Tag), nil
}
