package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyStatsPrefix = "task:stats:"
	keyPopularTags = "tags:popular"
)

// TaskCache caches task stats and the popular-tags listing in Redis.
// Both are ranking/dashboard reads, invalidated wholesale on any mutation.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

func statsKey(userID int64, projectID *int64) string {
	key := keyStatsPrefix + strconv.FormatInt(userID, 10)
	if projectID != nil {
		key += ":p" + strconv.FormatInt(*projectID, 10)
	}
	return key
}

// GetStats returns cached stats or nil on miss.
func (c *TaskCache) GetStats(ctx context.Context, userID int64, projectID *int64) (*dom.TaskStats, error) {
	b, err := c.rdb.Get(ctx, statsKey(userID, projectID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats dom.TaskStats
	if err := json.Unmarshal(b, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetStats stores stats in cache.
func (c *TaskCache) SetStats(ctx context.Context, userID int64, projectID *int64, stats dom.TaskStats) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statsKey(userID, projectID), b, c.ttl).Err()
}

// GetPopularTags returns the cached tag listing or nil on miss.
func (c *TaskCache) GetPopularTags(ctx context.Context) ([]dom.Tag, error) {
	b, err := c.rdb.Get(ctx, keyPopularTags).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tags []dom.Tag
	if err := json.Unmarshal(b, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// SetPopularTags stores the tag listing in cache.
func (c *TaskCache) SetPopularTags(ctx context.Context, tags []dom.Tag) error {
	b, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPopularTags, b, c.ttl).Err()
}

// Invalidate removes the popular-tags key and every stats key
// (cache invalidation on write).
func (c *TaskCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, keyPopularTags).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, keyStatsPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
