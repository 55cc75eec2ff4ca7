package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	dom "vidtube/internal/domain"
)

const keyVideoList = "videos:list:"

// VideoCache caches pages of the public video listing in Redis.
type VideoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewVideoCache returns a new VideoCache.
func NewVideoCache(rdb *redis.Client, ttl time.Duration) *VideoCache {
	return &VideoCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached page for f or nil if miss.
func (c *VideoCache) GetList(ctx context.Context, f dom.VideoFilter) ([]dom.Video, error) {
	b, err := c.rdb.Get(ctx, ListKey(f)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Video
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the page in cache.
func (c *VideoCache) SetList(ctx context.Context, f dom.VideoFilter, list []dom.Video) error {
	if list == nil {
		list = []dom.Video{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, ListKey(f), b, c.ttl).Err()
}

// InvalidateAll removes every cached page (cache invalidation on write).
func (c *VideoCache) InvalidateAll(ctx context.Context) error {
	return deleteMatching(ctx, c.rdb, keyVideoList+"*")
}

// ListKey is the Redis key of one listing page. f must be normalized.
func ListKey(f dom.VideoFilter) string {
	dir := "asc"
	if f.SortDesc {
		dir = "desc"
	}
	return fmt.Sprintf("%s%d:%d:%d:%s:%s:%s", keyVideoList,
		f.OwnerID, f.Page, f.Limit, f.SortBy, dir, normalizeQuery(f.Query))
}

func deleteMatching(ctx context.Context, rdb *redis.Client, pattern string) error {
	iter := rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func normalizeQuery(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
