package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	dom "vidtube/internal/domain"
)

const keyChannel = "channel:"

// ChannelCache caches channel profiles per (username, viewer). The
// isSubscribed flag depends on the viewer, so entries are not shared.
type ChannelCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewChannelCache(rdb *redis.Client, ttl time.Duration) *ChannelCache {
	return &ChannelCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached profile, or ok=false on miss.
func (c *ChannelCache) Get(ctx context.Context, username string, viewerID int64) (dom.ChannelProfile, bool, error) {
	b, err := c.rdb.Get(ctx, channelKey(username, viewerID)).Bytes()
	if err == redis.Nil {
		return dom.ChannelProfile{}, false, nil
	}
	if err != nil {
		return dom.ChannelProfile{}, false, err
	}
	var p dom.ChannelProfile
	if err := json.Unmarshal(b, &p); err != nil {
		return dom.ChannelProfile{}, false, err
	}
	return p, true, nil
}

func (c *ChannelCache) Set(ctx context.Context, username string, viewerID int64, p dom.ChannelProfile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, channelKey(username, viewerID), b, c.ttl).Err()
}

// Invalidate drops every viewer's copy of the channel.
func (c *ChannelCache) Invalidate(ctx context.Context, username string) error {
	return deleteMatching(ctx, c.rdb, keyChannel+normalizeQuery(username)+":*")
}

func channelKey(username string, viewerID int64) string {
	return keyChannel + normalizeQuery(username) + ":" + strconv.FormatInt(viewerID, 10)
}
