package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vidtube/internal/auth"
	"vidtube/internal/cache"
	dom "vidtube/internal/domain"
	"vidtube/internal/testsupport/assetstub"
	"vidtube/internal/testsupport/memrepo"
)

type fixture struct {
	store  *memrepo.Store
	assets *assetstub.Store
	tokens *auth.TokenService
	users  *UserService
	videos *VideoService
	subs   *SubscriptionService
}

type fixtureOpt struct {
	redis bool
}

func newFixture(t *testing.T, opts ...fixtureOpt) fixture {
	t.Helper()
	var o fixtureOpt
	for _, x := range opts {
		o = x
	}
	log := zaptest.NewLogger(t)
	store := memrepo.New()
	assets := assetstub.New()
	tokens := auth.NewTokenService(store.Users(), auth.TokenConfig{
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})

	var (
		channels *cache.ChannelCache
		videos   *cache.VideoCache
	)
	if o.redis {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		channels = cache.NewChannelCache(rdb, time.Minute)
		videos = cache.NewVideoCache(rdb, time.Minute)
	}

	return fixture{
		store:  store,
		assets: assets,
		tokens: tokens,
		users:  NewUserService(store.Users(), tokens, assets, channels, log),
		videos: NewVideoService(store.Videos(), store.Users(), assets, videos, log),
		subs:   NewSubscriptionService(store.Subscriptions(), store.Users(), channels, log),
	}
}

func upload(field string) *dom.UploadedFile {
	return &dom.UploadedFile{FieldName: field, FilePath: "/tmp/" + field, SizeBytes: 128}
}

func (f fixture) register(t *testing.T, username string) dom.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Username: username,
		FullName: username + " Doe",
		Email:    username + "@x.com",
		Password: "pw123",
		Avatar:   upload("avatar"),
	})
	require.NoError(t, err)
	return u
}
