package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vidtube/internal/cache"
	dom "vidtube/internal/domain"
	"vidtube/internal/repo"
)

type SubscriptionService struct {
	subs     repo.SubscriptionRepo
	users    repo.UserRepo
	channels *cache.ChannelCache
	log      *zap.Logger
}

func NewSubscriptionService(subs repo.SubscriptionRepo, users repo.UserRepo, channels *cache.ChannelCache, log *zap.Logger) *SubscriptionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubscriptionService{subs: subs, users: users, channels: channels, log: log}
}

// Toggle subscribes subscriber to the channel, or unsubscribes if already
// subscribed. It reports whether the subscription exists afterwards.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriber dom.User, channelID int64) (bool, error) {
	if subscriber.ID == channelID {
		return false, fmt.Errorf("%w: cannot subscribe to your own channel", dom.ErrValidation)
	}
	channel, err := s.users.GetPublicByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			return false, fmt.Errorf("%w: channel does not exist", dom.ErrNotFound)
		}
		return false, err
	}

	exists, err := s.subs.Exists(ctx, subscriber.ID, channelID)
	if err != nil {
		return false, err
	}
	if exists {
		err = s.subs.Delete(ctx, subscriber.ID, channelID)
	} else {
		err = s.subs.Create(ctx, subscriber.ID, channelID)
	}
	if err != nil {
		return false, err
	}

	s.invalidate(ctx, channel.Username)
	s.invalidate(ctx, subscriber.Username)
	return !exists, nil
}

func (s *SubscriptionService) invalidate(ctx context.Context, username string) {
	if s.channels == nil || username == "" {
		return
	}
	if err := s.channels.Invalidate(ctx, username); err != nil {
		s.log.Warn("channel cache invalidate", zap.String("username", username), zap.Error(err))
	}
}
