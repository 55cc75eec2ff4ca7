package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"vidtube/internal/auth"
	"vidtube/internal/cache"
	dom "vidtube/internal/domain"
	"vidtube/internal/repo"
	"vidtube/internal/utils"
)

// RegisterInput carries the registration form. Avatar is required, CoverImage is not.
type RegisterInput struct {
	Username   string
	FullName   string
	Email      string
	Password   string
	Avatar     *dom.UploadedFile
	CoverImage *dom.UploadedFile
}

// Session is what a successful login or refresh hands back to the client.
type Session struct {
	User   dom.User
	Tokens auth.TokenPair
}

// UserService handles account operations and the user read models.
type UserService struct {
	repo     repo.UserRepo
	tokens   *auth.TokenService
	assets   AssetStore
	channels *cache.ChannelCache
	sf       singleflight.Group
	log      *zap.Logger
}

// NewUserService returns a new UserService. If channels is nil, channel
// profiles are not cached.
func NewUserService(r repo.UserRepo, tokens *auth.TokenService, assets AssetStore, channels *cache.ChannelCache, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{repo: r, tokens: tokens, assets: assets, channels: channels, log: log}
}

// Register creates a user. No session is established.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (dom.User, error) {
	username := utils.NormalizeIdentifier(in.Username)
	email := utils.NormalizeIdentifier(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return dom.User{}, fmt.Errorf("%w: all fields are required", dom.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return dom.User{}, fmt.Errorf("%w: email must contain @", dom.ErrValidation)
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return dom.User{}, err
	}
	if exists {
		return dom.User{}, fmt.Errorf("%w: user with email or username already exists", dom.ErrConflict)
	}
	if in.Avatar == nil {
		return dom.User{}, fmt.Errorf("%w: avatar file is required", dom.ErrValidation)
	}

	avatarURL, err := s.assets.Upload(ctx, *in.Avatar)
	if err != nil {
		return dom.User{}, fmt.Errorf("%w: avatar: %v", dom.ErrUpload, err)
	}
	var coverURL string
	if in.CoverImage != nil {
		coverURL, err = s.assets.Upload(ctx, *in.CoverImage)
		if err != nil {
			s.log.Warn("cover image upload failed, registering without it", zap.String("username", username), zap.Error(err))
			coverURL = ""
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		s.dropAsset(ctx, avatarURL)
		s.dropAsset(ctx, coverURL)
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, dom.User{
		Username:      username,
		FullName:      fullName,
		Email:         email,
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	if err != nil {
		s.dropAsset(ctx, avatarURL)
		s.dropAsset(ctx, coverURL)
		if errors.Is(err, dom.ErrConflict) {
			return dom.User{}, fmt.Errorf("%w: user with email or username already exists", dom.ErrConflict)
		}
		return dom.User{}, fmt.Errorf("%w: register user: %v", dom.ErrInternal, err)
	}
	return u.Sanitized(), nil
}

// Login checks credentials by username or email and opens a session.
func (s *UserService) Login(ctx context.Context, username, email, password string) (Session, error) {
	username = utils.NormalizeIdentifier(username)
	email = utils.NormalizeIdentifier(email)
	if username == "" && email == "" {
		return Session{}, fmt.Errorf("%w: username or email is required", dom.ErrValidation)
	}
	u, err := s.repo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			return Session{}, fmt.Errorf("%w: user does not exist", dom.ErrNotFound)
		}
		return Session{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return Session{}, fmt.Errorf("%w: invalid user credentials", dom.ErrUnauthorized)
	}
	pair, err := s.tokens.IssueSessionPair(ctx, u)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u.Sanitized(), Tokens: pair}, nil
}

// Logout clears the live refresh token. Logging out twice is not an error.
func (s *UserService) Logout(ctx context.Context, userID int64) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil && !errors.Is(err, dom.ErrNotFound) {
		return err
	}
	return nil
}

// RefreshSession rotates the session. Presenting a rotated-out token is
// treated as replay: the live token is cleared and the caller must log in.
func (s *UserService) RefreshSession(ctx context.Context, presented string) (Session, error) {
	u, pair, err := s.tokens.VerifyAndRotate(ctx, presented)
	if err != nil {
		if errors.Is(err, dom.ErrTokenStale) && u.ID != 0 {
			s.log.Warn("stale refresh token presented, revoking session", zap.Int64("user_id", u.ID))
			if u.RefreshToken != nil {
				if rerr := s.tokens.Revoke(ctx, u.ID); rerr != nil {
					s.log.Error("revoke session", zap.Int64("user_id", u.ID), zap.Error(rerr))
				}
			}
		}
		return Session{}, err
	}
	return Session{User: u.Sanitized(), Tokens: pair}, nil
}

// ChangePassword replaces the password after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: new password is required", dom.ErrValidation)
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			return dom.ErrUserNotFound
		}
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, oldPassword) {
		return fmt.Errorf("%w: invalid old password", dom.ErrUnauthorized)
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

// UpdateAccount changes full name and/or email. At least one is required.
func (s *UserService) UpdateAccount(ctx context.Context, userID int64, fullName, email *string) (dom.User, error) {
	if fullName != nil {
		v := strings.TrimSpace(*fullName)
		if v == "" {
			fullName = nil
		} else {
			fullName = &v
		}
	}
	if email != nil {
		v := utils.NormalizeIdentifier(*email)
		if v == "" {
			email = nil
		} else if !strings.Contains(v, "@") {
			return dom.User{}, fmt.Errorf("%w: email must contain @", dom.ErrValidation)
		} else {
			email = &v
		}
	}
	if fullName == nil && email == nil {
		return dom.User{}, fmt.Errorf("%w: fullName or email is required", dom.ErrValidation)
	}
	u, err := s.repo.UpdateAccount(ctx, userID, fullName, email)
	if err != nil {
		if errors.Is(err, dom.ErrConflict) {
			return dom.User{}, fmt.Errorf("%w: email is already in use", dom.ErrConflict)
		}
		return dom.User{}, err
	}
	s.invalidateChannel(ctx, u.Username)
	return u.Sanitized(), nil
}

// UpdateAvatar uploads a new avatar and drops the previous one.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, f *dom.UploadedFile) (dom.User, error) {
	return s.replaceImage(ctx, userID, f, "avatar",
		func(u dom.User) string { return u.AvatarURL },
		s.repo.UpdateAvatar)
}

// UpdateCoverImage uploads a new cover image and drops the previous one.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID int64, f *dom.UploadedFile) (dom.User, error) {
	return s.replaceImage(ctx, userID, f, "cover image",
		func(u dom.User) string { return u.CoverImageURL },
		s.repo.UpdateCoverImage)
}

func (s *UserService) replaceImage(
	ctx context.Context,
	userID int64,
	f *dom.UploadedFile,
	what string,
	current func(dom.User) string,
	persist func(context.Context, int64, string) (dom.User, error),
) (dom.User, error) {
	if f == nil {
		return dom.User{}, fmt.Errorf("%w: %s file is missing", dom.ErrValidation, what)
	}
	before, err := s.repo.GetPublicByID(ctx, userID)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			return dom.User{}, dom.ErrUserNotFound
		}
		return dom.User{}, err
	}
	url, err := s.assets.Upload(ctx, *f)
	if err != nil {
		return dom.User{}, fmt.Errorf("%w: %s: %v", dom.ErrUpload, what, err)
	}
	u, err := persist(ctx, userID, url)
	if err != nil {
		s.dropAsset(ctx, url)
		return dom.User{}, err
	}
	s.dropAsset(ctx, current(before))
	s.invalidateChannel(ctx, u.Username)
	return u.Sanitized(), nil
}

// ChannelProfile returns the public profile of username as seen by viewerID
// (0 for no viewer).
func (s *UserService) ChannelProfile(ctx context.Context, username string, viewerID int64) (dom.ChannelProfile, error) {
	username = utils.NormalizeIdentifier(username)
	if username == "" {
		return dom.ChannelProfile{}, fmt.Errorf("%w: username is missing", dom.ErrValidation)
	}
	if s.channels == nil {
		return s.loadChannel(ctx, username, viewerID)
	}
	key := "channel:" + username + ":" + strconv.FormatInt(viewerID, 10)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if p, ok, err := s.channels.Get(ctx, username, viewerID); err == nil && ok {
			return p, nil
		} else if err != nil {
			s.log.Warn("channel cache read", zap.String("username", username), zap.Error(err))
		}
		p, err := s.loadChannel(ctx, username, viewerID)
		if err != nil {
			return nil, err
		}
		if err := s.channels.Set(ctx, username, viewerID, p); err != nil {
			s.log.Warn("channel cache write", zap.String("username", username), zap.Error(err))
		}
		return p, nil
	})
	if err != nil {
		return dom.ChannelProfile{}, err
	}
	return v.(dom.ChannelProfile), nil
}

func (s *UserService) loadChannel(ctx context.Context, username string, viewerID int64) (dom.ChannelProfile, error) {
	p, err := s.repo.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			return dom.ChannelProfile{}, fmt.Errorf("%w: channel does not exist", dom.ErrNotFound)
		}
		return dom.ChannelProfile{}, err
	}
	return p, nil
}

// WatchHistory returns the videos the user watched, oldest first.
func (s *UserService) WatchHistory(ctx context.Context, userID int64) ([]dom.WatchedVideo, error) {
	return s.repo.GetWatchHistory(ctx, userID)
}

func (s *UserService) invalidateChannel(ctx context.Context, username string) {
	if s.channels == nil || username == "" {
		return
	}
	if err := s.channels.Invalidate(ctx, username); err != nil {
		s.log.Warn("channel cache invalidate", zap.String("username", username), zap.Error(err))
	}
}

func (s *UserService) dropAsset(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.assets.Delete(ctx, url); err != nil {
		s.log.Warn("delete asset", zap.String("url", url), zap.Error(err))
	}
}
