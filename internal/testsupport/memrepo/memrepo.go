// Package memrepo provides in-memory implementations of the repo interfaces
// for service and handler tests.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	dom "vidtube/internal/domain"
	"vidtube/internal/repo"
)

type edge struct{ subscriber, channel int64 }

type watch struct{ user, video int64 }

// Store is the shared state behind Users, Videos and Subscriptions.
type Store struct {
	mu          sync.Mutex
	nextUserID  int64
	nextVideoID int64
	users       map[int64]dom.User
	videos      map[int64]dom.Video
	subs        map[edge]struct{}
	history     []watch

	userRepo  *Users
	videoRepo *Videos
	subRepo   *Subscriptions
}

// New returns an empty store.
func New() *Store {
	s := &Store{
		users:  map[int64]dom.User{},
		videos: map[int64]dom.Video{},
		subs:   map[edge]struct{}{},
	}
	s.userRepo = &Users{s: s}
	s.videoRepo = &Videos{s: s}
	s.subRepo = &Subscriptions{s: s}
	return s
}

func (s *Store) Users() *Users                 { return s.userRepo }
func (s *Store) Videos() *Videos               { return s.videoRepo }
func (s *Store) Subscriptions() *Subscriptions { return s.subRepo }

func copyToken(t *string) *string {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUser(u dom.User) dom.User {
	u.RefreshToken = copyToken(u.RefreshToken)
	return u
}

// Users implements repo.UserRepo. Set the *Err fields to inject failures.
type Users struct {
	s *Store

	CreateErr          error
	SetRefreshTokenErr error
}

var _ repo.UserRepo = (*Users)(nil)

func (r *Users) Create(_ context.Context, u dom.User) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.CreateErr != nil {
		return dom.User{}, r.CreateErr
	}
	for _, ex := range r.s.users {
		if ex.Username == u.Username || ex.Email == u.Email {
			return dom.User{}, dom.ErrConflict
		}
	}
	r.s.nextUserID++
	now := time.Now().UTC()
	u.ID = r.s.nextUserID
	u.CreatedAt, u.UpdatedAt = now, now
	u.RefreshToken = nil
	r.s.users[u.ID] = cloneUser(u)
	return u.Sanitized(), nil
}

func (r *Users) GetByID(_ context.Context, id int64) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return dom.User{}, dom.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *Users) GetPublicByID(ctx context.Context, id int64) (dom.User, error) {
	u, err := r.GetByID(ctx, id)
	return u.Sanitized(), err
}

func (r *Users) GetByUsernameOrEmail(_ context.Context, username, email string) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int64, 0, len(r.s.users))
	for id := range r.s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		u := r.s.users[id]
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return cloneUser(u), nil
		}
	}
	return dom.User{}, dom.ErrNotFound
}

func (r *Users) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *Users) SetRefreshToken(_ context.Context, id int64, token *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.SetRefreshTokenErr != nil {
		return r.SetRefreshTokenErr
	}
	u, ok := r.s.users[id]
	if !ok {
		return dom.ErrUserNotFound
	}
	u.RefreshToken = copyToken(token)
	r.s.users[id] = u
	return nil
}

func (r *Users) RotateRefreshToken(_ context.Context, id int64, current, next string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != current {
		return false, nil
	}
	u.RefreshToken = &next
	r.s.users[id] = u
	return true, nil
}

func (r *Users) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return dom.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	r.s.users[id] = u
	return nil
}

func (r *Users) UpdateAccount(_ context.Context, id int64, fullName, email *string) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return dom.User{}, dom.ErrNotFound
	}
	if email != nil {
		for oid, o := range r.s.users {
			if oid != id && o.Email == *email {
				return dom.User{}, dom.ErrConflict
			}
		}
		u.Email = *email
	}
	if fullName != nil {
		u.FullName = *fullName
	}
	r.s.users[id] = u
	return u.Sanitized(), nil
}

func (r *Users) UpdateAvatar(_ context.Context, id int64, url string) (dom.User, error) {
	return r.update(id, func(u *dom.User) { u.AvatarURL = url })
}

func (r *Users) UpdateCoverImage(_ context.Context, id int64, url string) (dom.User, error) {
	return r.update(id, func(u *dom.User) { u.CoverImageURL = url })
}

func (r *Users) update(id int64, fn func(*dom.User)) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return dom.User{}, dom.ErrNotFound
	}
	fn(&u)
	r.s.users[id] = u
	return u.Sanitized(), nil
}

func (r *Users) GetChannelProfile(_ context.Context, username string, viewerID int64) (dom.ChannelProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	username = strings.ToLower(username)
	for _, u := range r.s.users {
		if u.Username != username {
			continue
		}
		p := dom.ChannelProfile{
			ID: u.ID, Username: u.Username, FullName: u.FullName, Email: u.Email,
			AvatarURL: u.AvatarURL, CoverImageURL: u.CoverImageURL,
		}
		for e := range r.s.subs {
			if e.channel == u.ID {
				p.SubscribersCount++
				if e.subscriber == viewerID {
					p.IsSubscribed = true
				}
			}
			if e.subscriber == u.ID {
				p.SubscribedToCount++
			}
		}
		return p, nil
	}
	return dom.ChannelProfile{}, dom.ErrNotFound
}

func (r *Users) GetWatchHistory(_ context.Context, userID int64) ([]dom.WatchedVideo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []dom.WatchedVideo{}
	for _, w := range r.s.history {
		if w.user != userID {
			continue
		}
		v, ok := r.s.videos[w.video]
		if !ok {
			continue
		}
		o, ok := r.s.users[v.OwnerID]
		if !ok {
			continue
		}
		list = append(list, dom.WatchedVideo{
			Video: v,
			Owner: dom.VideoOwner{ID: o.ID, Username: o.Username, FullName: o.FullName, AvatarURL: o.AvatarURL},
		})
	}
	return list, nil
}

func (r *Users) AddToWatchHistory(_ context.Context, userID, videoID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.history = append(r.s.history, watch{user: userID, video: videoID})
	return nil
}

// Videos implements repo.VideoRepo.
type Videos struct {
	s *Store
}

var _ repo.VideoRepo = (*Videos)(nil)

func (r *Videos) Create(_ context.Context, v dom.Video) (dom.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextVideoID++
	now := time.Now().UTC()
	v.ID = r.s.nextVideoID
	v.CreatedAt, v.UpdatedAt = now, now
	r.s.videos[v.ID] = v
	return v, nil
}

func (r *Videos) GetByID(_ context.Context, id int64) (dom.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.videos[id]
	if !ok {
		return dom.Video{}, dom.ErrNotFound
	}
	return v, nil
}

func (r *Videos) List(_ context.Context, f dom.VideoFilter) ([]dom.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(f.Query)
	list := []dom.Video{}
	for _, v := range r.s.videos {
		if !v.IsPublished || (f.OwnerID != 0 && v.OwnerID != f.OwnerID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(v.Title), q) && !strings.Contains(strings.ToLower(v.Description), q) {
			continue
		}
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		var less bool
		switch f.SortBy {
		case dom.SortByViews:
			less = a.Views < b.Views
		case dom.SortByDuration:
			less = a.Duration < b.Duration
		case dom.SortByTitle:
			less = a.Title < b.Title
		default:
			less = a.ID < b.ID
		}
		if f.SortDesc {
			return !less
		}
		return less
	})
	start := f.Offset()
	if start >= len(list) {
		return []dom.Video{}, nil
	}
	end := start + f.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end], nil
}

func (r *Videos) Update(_ context.Context, id int64, patch dom.Video) (dom.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.videos[id]
	if !ok {
		return dom.Video{}, dom.ErrNotFound
	}
	v.Title, v.Description, v.ThumbnailURL = patch.Title, patch.Description, patch.ThumbnailURL
	v.UpdatedAt = time.Now().UTC()
	r.s.videos[id] = v
	return v, nil
}

func (r *Videos) SetPublished(_ context.Context, id int64, published bool) (dom.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.videos[id]
	if !ok {
		return dom.Video{}, dom.ErrNotFound
	}
	v.IsPublished = published
	r.s.videos[id] = v
	return v, nil
}

func (r *Videos) IncrementViews(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.videos[id]
	if !ok {
		return dom.ErrNotFound
	}
	v.Views++
	r.s.videos[id] = v
	return nil
}

func (r *Videos) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.videos[id]; !ok {
		return dom.ErrNotFound
	}
	delete(r.s.videos, id)
	return nil
}

// Subscriptions implements repo.SubscriptionRepo.
type Subscriptions struct {
	s *Store
}

var _ repo.SubscriptionRepo = (*Subscriptions)(nil)

func (r *Subscriptions) Exists(_ context.Context, subscriberID, channelID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.subs[edge{subscriberID, channelID}]
	return ok, nil
}

func (r *Subscriptions) Create(_ context.Context, subscriberID, channelID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.subs[edge{subscriberID, channelID}] = struct{}{}
	return nil
}

func (r *Subscriptions) Delete(_ context.Context, subscriberID, channelID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.subs, edge{subscriberID, channelID})
	return nil
}
