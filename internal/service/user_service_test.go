package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"vidtube/internal/auth"
	dom "vidtube/internal/domain"
)

func TestRegister_LoginLogoutScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, RegisterInput{
		Username: "Alice", FullName: "Alice", Email: "Alice@X.com", Password: "pw123",
		Avatar: upload("avatar"),
	})
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "alice@x.com", u.Email)
	require.Empty(t, u.PasswordHash)
	require.Nil(t, u.RefreshToken)
	require.NotEmpty(t, u.AvatarURL)
	require.Empty(t, u.CoverImageURL)

	stored, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotEqual(t, "pw123", stored.PasswordHash)
	require.True(t, auth.CheckPassword(stored.PasswordHash, "pw123"))
	require.Nil(t, stored.RefreshToken, "registration opens no session")

	sess, err := f.users.Login(ctx, "alice", "", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Tokens.AccessToken)
	require.NotEmpty(t, sess.Tokens.RefreshToken)
	require.NotEqual(t, sess.Tokens.AccessToken, sess.Tokens.RefreshToken)
	require.Empty(t, sess.User.PasswordHash)

	require.NoError(t, f.users.Logout(ctx, u.ID))
	stored, err = f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, stored.RefreshToken)

	_, err = f.users.RefreshSession(ctx, sess.Tokens.RefreshToken)
	require.ErrorIs(t, err, dom.ErrTokenStale)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := RegisterInput{Username: "bob", FullName: "Bob", Email: "bob@x.com", Password: "pw", Avatar: upload("avatar")}

	blank := base
	blank.FullName = "   "
	_, err := f.users.Register(ctx, blank)
	require.ErrorIs(t, err, dom.ErrValidation)

	noAt := base
	noAt.Email = "bob.x.com"
	_, err = f.users.Register(ctx, noAt)
	require.ErrorIs(t, err, dom.ErrValidation)

	noAvatar := base
	noAvatar.Avatar = nil
	_, err = f.users.Register(ctx, noAvatar)
	require.ErrorIs(t, err, dom.ErrValidation)
	require.Empty(t, f.assets.Uploaded())
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "carol")

	_, err := f.users.Register(ctx, RegisterInput{
		Username: "CAROL", FullName: "Other", Email: "other@x.com", Password: "pw", Avatar: upload("avatar"),
	})
	require.ErrorIs(t, err, dom.ErrConflict)

	_, err = f.users.Register(ctx, RegisterInput{
		Username: "other", FullName: "Other", Email: "carol@x.com", Password: "pw", Avatar: upload("avatar"),
	})
	require.ErrorIs(t, err, dom.ErrConflict)

	// the duplicate check runs before the avatar check
	_, err = f.users.Register(ctx, RegisterInput{
		Username: "carol", FullName: "Other", Email: "o@x.com", Password: "pw",
	})
	require.ErrorIs(t, err, dom.ErrConflict)
}

func TestRegister_Uploads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.assets.FailOn("coverImage")
	u, err := f.users.Register(ctx, RegisterInput{
		Username: "dan", FullName: "Dan", Email: "dan@x.com", Password: "pw",
		Avatar: upload("avatar"), CoverImage: upload("coverImage"),
	})
	require.NoError(t, err, "cover image failure is not fatal")
	require.Empty(t, u.CoverImageURL)

	f.assets.FailOn("avatar")
	_, err = f.users.Register(ctx, RegisterInput{
		Username: "erin", FullName: "Erin", Email: "erin@x.com", Password: "pw", Avatar: upload("avatar"),
	})
	require.ErrorIs(t, err, dom.ErrUpload)
	_, err = f.store.Users().GetByUsernameOrEmail(ctx, "erin", "")
	require.ErrorIs(t, err, dom.ErrNotFound)
}

func TestLogin_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "frank")

	_, err := f.users.Login(ctx, " ", "", "pw123")
	require.ErrorIs(t, err, dom.ErrValidation)

	_, err = f.users.Login(ctx, "nobody", "", "pw123")
	require.ErrorIs(t, err, dom.ErrNotFound)

	_, err = f.users.Login(ctx, "", "frank@x.com", "wrong")
	require.ErrorIs(t, err, dom.ErrUnauthorized)

	sess, err := f.users.Login(ctx, "", "FRANK@x.com", "pw123")
	require.NoError(t, err)
	require.Equal(t, u.ID, sess.User.ID)
}

func TestRefreshSession_SucceedsExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "gina")

	sess, err := f.users.Login(ctx, "gina", "", "pw123")
	require.NoError(t, err)

	next, err := f.users.RefreshSession(ctx, sess.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, sess.Tokens.RefreshToken, next.Tokens.RefreshToken)

	_, err = f.users.RefreshSession(ctx, sess.Tokens.RefreshToken)
	require.ErrorIs(t, err, dom.ErrTokenStale)

	// replay forces logout: the rotated token is dead too
	_, err = f.users.RefreshSession(ctx, next.Tokens.RefreshToken)
	require.ErrorIs(t, err, dom.ErrTokenStale)

	_, err = f.users.RefreshSession(ctx, "")
	require.ErrorIs(t, err, dom.ErrUnauthorized)
	_, err = f.users.RefreshSession(ctx, "junk")
	require.ErrorIs(t, err, dom.ErrInvalidToken)
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "hank")
	_, err := f.users.Login(ctx, "hank", "", "pw123")
	require.NoError(t, err)

	require.NoError(t, f.users.Logout(ctx, u.ID))
	require.NoError(t, f.users.Logout(ctx, u.ID))
	require.NoError(t, f.users.Logout(ctx, 999))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "ivy")
	before, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)

	err = f.users.ChangePassword(ctx, u.ID, "wrong", "new-pw")
	require.ErrorIs(t, err, dom.ErrUnauthorized)
	after, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, before.PasswordHash, after.PasswordHash)

	require.ErrorIs(t, f.users.ChangePassword(ctx, u.ID, "pw123", " "), dom.ErrValidation)

	require.NoError(t, f.users.ChangePassword(ctx, u.ID, "pw123", "new-pw"))
	_, err = f.users.Login(ctx, "ivy", "", "pw123")
	require.ErrorIs(t, err, dom.ErrUnauthorized)
	_, err = f.users.Login(ctx, "ivy", "", "new-pw")
	require.NoError(t, err)
}

func TestUpdateAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "jack")
	f.register(t, "kate")

	_, err := f.users.UpdateAccount(ctx, u.ID, nil, nil)
	require.ErrorIs(t, err, dom.ErrValidation)

	empty := "  "
	_, err = f.users.UpdateAccount(ctx, u.ID, &empty, nil)
	require.ErrorIs(t, err, dom.ErrValidation)

	taken := "KATE@x.com"
	_, err = f.users.UpdateAccount(ctx, u.ID, nil, &taken)
	require.ErrorIs(t, err, dom.ErrConflict)

	name := " Jack Black "
	got, err := f.users.UpdateAccount(ctx, u.ID, &name, nil)
	require.NoError(t, err)
	require.Equal(t, "Jack Black", got.FullName)
	require.Equal(t, "jack@x.com", got.Email)
	require.Empty(t, got.PasswordHash)
}

func TestUpdateAvatarAndCover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "liam")

	_, err := f.users.UpdateAvatar(ctx, u.ID, nil)
	require.ErrorIs(t, err, dom.ErrValidation)

	got, err := f.users.UpdateAvatar(ctx, u.ID, upload("avatar"))
	require.NoError(t, err)
	require.NotEqual(t, u.AvatarURL, got.AvatarURL)
	require.Contains(t, f.assets.Deleted(), u.AvatarURL)

	got, err = f.users.UpdateCoverImage(ctx, u.ID, upload("coverImage"))
	require.NoError(t, err)
	require.NotEmpty(t, got.CoverImageURL)
	stored, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, got.CoverImageURL, stored.CoverImageURL)

	f.assets.FailOn("coverImage")
	_, err = f.users.UpdateCoverImage(ctx, u.ID, upload("coverImage"))
	require.ErrorIs(t, err, dom.ErrUpload)
	stored, err = f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, got.CoverImageURL, stored.CoverImageURL)
}

func TestChannelProfile(t *testing.T) {
	for _, tc := range []struct {
		name  string
		redis bool
	}{{"db", false}, {"cached", true}} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, fixtureOpt{redis: tc.redis})
			ctx := context.Background()
			mia := f.register(t, "mia")
			ned := f.register(t, "ned")

			_, err := f.users.ChannelProfile(ctx, "nobody", ned.ID)
			require.ErrorIs(t, err, dom.ErrNotFound)

			p, err := f.users.ChannelProfile(ctx, "MIA", ned.ID)
			require.NoError(t, err)
			require.Equal(t, int64(0), p.SubscribersCount)
			require.False(t, p.IsSubscribed)

			on, err := f.subs.Toggle(ctx, ned, mia.ID)
			require.NoError(t, err)
			require.True(t, on)

			p, err = f.users.ChannelProfile(ctx, "mia", ned.ID)
			require.NoError(t, err)
			require.Equal(t, int64(1), p.SubscribersCount)
			require.True(t, p.IsSubscribed)

			p, err = f.users.ChannelProfile(ctx, "ned", mia.ID)
			require.NoError(t, err)
			require.Equal(t, int64(1), p.SubscribedToCount)
			require.False(t, p.IsSubscribed)

			anon, err := f.users.ChannelProfile(ctx, "mia", 0)
			require.NoError(t, err)
			require.False(t, anon.IsSubscribed)

			on, err = f.subs.Toggle(ctx, ned, mia.ID)
			require.NoError(t, err)
			require.False(t, on)
			p, err = f.users.ChannelProfile(ctx, "mia", ned.ID)
			require.NoError(t, err)
			require.Equal(t, int64(0), p.SubscribersCount)
			require.False(t, p.IsSubscribed)
		})
	}
}

func TestWatchHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "olga")
	viewer := f.register(t, "pete")

	a, err := f.videos.Publish(ctx, owner.ID, PublishInput{Title: "A", Description: "first", VideoFile: upload("videoFile"), Thumbnail: upload("thumbnail")})
	require.NoError(t, err)
	b, err := f.videos.Publish(ctx, owner.ID, PublishInput{Title: "B", Description: "second", VideoFile: upload("videoFile"), Thumbnail: upload("thumbnail")})
	require.NoError(t, err)

	h, err := f.users.WatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	require.Empty(t, h)

	for _, id := range []int64{b.ID, a.ID} {
		_, err := f.videos.Get(ctx, id, viewer.ID)
		require.NoError(t, err)
	}
	h, err = f.users.WatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, h, 2)
	require.Equal(t, b.ID, h[0].ID)
	require.Equal(t, a.ID, h[1].ID)
	require.Equal(t, "olga", h[0].Owner.Username)
	require.Equal(t, "olga Doe", h[0].Owner.FullName)
	require.Equal(t, owner.AvatarURL, h[0].Owner.AvatarURL)
}
