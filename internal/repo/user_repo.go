package repo

import (
	"context"

	dom "vidtube/internal/domain"
)

// UserRepo provides user persistence: credentials, profile, session token
// and the read models built around a user.
type UserRepo interface {
	Create(ctx context.Context, u dom.User) (dom.User, error)
	GetByID(ctx context.Context, id int64) (dom.User, error)
	// GetPublicByID loads a user without password hash and refresh token.
	GetPublicByID(ctx context.Context, id int64) (dom.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (dom.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// SetRefreshToken stores the live refresh token; nil clears it.
	SetRefreshToken(ctx context.Context, id int64, token *string) error
	// RotateRefreshToken replaces current with next only if current is still live.
	RotateRefreshToken(ctx context.Context, id int64, current, next string) (bool, error)

	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateAccount(ctx context.Context, id int64, fullName, email *string) (dom.User, error)
	UpdateAvatar(ctx context.Context, id int64, url string) (dom.User, error)
	UpdateCoverImage(ctx context.Context, id int64, url string) (dom.User, error)

	GetChannelProfile(ctx context.Context, username string, viewerID int64) (dom.ChannelProfile, error)
	GetWatchHistory(ctx context.Context, userID int64) ([]dom.WatchedVideo, error)
	AddToWatchHistory(ctx context.Context, userID, videoID int64) error
}

const (
	userPublicCols = `id, username, full_name, email, avatar_url, cover_image_url, created_at, updated_at`
	userAllCols    = `id, username, full_name, email, password_hash, avatar_url, cover_image_url, refresh_token, created_at, updated_at`
)

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db DB
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db DB) *PGUserRepo {
	return &PGUserRepo{db: db}
}

func scanUserAll(row interface{ Scan(...any) error }) (dom.User, error) {
	var u dom.User
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash,
		&u.AvatarURL, &u.CoverImageURL, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func scanUserPublic(row interface{ Scan(...any) error }) (dom.User, error) {
	var u dom.User
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Email,
		&u.AvatarURL, &u.CoverImageURL, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

// Create inserts a new user and returns it without secrets.
func (r *PGUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	query := `
		INSERT INTO users (username, full_name, email, password_hash, avatar_url, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userPublicCols
	return scanUserPublic(r.db.QueryRow(ctx, query,
		u.Username, u.FullName, u.Email, u.PasswordHash, u.AvatarURL, u.CoverImageURL))
}

// GetByID returns the full user record, secrets included.
func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	return scanUserAll(r.db.QueryRow(ctx, `SELECT `+userAllCols+` FROM users WHERE id = $1`, id))
}

func (r *PGUserRepo) GetPublicByID(ctx context.Context, id int64) (dom.User, error) {
	return scanUserPublic(r.db.QueryRow(ctx, `SELECT `+userPublicCols+` FROM users WHERE id = $1`, id))
}

// GetByUsernameOrEmail returns the first user matching either identifier.
// Empty identifiers never match.
func (r *PGUserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (dom.User, error) {
	query := `
		SELECT ` + userAllCols + `
		FROM users
		WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		ORDER BY id
		LIMIT 1`
	return scanUserAll(r.db.QueryRow(ctx, query, username, email))
}

func (r *PGUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		username, email,
	).Scan(&exists)
	return exists, mapErr(err)
}

func (r *PGUserRepo) SetRefreshToken(ctx context.Context, id int64, token *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`, id, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dom.ErrUserNotFound
	}
	return nil
}

func (r *PGUserRepo) RotateRefreshToken(ctx context.Context, id int64, current, next string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET refresh_token = $3, updated_at = NOW() WHERE id = $1 AND refresh_token = $2`,
		id, current, next)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PGUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dom.ErrUserNotFound
	}
	return nil
}

// UpdateAccount sets the non-nil fields and returns the updated public record.
func (r *PGUserRepo) UpdateAccount(ctx context.Context, id int64, fullName, email *string) (dom.User, error) {
	query := `
		UPDATE users
		SET full_name = COALESCE($2, full_name), email = COALESCE($3, email), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userPublicCols
	return scanUserPublic(r.db.QueryRow(ctx, query, id, fullName, email))
}

func (r *PGUserRepo) UpdateAvatar(ctx context.Context, id int64, url string) (dom.User, error) {
	query := `UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userPublicCols
	return scanUserPublic(r.db.QueryRow(ctx, query, id, url))
}

func (r *PGUserRepo) UpdateCoverImage(ctx context.Context, id int64, url string) (dom.User, error) {
	query := `UPDATE users SET cover_image_url = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userPublicCols
	return scanUserPublic(r.db.QueryRow(ctx, query, id, url))
}

// GetChannelProfile returns the channel view of username with subscription counts.
// viewerID 0 means anonymous; IsSubscribed is then false.
func (r *PGUserRepo) GetChannelProfile(ctx context.Context, username string, viewerID int64) (dom.ChannelProfile, error) {
	query := `
		SELECT u.id, u.username, u.full_name, u.email, u.avatar_url, u.cover_image_url,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id),
			(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
			EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2)
		FROM users u
		WHERE u.username = LOWER($1)`
	var p dom.ChannelProfile
	err := r.db.QueryRow(ctx, query, username, viewerID).Scan(
		&p.ID, &p.Username, &p.FullName, &p.Email, &p.AvatarURL, &p.CoverImageURL,
		&p.SubscribersCount, &p.SubscribedToCount, &p.IsSubscribed,
	)
	return p, mapErr(err)
}

// GetWatchHistory returns watched videos in watch order, each joined to its owner.
func (r *PGUserRepo) GetWatchHistory(ctx context.Context, userID int64) ([]dom.WatchedVideo, error) {
	query := `
		SELECT v.id, v.owner_id, v.video_url, v.thumbnail_url, v.title, v.description,
			v.duration_seconds, v.views, v.is_published, v.created_at, v.updated_at,
			o.id, o.username, o.full_name, o.avatar_url
		FROM watch_history w
		JOIN videos v ON v.id = w.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE w.user_id = $1
		ORDER BY w.id`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.WatchedVideo{}
	for rows.Next() {
		var w dom.WatchedVideo
		if err := rows.Scan(&w.ID, &w.OwnerID, &w.VideoURL, &w.ThumbnailURL, &w.Title, &w.Description,
			&w.Duration, &w.Views, &w.IsPublished, &w.CreatedAt, &w.UpdatedAt,
			&w.Owner.ID, &w.Owner.Username, &w.Owner.FullName, &w.Owner.AvatarURL); err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

func (r *PGUserRepo) AddToWatchHistory(ctx context.Context, userID, videoID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO watch_history (user_id, video_id) VALUES ($1, $2)`, userID, videoID)
	return err
}
