package repo

import (
	"context"
	"fmt"

	dom "vidtube/internal/domain"
	"vidtube/internal/utils"
)

type VideoRepo interface {
	Create(ctx context.Context, v dom.Video) (dom.Video, error)
	GetByID(ctx context.Context, id int64) (dom.Video, error)
	List(ctx context.Context, f dom.VideoFilter) ([]dom.Video, error)
	Update(ctx context.Context, id int64, patch dom.Video) (dom.Video, error)
	SetPublished(ctx context.Context, id int64, published bool) (dom.Video, error)
	IncrementViews(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

const videoCols = `id, owner_id, video_url, thumbnail_url, title, description, duration_seconds, views, is_published, created_at, updated_at`

var videoSortColumns = map[string]string{
	dom.SortByCreatedAt: "created_at",
	dom.SortByViews:     "views",
	dom.SortByDuration:  "duration_seconds",
	dom.SortByTitle:     "title",
}

type PGVideoRepo struct {
	db DB
}

func NewPGVideoRepo(db DB) *PGVideoRepo {
	return &PGVideoRepo{db: db}
}

func scanVideo(row interface{ Scan(...any) error }) (dom.Video, error) {
	var v dom.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.VideoURL, &v.ThumbnailURL, &v.Title, &v.Description,
		&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	return v, mapErr(err)
}

func (r *PGVideoRepo) Create(ctx context.Context, v dom.Video) (dom.Video, error) {
	query := `
		INSERT INTO videos (owner_id, video_url, thumbnail_url, title, description, duration_seconds, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + videoCols
	return scanVideo(r.db.QueryRow(ctx, query,
		v.OwnerID, v.VideoURL, v.ThumbnailURL, v.Title, v.Description, v.Duration, v.IsPublished))
}

func (r *PGVideoRepo) GetByID(ctx context.Context, id int64) (dom.Video, error) {
	return scanVideo(r.db.QueryRow(ctx, `SELECT `+videoCols+` FROM videos WHERE id = $1`, id))
}

// List returns one page of published videos. f must be normalized.
func (r *PGVideoRepo) List(ctx context.Context, f dom.VideoFilter) ([]dom.Video, error) {
	col, ok := videoSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM videos
		WHERE is_published = TRUE
			AND ($1 = '' OR title ILIKE $2 ESCAPE '\' OR description ILIKE $2 ESCAPE '\')
			AND ($3 = 0 OR owner_id = $3)
		ORDER BY %s %s, id DESC
		LIMIT $4 OFFSET $5`, videoCols, col, dir)
	pattern := utils.ContainsPattern(f.Query)
	rows, err := r.db.Query(ctx, query, f.Query, pattern, f.OwnerID, f.Limit, f.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *PGVideoRepo) Update(ctx context.Context, id int64, patch dom.Video) (dom.Video, error) {
	query := `
		UPDATE videos SET title = $2, description = $3, thumbnail_url = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + videoCols
	return scanVideo(r.db.QueryRow(ctx, query, id, patch.Title, patch.Description, patch.ThumbnailURL))
}

func (r *PGVideoRepo) SetPublished(ctx context.Context, id int64, published bool) (dom.Video, error) {
	query := `
		UPDATE videos SET is_published = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + videoCols
	return scanVideo(r.db.QueryRow(ctx, query, id, published))
}

func (r *PGVideoRepo) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	return err
}

func (r *PGVideoRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dom.ErrNotFound
	}
	return nil
}
