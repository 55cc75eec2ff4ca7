package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	dom "vidtube/internal/domain"
)

var videoColumns = []string{"id", "owner_id", "video_url", "thumbnail_url", "title", "description",
	"duration_seconds", "views", "is_published", "created_at", "updated_at"}

func TestVideoRepo_List_OrderAndPaging(t *testing.T) {
	mock := newMock(t)
	r := NewPGVideoRepo(mock)
	now := time.Now()
	f := dom.VideoFilter{Page: 2, Limit: 5, Query: "cat", SortBy: dom.SortByViews, SortDesc: true, OwnerID: 3}.Normalize()

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY views DESC, id DESC LIMIT $4 OFFSET $5`)).
		WithArgs("cat", "%cat%", int64(3), 5, 5).
		WillReturnRows(pgxmock.NewRows(videoColumns).
			AddRow(int64(1), int64(3), "v", "t", "cats", "d", 1.0, int64(99), true, now, now))
	list, err := r.List(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int64(99), list[0].Views)
}

func TestVideoRepo_List_EscapesWildcards(t *testing.T) {
	mock := newMock(t)
	r := NewPGVideoRepo(mock)
	f := dom.VideoFilter{Query: "50%_off"}.Normalize()

	mock.ExpectQuery(regexp.QuoteMeta(`title ILIKE $2 ESCAPE '\' OR description ILIKE $2 ESCAPE '\'`)).
		WithArgs("50%_off", `%50\%\_off%`, int64(0), dom.DefaultPageLimit, 0).
		WillReturnRows(pgxmock.NewRows(videoColumns))
	list, err := r.List(context.Background(), f)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestVideoRepo_List_EmptyIsNotNil(t *testing.T) {
	mock := newMock(t)
	r := NewPGVideoRepo(mock)
	f := dom.VideoFilter{}.Normalize()

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC, id DESC`)).
		WithArgs("", "%%", int64(0), dom.DefaultPageLimit, 0).
		WillReturnRows(pgxmock.NewRows(videoColumns))
	list, err := r.List(context.Background(), f)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestVideoRepo_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	r := NewPGVideoRepo(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM videos WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)
	_, err := r.GetByID(context.Background(), 42)
	require.ErrorIs(t, err, dom.ErrNotFound)
}

func TestVideoRepo_Delete(t *testing.T) {
	mock := newMock(t)
	r := NewPGVideoRepo(mock)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM videos WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, 1))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM videos WHERE id = $1`)).
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(ctx, 2), dom.ErrNotFound)
}

func TestVideoRepo_SetPublished(t *testing.T) {
	mock := newMock(t)
	r := NewPGVideoRepo(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE videos SET is_published = $2`)).
		WithArgs(int64(1), false).
		WillReturnRows(pgxmock.NewRows(videoColumns).
			AddRow(int64(1), int64(3), "v", "t", "x", "d", 1.0, int64(0), false, now, now))
	v, err := r.SetPublished(context.Background(), 1, false)
	require.NoError(t, err)
	require.False(t, v.IsPublished)
}
