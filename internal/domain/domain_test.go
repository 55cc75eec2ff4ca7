package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUploadedFile_Validate(t *testing.T) {
	ok := UploadedFile{FieldName: "avatar", FilePath: "/tmp/a.png", SizeBytes: 10}
	require.NoError(t, ok.Validate())

	cases := []UploadedFile{
		{FilePath: "/tmp/a.png", SizeBytes: 10},
		{FieldName: "avatar", SizeBytes: 10},
		{FieldName: "avatar", FilePath: "/tmp/a.png"},
	}
	for _, f := range cases {
		require.ErrorIs(t, f.Validate(), ErrValidation, "%+v", f)
	}
}

func TestVideoFilter_Normalize(t *testing.T) {
	f := VideoFilter{Page: 0, Limit: 1000, SortBy: "password"}.Normalize()
	require.Equal(t, 1, f.Page)
	require.Equal(t, MaxPageLimit, f.Limit)
	require.Equal(t, SortByCreatedAt, f.SortBy)
	require.True(t, f.SortDesc)

	f = VideoFilter{Page: 3, Limit: 0, SortBy: SortByViews}.Normalize()
	require.Equal(t, DefaultPageLimit, f.Limit)
	require.Equal(t, 20, f.Offset())
	require.False(t, f.SortDesc)
}

func TestUser_Sanitized(t *testing.T) {
	tok := "r"
	u := User{ID: 1, Username: "alice", PasswordHash: "h", RefreshToken: &tok}
	s := u.Sanitized()
	require.Empty(t, s.PasswordHash)
	require.Nil(t, s.RefreshToken)
	require.Equal(t, "h", u.PasswordHash)
}

func TestErrUserNotFound_IsNotFound(t *testing.T) {
	require.True(t, errors.Is(ErrUserNotFound, ErrNotFound))
	require.Equal(t, "user not found", ErrUserNotFound.Error())
}
