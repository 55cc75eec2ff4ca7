package domain

import "time"

// Domain entity: no dependency on Gin, Postgres or Redis.
type Video struct {
	ID           int64
	OwnerID      int64
	VideoURL     string
	ThumbnailURL string
	Title        string
	Description  string
	Duration     float64 // seconds
	Views        int64
	IsPublished  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VideoOwner is the public part of the owner's profile joined onto a video.
type VideoOwner struct {
	ID        int64
	Username  string
	FullName  string
	AvatarURL string
}

// WatchedVideo is one entry of a user's watch history.
type WatchedVideo struct {
	Video
	Owner VideoOwner
}

// Sort columns accepted by VideoFilter.SortBy.
const (
	SortByCreatedAt = "createdAt"
	SortByViews     = "views"
	SortByDuration  = "duration"
	SortByTitle     = "title"
)

// VideoFilter selects a page of published videos.
type VideoFilter struct {
	Page     int
	Limit    int
	Query    string
	SortBy   string
	SortDesc bool
	OwnerID  int64 // 0 = any owner
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Normalize clamps paging and falls back to newest-first ordering.
func (f VideoFilter) Normalize() VideoFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	switch f.SortBy {
	case SortByCreatedAt, SortByViews, SortByDuration, SortByTitle:
	default:
		f.SortBy = SortByCreatedAt
		f.SortDesc = true
	}
	return f
}

// Offset returns the number of rows to skip for the page.
func (f VideoFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
