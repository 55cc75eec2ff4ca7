package dto

import (
	"time"

	dom "vidtube/internal/domain"
)

// ListVideosQuery binds GET /videos query parameters.
type ListVideosQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1"`
	Query    string `form:"query"`
	SortBy   string `form:"sortBy" binding:"omitempty,oneof=createdAt views duration title"`
	SortType string `form:"sortType" binding:"omitempty,oneof=asc desc"`
	UserID   int64  `form:"userId" binding:"omitempty,min=1"`
}

// Filter converts the query into a domain filter. Sorting is by creation
// time unless sortBy is given, and descending unless sortType=asc.
func (q ListVideosQuery) Filter() dom.VideoFilter {
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = dom.SortByCreatedAt
	}
	return dom.VideoFilter{
		Page:     q.Page,
		Limit:    q.Limit,
		Query:    q.Query,
		SortBy:   sortBy,
		SortDesc: q.SortType != "asc",
		OwnerID:  q.UserID,
	}
}

// PublishVideoRequest is the multipart form for POST /videos; videoFile and
// thumbnail are files in the same form.
type PublishVideoRequest struct {
	Title       string  `form:"title"`
	Description string  `form:"description"`
	Duration    float64 `form:"duration" binding:"omitempty,min=0"`
}

// UpdateVideoRequest is the multipart form for PATCH /videos/:videoId.
// An optional thumbnail file may replace the current one.
type UpdateVideoRequest struct {
	Title       *string `form:"title"`
	Description *string `form:"description"`
}

type VideoResponse struct {
	ID          int64     `json:"_id"`
	Owner       int64     `json:"owner"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type VideoOwnerResponse struct {
	ID       int64  `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// WatchedVideoResponse is one watch history entry with its owner embedded.
type WatchedVideoResponse struct {
	VideoResponse
	Owner VideoOwnerResponse `json:"owner"`
}

type ListVideosResponse struct {
	Items []VideoResponse `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type SubscriptionResponse struct {
	ChannelID  int64 `json:"channelId"`
	Subscribed bool  `json:"subscribed"`
}

func NewVideoResponse(v dom.Video) VideoResponse {
	return VideoResponse{
		ID:          v.ID,
		Owner:       v.OwnerID,
		VideoFile:   v.VideoURL,
		Thumbnail:   v.ThumbnailURL,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func NewVideoResponses(list []dom.Video) []VideoResponse {
	out := make([]VideoResponse, len(list))
	for i := range list {
		out[i] = NewVideoResponse(list[i])
	}
	return out
}

func NewWatchHistoryResponse(list []dom.WatchedVideo) []WatchedVideoResponse {
	out := make([]WatchedVideoResponse, len(list))
	for i, w := range list {
		out[i] = WatchedVideoResponse{
			VideoResponse: NewVideoResponse(w.Video),
			Owner: VideoOwnerResponse{
				ID:       w.Owner.ID,
				Username: w.Owner.Username,
				FullName: w.Owner.FullName,
				Avatar:   w.Owner.AvatarURL,
			},
		}
	}
	return out
}
