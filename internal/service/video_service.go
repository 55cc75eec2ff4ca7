package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"vidtube/internal/cache"
	dom "vidtube/internal/domain"
	"vidtube/internal/repo"
)

// PublishInput is a new video with its uploaded media.
type PublishInput struct {
	Title       string
	Description string
	Duration    float64
	VideoFile   *dom.UploadedFile
	Thumbnail   *dom.UploadedFile
}

// VideoPatch holds the fields an owner may change. Nil means unchanged.
type VideoPatch struct {
	Title       *string
	Description *string
	Thumbnail   *dom.UploadedFile
}

type VideoService struct {
	videos  repo.VideoRepo
	history repo.UserRepo
	assets  AssetStore
	cache   *cache.VideoCache
	sf      singleflight.Group
	log     *zap.Logger
}

// NewVideoService creates a VideoService. If c is nil, caching is disabled.
func NewVideoService(videos repo.VideoRepo, history repo.UserRepo, assets AssetStore, c *cache.VideoCache, log *zap.Logger) *VideoService {
	if log == nil {
		log = zap.NewNop()
	}
	return &VideoService{videos: videos, history: history, assets: assets, cache: c, log: log}
}

// List returns one page of published videos.
func (s *VideoService) List(ctx context.Context, f dom.VideoFilter) ([]dom.Video, error) {
	f.Query = strings.TrimSpace(f.Query)
	f = f.Normalize()
	if s.cache == nil {
		return s.videos.List(ctx, f)
	}
	v, err, _ := s.sf.Do(cache.ListKey(f), func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx, f); err == nil && list != nil {
			return list, nil
		} else if err != nil {
			s.log.Warn("video list cache read", zap.String("key", cache.ListKey(f)), zap.Error(err))
		}
		list, err := s.videos.List(ctx, f)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetList(ctx, f, list); err != nil {
			s.log.Warn("video list cache write", zap.String("key", cache.ListKey(f)), zap.Error(err))
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Video), nil
}

// Publish uploads the media and stores a published video owned by ownerID.
func (s *VideoService) Publish(ctx context.Context, ownerID int64, in PublishInput) (dom.Video, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if title == "" || desc == "" {
		return dom.Video{}, fmt.Errorf("%w: title and description are required", dom.ErrValidation)
	}
	if in.VideoFile == nil || in.Thumbnail == nil {
		return dom.Video{}, fmt.Errorf("%w: video file and thumbnail are required", dom.ErrValidation)
	}
	if in.Duration < 0 {
		return dom.Video{}, fmt.Errorf("%w: duration must not be negative", dom.ErrValidation)
	}

	videoURL, err := s.assets.Upload(ctx, *in.VideoFile)
	if err != nil {
		return dom.Video{}, fmt.Errorf("%w: video file: %v", dom.ErrUpload, err)
	}
	thumbURL, err := s.assets.Upload(ctx, *in.Thumbnail)
	if err != nil {
		s.dropAsset(ctx, videoURL)
		return dom.Video{}, fmt.Errorf("%w: thumbnail: %v", dom.ErrUpload, err)
	}

	v, err := s.videos.Create(ctx, dom.Video{
		OwnerID:      ownerID,
		VideoURL:     videoURL,
		ThumbnailURL: thumbURL,
		Title:        title,
		Description:  desc,
		Duration:     in.Duration,
		IsPublished:  true,
	})
	if err != nil {
		s.dropAsset(ctx, videoURL)
		s.dropAsset(ctx, thumbURL)
		return dom.Video{}, err
	}
	s.invalidateCache(ctx)
	return v, nil
}

// Get returns a video, counts the view and appends it to the viewer's
// history. Unpublished videos are visible to their owner only.
func (s *VideoService) Get(ctx context.Context, id, viewerID int64) (dom.Video, error) {
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return dom.Video{}, videoNotFound(err)
	}
	if !v.IsPublished && v.OwnerID != viewerID {
		return dom.Video{}, fmt.Errorf("%w: video does not exist", dom.ErrNotFound)
	}
	if err := s.videos.IncrementViews(ctx, id); err != nil {
		return dom.Video{}, videoNotFound(err)
	}
	v.Views++
	if viewerID != 0 {
		if err := s.history.AddToWatchHistory(ctx, viewerID, id); err != nil {
			return dom.Video{}, err
		}
	}
	return v, nil
}

// Update changes title, description or thumbnail of a video the caller owns.
func (s *VideoService) Update(ctx context.Context, ownerID, id int64, p VideoPatch) (dom.Video, error) {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			p.Title = nil
		} else {
			p.Title = &t
		}
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		if d == "" {
			p.Description = nil
		} else {
			p.Description = &d
		}
	}
	if p.Title == nil && p.Description == nil && p.Thumbnail == nil {
		return dom.Video{}, fmt.Errorf("%w: nothing to update", dom.ErrValidation)
	}

	existing, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return dom.Video{}, err
	}
	patch := existing
	if p.Title != nil {
		patch.Title = *p.Title
	}
	if p.Description != nil {
		patch.Description = *p.Description
	}
	if p.Thumbnail != nil {
		url, err := s.assets.Upload(ctx, *p.Thumbnail)
		if err != nil {
			return dom.Video{}, fmt.Errorf("%w: thumbnail: %v", dom.ErrUpload, err)
		}
		patch.ThumbnailURL = url
	}
	v, err := s.videos.Update(ctx, id, patch)
	if err != nil {
		if p.Thumbnail != nil {
			s.dropAsset(ctx, patch.ThumbnailURL)
		}
		return dom.Video{}, videoNotFound(err)
	}
	if p.Thumbnail != nil {
		s.dropAsset(ctx, existing.ThumbnailURL)
	}
	s.invalidateCache(ctx)
	return v, nil
}

// Delete removes a video the caller owns together with its media.
func (s *VideoService) Delete(ctx context.Context, ownerID, id int64) error {
	v, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.videos.Delete(ctx, id); err != nil {
		return videoNotFound(err)
	}
	s.dropAsset(ctx, v.VideoURL)
	s.dropAsset(ctx, v.ThumbnailURL)
	s.invalidateCache(ctx)
	return nil
}

// TogglePublish flips the published flag of a video the caller owns.
func (s *VideoService) TogglePublish(ctx context.Context, ownerID, id int64) (dom.Video, error) {
	v, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return dom.Video{}, err
	}
	v, err = s.videos.SetPublished(ctx, id, !v.IsPublished)
	if err != nil {
		return dom.Video{}, videoNotFound(err)
	}
	s.invalidateCache(ctx)
	return v, nil
}

func (s *VideoService) owned(ctx context.Context, ownerID, id int64) (dom.Video, error) {
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return dom.Video{}, videoNotFound(err)
	}
	if v.OwnerID != ownerID {
		return dom.Video{}, fmt.Errorf("%w: only the owner can change this video", dom.ErrForbidden)
	}
	return v, nil
}

func videoNotFound(err error) error {
	if errors.Is(err, dom.ErrNotFound) {
		return fmt.Errorf("%w: video does not exist", dom.ErrNotFound)
	}
	return err
}

func (s *VideoService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.Warn("video cache invalidate", zap.Error(err))
	}
}

func (s *VideoService) dropAsset(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.assets.Delete(ctx, url); err != nil {
		s.log.Warn("delete asset", zap.String("url", url), zap.Error(err))
	}
}
