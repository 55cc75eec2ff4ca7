package service

import (
	"context"

	dom "vidtube/internal/domain"
)

// AssetStore keeps uploaded media and returns public URLs for it.
type AssetStore interface {
	Upload(ctx context.Context, f dom.UploadedFile) (string, error)
	Delete(ctx context.Context, url string) error
}
