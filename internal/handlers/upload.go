package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	dom "vidtube/internal/domain"
)

// Uploads stores multipart files in a temp directory until the asset store
// has taken them.
type Uploads struct {
	dir      string
	maxBytes int64
	log      *zap.Logger
}

func NewUploads(dir string, maxBytes int64, log *zap.Logger) *Uploads {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploads{dir: dir, maxBytes: maxBytes, log: log}
}

// Save writes the form file named field to disk. A missing file is not an
// error: it returns nil and leaves the decision to the service.
func (u *Uploads) Save(c *gin.Context, field string) (*dom.UploadedFile, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dom.ErrValidation, field, err)
	}
	if u.maxBytes > 0 && fh.Size > u.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", dom.ErrValidation, field, u.maxBytes)
	}
	path := filepath.Join(u.dir, uuid.NewString()+filepath.Ext(fh.Filename))
	if err := c.SaveUploadedFile(fh, path); err != nil {
		return nil, fmt.Errorf("%w: save %s: %v", dom.ErrInternal, field, err)
	}
	f := &dom.UploadedFile{FieldName: field, FilePath: path, SizeBytes: fh.Size}
	if err := f.Validate(); err != nil {
		u.Cleanup(f)
		return nil, err
	}
	return f, nil
}

// Cleanup removes the temp files once the request is done with them.
func (u *Uploads) Cleanup(files ...*dom.UploadedFile) {
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := os.Remove(f.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			u.log.Warn("remove temp upload", zap.String("path", f.FilePath), zap.Error(err))
		}
	}
}
