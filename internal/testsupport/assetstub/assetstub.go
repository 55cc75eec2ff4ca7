// Package assetstub is an in-memory asset store for tests.
package assetstub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	dom "vidtube/internal/domain"
)

// ErrStubUpload is returned for fields registered with FailOn.
var ErrStubUpload = errors.New("assetstub: upload rejected")

// Store records uploads and deletions instead of talking to S3.
type Store struct {
	mu       sync.Mutex
	n        int
	failOn   map[string]bool
	uploaded []dom.UploadedFile
	deleted  []string
}

func New() *Store {
	return &Store{failOn: map[string]bool{}}
}

// FailOn makes uploads of the given form field fail.
func (s *Store) FailOn(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[field] = true
}

func (s *Store) Upload(_ context.Context, f dom.UploadedFile) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[f.FieldName] {
		return "", ErrStubUpload
	}
	s.n++
	s.uploaded = append(s.uploaded, f)
	return fmt.Sprintf("https://assets.test/%s/%d", f.FieldName, s.n), nil
}

func (s *Store) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return nil
}

// Uploaded returns the files uploaded so far.
func (s *Store) Uploaded() []dom.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dom.UploadedFile(nil), s.uploaded...)
}

// Deleted returns the URLs deleted so far.
func (s *Store) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
