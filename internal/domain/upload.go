package domain

import (
	"fmt"
	"strings"
)

// UploadedFile is a multipart file persisted to local disk by the HTTP layer
// and waiting to be pushed to the asset store.
type UploadedFile struct {
	FieldName string
	FilePath  string
	SizeBytes int64
}

// Validate checks the file reference before it reaches business logic.
func (f UploadedFile) Validate() error {
	if strings.TrimSpace(f.FieldName) == "" {
		return fmt.Errorf("%w: upload field name is empty", ErrValidation)
	}
	if strings.TrimSpace(f.FilePath) == "" {
		return fmt.Errorf("%w: %s: file path is empty", ErrValidation, f.FieldName)
	}
	if f.SizeBytes <= 0 {
		return fmt.Errorf("%w: %s: file is empty", ErrValidation, f.FieldName)
	}
	return nil
}
