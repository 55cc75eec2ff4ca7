package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by repositories, services and the HTTP layer.
// Wrap them with fmt.Errorf("%w: ...") to add detail; match with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized request")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenStale   = errors.New("refresh token is expired or used")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUpload       = errors.New("upload failed")
	ErrInternal     = errors.New("internal error")

	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
)
