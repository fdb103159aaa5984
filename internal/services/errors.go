package services

import (
	"errors"
	"fmt"

	"saveeat/internal/repositories"
)

var (
	// ErrNotFound is returned for missing rows and rows owned by someone else
	ErrNotFound    = repositories.ErrNotFound
	ErrRateLimited = errors.New("rate limited")
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError reports a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
