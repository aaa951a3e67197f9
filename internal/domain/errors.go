package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories. Cross-tenant access
// collapses into ErrNotFound so callers cannot probe other orgs' data.
var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrMissingOrganization = errors.New("session has no organization")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrSlugConflict        = errors.New("template slug already in use")
	ErrAllowlistConflict   = errors.New("allowlist entry already exists")
	ErrInvalidTransition   = errors.New("invalid offer status transition")
)

// ValidationError reports a rejected input field before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
