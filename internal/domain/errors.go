package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared by repositories and services. Controllers map them to HTTP status codes.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrDuplicateSlug      = errors.New("slug already in use")
	ErrDuplicateCode      = errors.New("referral code already in use")
	ErrCodeGeneration     = errors.New("failed to generate unique code")
	ErrTemplateInUse      = errors.New("template is referenced by invitations")
	ErrTemplateInactive   = errors.New("template is not active")
	ErrInvalidReferral    = errors.New("invalid referral code")
)

// ValidationError carries an ordered list of human-readable field errors.
// It unwraps to ErrInvalidInput.
type ValidationError struct {
	Errors []string
}

// NewValidationError returns a ValidationError for the given messages.
func NewValidationError(errs ...string) *ValidationError {
	return &ValidationError{Errors: errs}
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
