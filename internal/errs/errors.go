// Package errs defines the error taxonomy shared by the domain, storage and
// service layers.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by the store when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the caller does not own the resource.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTransient is returned when a transaction could not be committed after a retry.
	ErrTransient = errors.New("transient storage failure, retry later")
)

// ValidationError reports input that was rejected before any mutation happened.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a ValidationError or ValidationErrors.
func IsValidation(err error) bool {
	var validationError *ValidationError
	if errors.As(err, &validationError) {
		return true
	}
	var validationErrors *ValidationErrors
	return errors.As(err, &validationErrors)
}

// ValidationErrors collects several validation problems found in one request.
type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	messages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Add appends a problem.
func (ve *ValidationErrors) Add(format string, args ...any) {
	ve.Errors = append(ve.Errors, NewValidationError(format, args...))
}

// Err returns nil when no problem was recorded.
func (ve *ValidationErrors) Err() error {
	if len(ve.Errors) == 0 {
		return nil
	}
	return ve
}
