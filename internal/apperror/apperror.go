package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError is the domain error type returned by the service layer.
// Handlers map it to an HTTP status with errors.Is and surface Message
// (and Errors, when present) in the JSON envelope.
type AppError struct {
	Err     error    // sentinel error, for errors.Is matching
	Message string   // human-readable error message
	Field   string   // optional: field causing the error
	Errors  []string // optional: itemized list (uniqueness conflicts)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports one or more violated uniqueness constraints. The full
// list is carried so the client sees every violation in a single response,
// not just the first one found.
func Conflict(violations []string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "Validation failed",
		Errors:  violations,
	}
}

// Unauthorized returns the deliberately generic bad-credentials error.
// Handlers map this to 401. The message never says whether the email or
// the password was wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
