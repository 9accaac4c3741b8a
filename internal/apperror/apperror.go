// Package apperror defines the typed errors shared by every layer of the tool server.
//
// Each error carries a sentinel (for errors.Is) and a human-readable message.
// The handler package maps the sentinels to HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrToolExecution = errors.New("tool execution failed")
)

type AppError struct {
	Err     error  // sentinel, possibly joined with a cause
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for missing or bad credentials.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// ToolExecution returns the error a tool raises when the sandbox reports failure.
// The message is the diagnostic shown to the caller and must not be empty.
// A non-nil cause stays reachable through errors.Is/As.
func ToolExecution(message string, cause error) *AppError {
	err := ErrToolExecution
	if cause != nil {
		err = errors.Join(ErrToolExecution, cause)
	}
	return &AppError{
		Err:     err,
		Message: message,
	}
}
