// Package apperror defines the error taxonomy shared by every layer.
//
// Each sentinel is a stable "kind". Services wrap one of them in an *AppError
// carrying a human-readable message; the HTTP layer maps the kind to a status
// code with errors.Is, so no layer below the handlers knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidAction   = errors.New("invalid action")
	ErrDuplicateSwipe  = errors.New("duplicate swipe")
	ErrQuotaExhausted  = errors.New("quota exhausted")
	ErrStorageConflict = errors.New("storage conflict")
)

type AppError struct {
	Err     error  // actual error
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
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when credentials are missing or wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func InvalidRole(role string) *AppError {
	return &AppError{
		Err:     ErrInvalidRole,
		Message: fmt.Sprintf("invalid role %q: must be entrepreneur, investor or partner", role),
		Field:   "role",
	}
}

func InvalidAction(action string) *AppError {
	return &AppError{
		Err:     ErrInvalidAction,
		Message: fmt.Sprintf("invalid action %q: must be like, skip or super_spark", action),
		Field:   "action",
	}
}

func DuplicateSwipe() *AppError {
	return &AppError{
		Err:     ErrDuplicateSwipe,
		Message: "already swiped on this profile",
	}
}

func QuotaExhausted() *AppError {
	return &AppError{
		Err:     ErrQuotaExhausted,
		Message: "no super sparks remaining this week",
	}
}

// StorageConflict reports a transaction that lost a race against a
// concurrent writer. The operation left no partial state and may be retried.
func StorageConflict(what string) *AppError {
	return &AppError{
		Err:     ErrStorageConflict,
		Message: fmt.Sprintf("concurrent update conflict on %s, please retry", what),
	}
}
