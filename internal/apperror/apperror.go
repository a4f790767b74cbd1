// Package apperror defines the error kinds shared by the adapters and the
// page handlers. Adapters return these; handlers turn them into notices and
// status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType int

const (
	UnknownError ErrorType = iota
	// ValidationError is an input problem caught before any network call.
	ValidationError
	// AuthError is a failed login or a missing session.
	AuthError
	// ForbiddenError is an action on a record the caller does not own.
	ForbiddenError
	NotFoundError
	ConflictError
	// ExternalServiceError is a failed call to the metadata or CRUD service.
	ExternalServiceError
	InternalError
)

type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError:
		return http.StatusBadRequest
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	case ExternalServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

func NewValidationError(message string) *AppError {
	return New(ValidationError, message, nil)
}

func NewAuthError(message string) *AppError {
	return New(AuthError, message, nil)
}

func NewForbiddenError(message string) *AppError {
	return New(ForbiddenError, message, nil)
}

func NewNotFoundError(message string, err error) *AppError {
	return New(NotFoundError, message, err)
}

func NewConflictError(message string) *AppError {
	return New(ConflictError, message, nil)
}

func NewExternalServiceError(message string, err error) *AppError {
	return New(ExternalServiceError, message, err)
}

func NewInternalError(message string, err error) *AppError {
	return New(InternalError, message, err)
}

// TypeOf reports the kind of the first AppError in err's chain.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return UnknownError
}

// Message returns the user-facing message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

func IsValidation(err error) bool { return TypeOf(err) == ValidationError }
func IsAuth(err error) bool       { return TypeOf(err) == AuthError }
func IsNotFound(err error) bool   { return TypeOf(err) == NotFoundError }
func IsConflict(err error) bool   { return TypeOf(err) == ConflictError }
func IsExternal(err error) bool   { return TypeOf(err) == ExternalServiceError }
