package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited       = "RATE_LIMITED"
)

// Common errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrMangaNotFound       = errors.New("manga not found")
	ErrChapterNotFound     = errors.New("chapter not found")
	ErrProgressNotFound    = errors.New("reading progress not found")
	ErrLibraryEntryNotFound = errors.New("library entry not found")
	ErrRatingNotFound      = errors.New("rating not found")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUsernameExists      = errors.New("username already exists")
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrUnauthorized        = errors.New("unauthorized access")
	ErrForbidden           = errors.New("forbidden access")
	ErrInvalidInput        = errors.New("invalid input")
	ErrRateLimited         = errors.New("rate limit exceeded")
)

// AppError is a custom application error
type AppError struct {
	Code       string
	Message    string
	Err        error
	StatusCode int
	Details    map[string]interface{}
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

// NewAppError creates a new application error
func NewAppError(code, message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Err:        err,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

// ErrValidation builds a 400 VALIDATION_ERROR carrying msg verbatim — the
// shorthand used throughout model Validate() methods.
func ErrValidation(msg string) *AppError {
	return NewAppError(ErrCodeValidation, msg, http.StatusBadRequest, nil)
}

// ErrNotFoundf builds a 404 NOT_FOUND wrapping err.
func ErrNotFoundf(err error) *AppError {
	return NewAppError(ErrCodeNotFound, err.Error(), http.StatusNotFound, err)
}

// ErrConflictf builds a 409 CONFLICT wrapping err.
func ErrConflictf(err error) *AppError {
	return NewAppError(ErrCodeConflict, err.Error(), http.StatusConflict, err)
}

// ErrForbiddenf builds a 403 FORBIDDEN wrapping err.
func ErrForbiddenf(err error) *AppError {
	return NewAppError(ErrCodeForbidden, err.Error(), http.StatusForbidden, err)
}

// ErrUnauthorizedf builds a 401 UNAUTHORIZED wrapping err.
func ErrUnauthorizedf(err error) *AppError {
	return NewAppError(ErrCodeUnauthorized, err.Error(), http.StatusUnauthorized, err)
}

// ErrInternalf builds a 500 INTERNAL_ERROR wrapping err.
func ErrInternalf(err error) *AppError {
	return NewAppError(ErrCodeInternal, "internal server error", http.StatusInternalServerError, err)
}

// ErrRateLimitedf builds a 429 RATE_LIMITED error.
func ErrRateLimitedf() *AppError {
	return NewAppError(ErrCodeRateLimited, "rate limit exceeded", http.StatusTooManyRequests, ErrRateLimited)
}
