package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error that knows how it is rendered in an API response.
// Internal is logged but never sent to clients.
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

const (
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeDatabase       = "DATABASE_ERROR"
	ErrCodeSyncInProgress = "SYNC_IN_PROGRESS"
	ErrCodeRateLimited    = "RATE_LIMITED"
)

func New(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

func wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode, Internal: err}
}

func Internal(message string, err error) *AppError {
	return wrap(err, ErrCodeInternal, message, http.StatusInternalServerError)
}

// DatabaseError hides store failures behind a 500; the cause stays in Internal.
func DatabaseError(message string, err error) *AppError {
	return wrap(err, ErrCodeDatabase, message, http.StatusInternalServerError)
}

func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message, http.StatusForbidden)
}

// NotFound names the missing resource, e.g. NotFound("Order") reads "Order not found".
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, resource+" not found", http.StatusNotFound)
}

// SyncInProgress rejects a sync whose order or pass is already being worked on.
func SyncInProgress(message string) *AppError {
	return New(ErrCodeSyncInProgress, message, http.StatusConflict)
}

func ValidationError(message string, details interface{}) *AppError {
	e := New(ErrCodeValidation, message, http.StatusBadRequest)
	e.Details = details
	return e
}

func RateLimited(message string) *AppError {
	return New(ErrCodeRateLimited, message, http.StatusTooManyRequests)
}

// From returns the AppError inside err, or wraps err as an internal error with the fallback message.
func From(err error, fallback string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(fallback, err)
}

// IsNotFound reports whether err carries a NOT_FOUND AppError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}
