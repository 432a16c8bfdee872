package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// CatalogErrorMessage describes a catalog that could not be loaded.
	CatalogErrorMessage = "catalog load failed"
	// FallbackErrorMessage describes an unavailable generative fallback.
	FallbackErrorMessage = "fallback generator unavailable"
)

var (
	ErrNoMessage         = errors.New("message missing")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrDuplicateProduct  = errors.New("duplicate product")
	ErrFallbackDisabled  = errors.New("fallback generator not configured")
	ErrEmptyGeneration   = errors.New("fallback generator returned no text")
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapCatalog marks a catalog load failure. Callers treat it as fatal at startup.
func WrapCatalog(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusInternalServerError, CatalogErrorMessage)
}

// WrapFallback marks a failed or unavailable generative fallback.
func WrapFallback(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusServiceUnavailable, FallbackErrorMessage)
}

// StatusOf returns the HTTP status carried by err, or 500 when none is attached.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
