package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Request errors
	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrCodeValidationError ErrorCode = "VALIDATION_ERROR"

	// Configuration errors
	ErrCodeInvalidSchema   ErrorCode = "INVALID_SCHEMA"
	ErrCodeAdapterNotFound ErrorCode = "ADAPTER_NOT_FOUND"

	// Execution errors
	ErrCodeResolverFailed ErrorCode = "RESOLVER_FAILED"

	// Infrastructure errors
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	ErrCodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with code and context
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
	Status  int // HTTP status code
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Extensions returns the GraphQL error extensions for this error. The engine
// copies them into the "extensions" member of the reported error.
func (e *AppError) Extensions() map[string]any {
	return map[string]any{"code": string(e.Code)}
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Status:  getHTTPStatus(code),
	}
}

// WrapError wraps an existing error with an error code and message
func WrapError(code ErrorCode, message string, err error) *AppError {
	return NewAppError(code, message, err)
}

// getHTTPStatus maps error codes to HTTP status codes
func getHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeAdapterNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidRequest, ErrCodeValidationError, ErrCodeInvalidSchema:
		return http.StatusBadRequest
	case ErrCodeConnectionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// As returns the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	appErr, ok := As(err)
	return ok && (appErr.Code == ErrCodeValidationError || appErr.Code == ErrCodeInvalidRequest || appErr.Code == ErrCodeInvalidSchema)
}
