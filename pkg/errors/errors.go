package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrorCode represents different types of application errors
type ErrorCode string

const (
	// File picker errors
	ErrNoFileSelected ErrorCode = "NO_FILE_SELECTED"
	ErrFileEmpty      ErrorCode = "FILE_EMPTY"
	ErrFileTooBig     ErrorCode = "FILE_TOO_BIG"
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"

	// Upload and delete errors
	ErrUploadRejected ErrorCode = "UPLOAD_REJECTED"
	ErrDeleteRejected ErrorCode = "DELETE_REJECTED"
	ErrDownloadFailed ErrorCode = "DOWNLOAD_FAILED"
	ErrUploadCanceled ErrorCode = "UPLOAD_CANCELED"
	ErrUploadInFlight ErrorCode = "UPLOAD_IN_FLIGHT"
	ErrTokenMissing   ErrorCode = "TOKEN_MISSING"

	// Network and connectivity errors
	ErrNetworkError      ErrorCode = "NETWORK_ERROR"
	ErrConnectionTimeout ErrorCode = "CONNECTION_TIMEOUT"

	// Local persistence errors
	ErrStorageError   ErrorCode = "STORAGE_ERROR"
	ErrRecordNotFound ErrorCode = "RECORD_NOT_FOUND"
	ErrRecordCorrupt  ErrorCode = "RECORD_CORRUPT"

	// Local cache errors
	ErrCacheRefetchFailed ErrorCode = "CACHE_REFETCH_FAILED"

	// Validation and configuration errors
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Generic errors
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
	ErrUnknownError  ErrorCode = "UNKNOWN_ERROR"
)

// AppError represents an application-specific error with user-friendly messaging
type AppError struct {
	Code        ErrorCode              `json:"code"`
	Message     string                 `json:"message"`
	UserMessage string                 `json:"user_message"`
	Cause       error                  `json:"-"` // Don't serialize the underlying error
	Context     map[string]interface{} `json:"context,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// GetUserMessage returns a user-friendly error message
func (e *AppError) GetUserMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.Message
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		UserMessage: getUserFriendlyMessage(code, message),
		Cause:       cause,
		Context:     make(map[string]interface{}),
		Timestamp:   time.Now(),
	}
}

// NewAppErrorWithContext creates a new application error with context
func NewAppErrorWithContext(code ErrorCode, message string, cause error, context map[string]interface{}) *AppError {
	err := NewAppError(code, message, cause)
	err.Context = context
	return err
}

// NewRemoteError creates an error for a non-2xx response from the hosting
// service. The status code and the verbatim response body are preserved so
// the UI can surface them unchanged.
func NewRemoteError(code ErrorCode, status int, body string) *AppError {
	err := NewAppError(code, fmt.Sprintf("HTTP %d: %s", status, body), nil)
	err.UserMessage = fmt.Sprintf("Error %d: %s", status, body)
	err.Context["http_status"] = status
	err.Context["response_body"] = body
	return err
}

// WrapError wraps an existing error with application error context
func WrapError(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the original code if not specified
	if appErr, ok := err.(*AppError); ok && code == "" {
		return appErr
	}

	return NewAppError(code, message, err)
}

// ClassifyError attempts to classify a generic error into an AppError
func ClassifyError(err error) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, return as-is
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	// Context errors
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewAppError(ErrConnectionTimeout, "Operation timed out", err)
	}
	if stderrors.Is(err, context.Canceled) {
		return NewAppError(ErrUploadCanceled, "Operation was canceled", err)
	}

	// Network errors
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewAppError(ErrConnectionTimeout, "Network operation timed out", err)
		}
		return NewAppError(ErrNetworkError, "Network error occurred", err)
	}

	errStr := strings.ToLower(err.Error())

	// File system errors
	if strings.Contains(errStr, "no such file") || strings.Contains(errStr, "file not found") {
		return NewAppError(ErrFileNotFound, "File not found", err)
	}

	// Local database errors
	if strings.Contains(errStr, "database") || strings.Contains(errStr, "sql") {
		if strings.Contains(errStr, "no rows") {
			return NewAppError(ErrRecordNotFound, "Record not found", err)
		}
		return NewAppError(ErrStorageError, "Local storage error", err)
	}

	// Default to unknown error
	return NewAppError(ErrUnknownError, "An unexpected error occurred", err)
}

// getUserFriendlyMessage returns a user-friendly message for the error code
func getUserFriendlyMessage(code ErrorCode, originalMessage string) string {
	switch code {
	case ErrNoFileSelected:
		return "No file selected. Something went wrong."
	case ErrFileEmpty:
		return "Empty file."
	case ErrFileTooBig:
		return "File size must not exceed 512 MiB."
	case ErrFileNotFound:
		return "The file could not be found. It may have been moved or deleted."
	case ErrUploadRejected:
		return "The upload was rejected by the hosting service."
	case ErrDeleteRejected:
		return "The remote deletion was rejected by the hosting service."
	case ErrDownloadFailed:
		return "Failed to download from remote."
	case ErrUploadCanceled:
		return "The upload was canceled."
	case ErrUploadInFlight:
		return "An upload is already in progress."
	case ErrTokenMissing:
		return "This file has no deletion token and cannot be deleted remotely."
	case ErrNetworkError:
		return "A network error occurred. Please check your internet connection and try again."
	case ErrConnectionTimeout:
		return "The connection timed out. Please check your internet connection and try again."
	case ErrStorageError:
		return "A local storage error occurred. Please try again."
	case ErrRecordNotFound:
		return "File doesn't exist."
	case ErrCacheRefetchFailed:
		return "Failed to download from remote."
	case ErrInvalidInput:
		return "The provided input is invalid. Please check your input and try again."
	case ErrInvalidConfig:
		return "There's a configuration error. Please check your settings."
	default:
		// If we have a specific message, use it; otherwise use a generic message
		if originalMessage != "" {
			return originalMessage
		}
		return "An unexpected error occurred. Please try again."
	}
}

// CodeOf returns the ErrorCode of err, or ErrUnknownError for foreign errors
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrUnknownError
}

// IsCode reports whether err carries the given application error code
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsCanceled checks if an error is due to cancellation
func IsCanceled(err error) bool {
	if IsCode(err, ErrUploadCanceled) {
		return true
	}
	return stderrors.Is(err, context.Canceled)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	if IsCode(err, ErrConnectionTimeout) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
