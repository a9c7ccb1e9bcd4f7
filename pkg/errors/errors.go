package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies failures from the Bilibili API and transport layer
type ErrorType string

const (
	ErrorTypeNetwork   ErrorType = "network"
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeParsing   ErrorType = "parsing"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeAPI       ErrorType = "api"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Bilibili API response codes that callers branch on
const (
	CodeOK               = 0
	CodeNotLoggedIn      = -101
	CodeNotFound         = -404
	CodeAlreadyFollowing = 22014
)

// Error represents a Bilibili API error with type information.
// Code carries the API response code for code-based dispatch; for
// transport-level failures it carries the HTTP status instead.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// FromCode builds a typed error from a non-zero Bilibili API response code
func FromCode(code int, message string) *Error {
	t := ErrorTypeAPI
	switch code {
	case CodeNotFound:
		t = ErrorTypeNotFound
	case CodeNotLoggedIn:
		t = ErrorTypeAuth
	}
	return &Error{Type: t, Message: message, Code: code}
}

// IsNotFound reports whether err carries the -404 "user not found" code
func IsNotFound(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && (e.Code == CodeNotFound || e.Type == ErrorTypeNotFound)
}

// IsAlreadyFollowing reports whether err carries the 22014
// "already following" code, which callers treat as success
func IsAlreadyFollowing(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Code == CodeAlreadyFollowing
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeAPI, ErrorTypeUnknown:
		return true
	case ErrorTypeAuth, ErrorTypeNotFound, ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
