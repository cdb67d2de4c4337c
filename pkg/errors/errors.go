package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	// RetryAfter is the server's hint for when the request may be repeated.
	// Only set for rate_limit errors.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// FromStatus maps an HTTP status code onto the error taxonomy
func FromStatus(code int, message string) *Error {
	t := ErrorTypeUnknown
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		t = ErrorTypeAuth
	case code == http.StatusNotFound:
		t = ErrorTypeNotFound
	case code == http.StatusTooManyRequests:
		t = ErrorTypeRateLimit
	case code >= 500:
		t = ErrorTypeServerError
	}
	return &Error{Type: t, Message: message, Code: code}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeUnknown
}

// IsRateLimit reports whether err is a rate limit error
func IsRateLimit(err error) bool {
	return TypeOf(err) == ErrorTypeRateLimit
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}


// ConfigError reports a missing or invalid configuration value.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UploadError marks a failed artifact upload. The transform stage has already
// succeeded when this error is returned.
type UploadError struct {
	Bucket string
	Key    string
	Err    error
}

// NewUploadError wraps cause with a stack trace so the failure site shows up in
// structured logs.
func NewUploadError(bucket, key string, cause error) *UploadError {
	return &UploadError{
		Bucket: bucket,
		Key:    key,
		Err:    pkgerrors.WithStack(cause),
	}
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("S3 upload failed: s3://%s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
