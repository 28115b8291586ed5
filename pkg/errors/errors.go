package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies the failure modes of a transfer run
type ErrorType string

const (
	ErrorTypeNetwork         ErrorType = "network"
	ErrorTypeHTTPStatus      ErrorType = "http_status"
	ErrorTypeInvalidURL      ErrorType = "invalid_url"
	ErrorTypeParsing         ErrorType = "parsing"
	ErrorTypeAlbumNotFound   ErrorType = "album_not_found"
	ErrorTypeNoFiles         ErrorType = "no_files"
	ErrorTypeStartOutOfRange ErrorType = "start_out_of_range"
	ErrorTypeTimeout         ErrorType = "compression_timeout"
	ErrorTypeWorkspace       ErrorType = "workspace"
)

// Error represents a transfer error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int // HTTP status code where applicable, 0 otherwise
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed error with a formatted message
func New(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    t,
		Message: fmt.Sprintf(format, args...),
	}
}

// FromStatus creates an http_status error carrying the response status code
func FromStatus(code int, reason string) *Error {
	return &Error{
		Type:    ErrorTypeHTTPStatus,
		Message: fmt.Sprintf("server returned %d %s", code, reason),
		Code:    code,
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeNetwork for plain errors
// coming out of the transport layer
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeNetwork
}

// IsType reports whether err is an *Error of the given type
func IsType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}
