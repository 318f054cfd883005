package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the different kinds of failures a crawl run can hit
type ErrorType string

const (
	ErrorTypeNavigation      ErrorType = "navigation"
	ErrorTypeElementNotFound ErrorType = "element_not_found"
	ErrorTypeNotInitialized  ErrorType = "not_initialized"
	ErrorTypeExtraction      ErrorType = "extraction"
	ErrorTypeDownload        ErrorType = "download"
	ErrorTypePersist         ErrorType = "persist"
	ErrorTypeConfig          ErrorType = "config"
	ErrorTypeUnknown         ErrorType = "unknown"
)

// Error represents a crawl error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Type, e.Message)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given type
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap creates an error of the given type around a cause
func Wrap(errorType ErrorType, message string, err error) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// WithCode creates an error carrying an HTTP status code
func WithCode(errorType ErrorType, message string, code int) *Error {
	return &Error{Type: errorType, Message: message, Code: code}
}

// TypeOf returns the type of the first *Error in err's chain
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given error type
func Is(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	return TypeOf(err) == errorType
}

// IsItemLocal reports whether an error only affects a single listing or detail
// page. Such errors are logged and the crawl moves on.
func IsItemLocal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNavigation, ErrorTypeElementNotFound, ErrorTypeExtraction,
		ErrorTypeDownload, ErrorTypePersist:
		return true
	case ErrorTypeNotInitialized, ErrorTypeConfig:
		return false
	default:
		return false
	}
}

// IsSuccessStatusCode checks if an HTTP status code counts as a successful fetch
func IsSuccessStatusCode(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
