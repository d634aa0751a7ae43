package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// ErrorTypeRequest marks a non-success HTTP status or an application-level
	// failure code inside an otherwise successful response.
	ErrorTypeRequest ErrorType = "request"
	// ErrorTypeNotValue marks a response that succeeded but carried no usable data.
	ErrorTypeNotValue ErrorType = "not_value"
	ErrorTypeNetwork  ErrorType = "network"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	// Body is the raw response body, kept for diagnostics.
	Body string
	// Cause is the underlying transport or decode error, if any.
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Unwrap returns the underlying cause so errors.Is sees context errors
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewRequestError builds a request error whose message embeds the raw body.
func NewRequestError(code int, what, body string) *Error {
	return &Error{
		Type:    ErrorTypeRequest,
		Message: fmt.Sprintf("%s, response: %s", what, body),
		Code:    code,
		Body:    body,
	}
}

// NewNotValueError builds an error for a response without content.
func NewNotValueError(code int, what, body string) *Error {
	return &Error{
		Type:    ErrorTypeNotValue,
		Message: fmt.Sprintf("%s, response: %s", what, body),
		Code:    code,
		Body:    body,
	}
}

// NewParsingError reports a body that could not be decoded.
func NewParsingError(code int, cause error, body string) *Error {
	return &Error{
		Type:    ErrorTypeParsing,
		Message: fmt.Sprintf("failed to parse response: %v", cause),
		Code:    code,
		Body:    body,
		Cause:   cause,
	}
}

// NewNetworkError reports a transport failure; no response was received.
func NewNetworkError(cause error) *Error {
	return &Error{
		Type:    ErrorTypeNetwork,
		Message: cause.Error(),
		Code:    0,
		Cause:   cause,
	}
}

// TypeOf returns the error type of err, or ErrorTypeUnknown when err does not
// wrap an *Error.
func TypeOf(err error) ErrorType {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeUnknown
}

// IsRequestError reports whether err wraps a request error
func IsRequestError(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeRequest
}

// IsNotValue reports whether err wraps a not-value error
func IsNotValue(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotValue
}

// IsSuccessStatus reports whether an HTTP status code is in the 2xx range
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
