package proxy

import (
	"errors"
	"fmt"
)

// ErrUnexpected is the only signal callers see for failures that are not
// part of the classification taxonomy. The real cause is logged and handed
// to the event log at the point of conversion.
var ErrUnexpected = errors.New("an unexpected error occurred while contacting the service")

// classifiedError marks errors that already went through classification and
// must propagate unchanged.
type classifiedError interface {
	error
	classified()
}

// ApplicationError is a caller-facing failure whose message is appropriate
// to show to a user as-is. It is never re-wrapped once created.
type ApplicationError struct {
	Message string
}

// NewApplicationError creates an application-level failure with the given
// user-facing message.
func NewApplicationError(message string) *ApplicationError {
	return &ApplicationError{Message: message}
}

func (e *ApplicationError) Error() string { return e.Message }

func (e *ApplicationError) classified() {}

func (e *ApplicationError) applicationError() {}

// ServerError is an application-level failure raised for HTTP 500 responses,
// carrying the detail message extracted from the structured error body.
type ServerError struct {
	ApplicationError
}

// NewServerError creates a ServerError from the detail field of the error
// body.
func NewServerError(detail string) *ServerError {
	return &ServerError{ApplicationError{Message: detail}}
}

// HTTPStatusError is an application-level failure raised for any other HTTP
// status >= 400, carrying the reason phrase as its message.
type HTTPStatusError struct {
	ApplicationError
	StatusCode int
}

// NewHTTPStatusError creates an HTTPStatusError for the given status code
// and reason phrase.
func NewHTTPStatusError(statusCode int, reason string) *HTTPStatusError {
	return &HTTPStatusError{
		ApplicationError: ApplicationError{Message: reason},
		StatusCode:       statusCode,
	}
}

// TargetUnreachableError indicates the transport could not establish or
// maintain a connection to the service (DNS failure, connect failure, proxy
// rejection or TLS trust failure). Message holds the innermost transport
// message.
type TargetUnreachableError struct {
	Message string
	cause   error
}

func (e *TargetUnreachableError) Error() string {
	return fmt.Sprintf("service unreachable: %s", e.Message)
}

// Unwrap exposes the transport error that triggered the classification.
func (e *TargetUnreachableError) Unwrap() error { return e.cause }

func (e *TargetUnreachableError) classified() {}

// IsApplicationError reports whether err is an ApplicationError or one of
// its subtypes. Messages of application errors are safe to display.
func IsApplicationError(err error) bool {
	var ae interface{ applicationError() }
	return errors.As(err, &ae)
}

// isClassified reports whether err already carries a classification and
// must pass through unchanged.
func isClassified(err error) bool {
	var ce classifiedError
	return errors.As(err, &ce)
}
