package domain

import (
	"errors"
	"fmt"
)

// ErrorType is the category of a client error.
type ErrorType string

const (
	// ErrorTypeConfiguration indicates a missing model or credential.
	// Fatal, never retried.
	ErrorTypeConfiguration ErrorType = "configuration"

	// ErrorTypeNetwork indicates a connection, TLS, or non-2xx failure.
	// Surfaced to the caller, not retried internally.
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeProtocol indicates a frame that did not match any known
	// backend shape. Within a multi-frame stream it is logged and
	// skipped; when the whole response is a single frame, an unparseable
	// body is the whole request failing and the error is surfaced.
	ErrorTypeProtocol ErrorType = "protocol"

	// ErrorTypeCancelled marks a cooperative abort. Not a true failure:
	// the call still yields a best-effort partial result.
	ErrorTypeCancelled ErrorType = "cancelled"
)

// ClientError is the canonical error produced by provider clients.
type ClientError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// ErrConfiguration creates a configuration error.
func ErrConfiguration(message string) *ClientError {
	return &ClientError{Type: ErrorTypeConfiguration, Message: message}
}

// ErrNetwork creates a network error wrapping the underlying cause.
func ErrNetwork(message string, err error) *ClientError {
	return &ClientError{Type: ErrorTypeNetwork, Message: message, Err: err}
}

// ErrCancelled creates a cancellation marker for a request aborted
// before it produced any content.
func ErrCancelled(message string) *ClientError {
	return &ClientError{Type: ErrorTypeCancelled, Message: message}
}

// ErrProtocol creates a protocol error for an unrecognized frame.
func ErrProtocol(message string, err error) *ClientError {
	return &ClientError{Type: ErrorTypeProtocol, Message: message, Err: err}
}

// IsErrorType reports whether err is a ClientError of the given type.
func IsErrorType(err error, t ErrorType) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type == t
	}
	return false
}
