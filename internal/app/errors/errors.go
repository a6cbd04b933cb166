package errors

import (
	"fmt"
)

// Common error types
var (
	// Backend errors
	ErrUnknownBackend = New("unknown transcription backend")
	ErrBackendConfig  = New("invalid backend configuration")

	// Worker errors
	ErrWorkerStartup = New("transcription worker failed to start")
	ErrWorkerExited  = New("transcription worker exited unexpectedly")
	ErrPoolClosed    = New("worker pool is closed")

	// Scratch file errors
	ErrFileCreateFailed = New("file create failed")
	ErrFileWriteFailed  = New("file write failed")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}
