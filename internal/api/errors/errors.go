package errors

import (
	"net/http"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	// KindInvalidRequest is a client-side precondition failure.
	KindInvalidRequest ErrorKind = "invalid_request"
	// KindInferenceFailure is any fault raised by the transcription model.
	KindInferenceFailure ErrorKind = "inference_failure"
	// KindIOFault is a failure storing the upload in the scratch area.
	KindIOFault ErrorKind = "io_fault"
	// KindInternal covers everything else.
	KindInternal ErrorKind = "internal"
)

// Fixed client-facing messages
const (
	MsgNoFileUploaded = "No file uploaded"
	MsgStoreFailed    = "Failed to store uploaded file"
	MsgInternal       = "Internal server error"
)

// APIError represents a structured API error response. Only the message is
// serialised, as {"detail": "..."}; the kind selects the status code.
type APIError struct {
	Kind    ErrorKind `json:"-"`
	Message string    `json:"detail"`

	cause error
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying fault, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewInvalidRequestError creates a 400 error with a fixed message
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindInvalidRequest,
		Message: message,
	}
}

// NewInferenceFailure wraps a model fault, passing its message through verbatim
func NewInferenceFailure(err error) *APIError {
	return &APIError{
		Kind:    KindInferenceFailure,
		Message: err.Error(),
		cause:   err,
	}
}

// NewIOFault wraps a scratch-area failure; the cause is kept for logging only
func NewIOFault(err error) *APIError {
	return &APIError{
		Kind:    KindIOFault,
		Message: MsgStoreFailed,
		cause:   err,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}
