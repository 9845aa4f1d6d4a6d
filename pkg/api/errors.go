package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the stable, machine-readable category of an API error.
type ErrorKind string

const (
	ErrorKindNotFound         ErrorKind = "not_found"
	ErrorKindInvalidToken     ErrorKind = "invalid_token"
	ErrorKindUnauthorized     ErrorKind = "unauthorized"
	ErrorKindMethodNotAllowed ErrorKind = "method_not_allowed"
	ErrorKindInternal         ErrorKind = "internal_error"
)

// Routing failures raised by the transport layer. They are classified by the
// same mapper as authentication failures.
var (
	ErrNotFound         = errors.New("route not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// APIError is a classified, client-facing error. Only Code and Message are
// serialized; Kind is for logs and metrics.
type APIError struct {
	Code    int       `json:"code"`
	Kind    ErrorKind `json:"-"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
}

// NewNotFoundError creates an APIError for unknown routes.
func NewNotFoundError() *APIError {
	return &APIError{Code: http.StatusNotFound, Kind: ErrorKindNotFound, Message: "not found"}
}

// NewInvalidTokenError creates an APIError for a malformed or ambiguous
// credential source. The message embeds the extraction reason.
func NewInvalidTokenError(message string) *APIError {
	return &APIError{Code: http.StatusBadRequest, Kind: ErrorKindInvalidToken, Message: message}
}

// NewUnauthorizedError creates an APIError for a credential that failed
// validation. The message never says why.
func NewUnauthorizedError() *APIError {
	return &APIError{Code: http.StatusUnauthorized, Kind: ErrorKindUnauthorized, Message: "unauthorized"}
}

// NewMethodNotAllowedError creates an APIError for a known route requested
// with the wrong method.
func NewMethodNotAllowedError() *APIError {
	return &APIError{Code: http.StatusMethodNotAllowed, Kind: ErrorKindMethodNotAllowed, Message: "method not allowed"}
}

// NewInternalError creates the generic APIError used for every unclassified
// failure.
func NewInternalError() *APIError {
	return &APIError{Code: http.StatusInternalServerError, Kind: ErrorKindInternal, Message: "internal error"}
}
