package oauthapp

import (
	"errors"
	"fmt"
	"net/http"
)

// Operation names used in errors, logs and spans.
const (
	OpInitialize   = "initialize"
	OpVerifyLogin  = "verify_login"
	OpCreateFork   = "create_fork"
	OpAuthorize    = "authorize"
	OpExchangeCode = "exchange_code"
)

var (
	// ErrProviderNotFound is returned when no app is registered for a provider name.
	ErrProviderNotFound = errors.New("provider not registered")

	// ErrCapabilityNotSupported is returned when a provider is not configured for an operation.
	ErrCapabilityNotSupported = errors.New("operation not supported by provider")
)

// ConstructionError is returned when the remote app for a provider cannot be built.
type ConstructionError struct {
	Provider string
	Err      error
}

// Error implements the error interface
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: failed to create oauth app: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying cause
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// HTTPError is returned when a provider call fails at the transport or protocol level.
// Status is zero when no response was received.
type HTTPError struct {
	Provider string
	Op       string
	Status   int
	Err      error
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: %s: unexpected http status %d", e.Op, e.Provider, e.Status)
}

// Unwrap returns the underlying cause
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when repository or owner names are missing or rejected.
//
// A fork request answered with anything other than 202 Accepted is reported as a
// ValidationError carrying the upstream Status, even when the provider failed for
// another reason (authentication, rate limit, server error). Callers that need to
// tell those apart must inspect Status.
type ValidationError struct {
	Provider string
	Op       string
	Message  string
	Status   int
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s: %s (status %d)", e.Op, e.Provider, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Provider, e.Message)
}

// OperationError wraps any other unexpected failure.
type OperationError struct {
	Provider string
	Op       string
	Err      error
}

// Error implements the error interface
func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Provider, e.Err)
}

// Unwrap returns the underlying cause
func (e *OperationError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error returned by this package to the status an HTTP
// handler should answer with.
func HTTPStatus(err error) int {
	var (
		validationErr   *ValidationError
		httpErr         *HTTPError
		constructionErr *ConstructionError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrProviderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCapabilityNotSupported):
		return http.StatusNotImplemented
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &httpErr):
		if httpErr.Status == http.StatusUnauthorized {
			return http.StatusUnauthorized
		}
		return http.StatusBadGateway
	case errors.As(err, &constructionErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
