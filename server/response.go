package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/giantswarm/oauthapp"
	"github.com/giantswarm/oauthapp/providers"
)

// Error codes returned in the "error" field.
const (
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeInvalidState     = "invalid_state"
	ErrorCodeLoginRequired    = "login_required"
	ErrorCodeProviderNotFound = "provider_not_found"
	ErrorCodeNotImplemented   = "not_implemented"
	ErrorCodeUpstreamError    = "upstream_error"
	ErrorCodeAccessDenied     = "access_denied"
	ErrorCodeServerError      = "server_error"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

// writeAppError answers with the status oauthapp.HTTPStatus assigns to err.
// Upstream and internal details are not echoed; validation messages are.
func writeAppError(w http.ResponseWriter, err error) {
	status := oauthapp.HTTPStatus(err)
	if errors.Is(err, providers.ErrNoToken) {
		status = http.StatusUnauthorized
	}

	var validationErr *oauthapp.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, status, ErrorCodeInvalidRequest, validationErr.Message)
	case status == http.StatusNotFound:
		writeError(w, status, ErrorCodeProviderNotFound, "unknown provider")
	case status == http.StatusNotImplemented:
		writeError(w, status, ErrorCodeNotImplemented, "operation not supported by provider")
	case status == http.StatusUnauthorized:
		writeError(w, status, ErrorCodeLoginRequired, "provider rejected the access token")
	case status == http.StatusBadGateway:
		writeError(w, status, ErrorCodeUpstreamError, "provider request failed")
	default:
		writeError(w, status, ErrorCodeServerError, "internal error")
	}
}
