package security

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

type requestIDContextKey struct{}

// RequestIDHeader is the HTTP header for request IDs
const RequestIDHeader = "X-Request-ID"

// requestIDPattern accepts alphanumerics, hyphens and underscores (1-128 chars),
// which rules out CRLF injection through an upstream header.
var requestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)

// GenerateRequestID returns a new random (version 4) UUID.
func GenerateRequestID() string {
	return uuid.NewString()
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDContextKey{}).(string); ok {
		return requestID
	}
	return ""
}

func isValidRequestID(requestID string) bool {
	return requestIDPattern.MatchString(requestID)
}

// RequestIDMiddleware keeps a valid upstream request ID or generates a new one,
// echoes it in the response and stores it in the request context.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || !isValidRequestID(requestID) {
			requestID = GenerateRequestID()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}
