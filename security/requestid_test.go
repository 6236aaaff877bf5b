package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	if id1 == id2 {
		t.Error("Expected unique request IDs")
	}
	if _, err := uuid.Parse(id1); err != nil {
		t.Errorf("GenerateRequestID() = %q is not a UUID: %v", id1, err)
	}
	if !isValidRequestID(id1) {
		t.Errorf("generated ID %q fails validation", id1)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "test-request-id-123")

	if got := GetRequestID(ctx); got != "test-request-id-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "test-request-id-123")
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() on empty context = %q, want empty", got)
	}
}

func TestIsValidRequestID(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		valid     bool
	}{
		{"alphanumeric", "abc123", true},
		{"hyphens and underscores", "req_ID-123_abc", true},
		{"uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"empty", "", false},
		{"crlf injection", "abc\r\nSet-Cookie: x=y", false},
		{"equals sign", "Root=1-67891234", false},
		{"too long", strings.Repeat("a", 129), false},
		{"max length", strings.Repeat("a", 128), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValidRequestID(tt.requestID); got != tt.valid {
				t.Errorf("isValidRequestID(%q) = %v, want %v", tt.requestID, got, tt.valid)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		upstreamID string
		wantKeep   bool
	}{
		{name: "no upstream id", upstreamID: ""},
		{name: "valid upstream id", upstreamID: "upstream-123", wantKeep: true},
		{name: "invalid upstream id", upstreamID: "bad id with spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/user/github", nil)
			if tt.upstreamID != "" {
				req.Header.Set(RequestIDHeader, tt.upstreamID)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if seen == "" {
				t.Fatal("request ID missing from context")
			}
			if got := w.Header().Get(RequestIDHeader); got != seen {
				t.Errorf("response header = %q, context = %q", got, seen)
			}
			if tt.wantKeep && seen != tt.upstreamID {
				t.Errorf("request ID = %q, want upstream %q", seen, tt.upstreamID)
			}
			if !tt.wantKeep && seen == tt.upstreamID {
				t.Errorf("invalid upstream ID %q was kept", tt.upstreamID)
			}
		})
	}
}
