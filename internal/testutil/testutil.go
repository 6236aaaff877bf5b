package testutil

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/giantswarm/oauthapp/providers"
)

// Record is one captured log record.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that keeps every record in memory.
type LogRecorder struct {
	mu      *sync.Mutex
	records *[]Record
	attrs   []slog.Attr
}

// NewLogRecorder returns a recorder and a logger writing into it.
func NewLogRecorder() (*LogRecorder, *slog.Logger) {
	rec := &LogRecorder{
		mu:      &sync.Mutex{},
		records: &[]Record{},
	}
	return rec, slog.New(rec)
}

// Enabled implements slog.Handler. Every level is captured.
func (h *LogRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	*h.records = append(*h.records, Record{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.mu.Unlock()
	return nil
}

// WithAttrs implements slog.Handler.
func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &LogRecorder{mu: h.mu, records: h.records, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *LogRecorder) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of everything captured so far.
func (h *LogRecorder) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(*h.records))
	copy(out, *h.records)
	return out
}

// Count returns the number of records at level or above.
func (h *LogRecorder) Count(level slog.Level) int {
	n := 0
	for _, r := range h.Records() {
		if r.Level >= level {
			n++
		}
	}
	return n
}

// NewProviderServer starts an httptest server standing in for the provider API.
// The returned config points every endpoint at it.
func NewProviderServer(t *testing.T, handler http.Handler) (*httptest.Server, providers.ProviderConfig) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, TestProviderConfig(srv.URL)
}

// TestProviderConfig returns a complete login+fork configuration rooted at baseURL.
func TestProviderConfig(baseURL string) providers.ProviderConfig {
	return providers.ProviderConfig{
		ClientID:           "test-client-id",
		ClientSecret:       "test-client-secret",
		BaseURL:            baseURL + "/",
		AccessTokenURL:     baseURL + "/login/oauth/access_token",
		AccessTokenMethod:  http.MethodPost,
		AuthorizeURL:       baseURL + "/login/oauth/authorize",
		RequestTokenParams: map[string]string{"scope": "public_repo"},
		RedirectURL:        "http://localhost:8080/callback/github",
		Capabilities:       []providers.Capability{providers.CapabilityLogin, providers.CapabilityFork},
	}
}

// GenerateTestToken creates a bearer token valid for one hour.
func GenerateTestToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: GenerateRandomString(32),
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(1 * time.Hour),
	}
}

// GenerateRandomString generates a random base64-encoded string
func GenerateRandomString(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate random string: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length]
}

// WriteJSON writes body with the given status as application/json.
func WriteJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
