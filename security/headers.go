package security

import (
	"net/http"
	"net/url"
)

// SetSecurityHeaders sets security headers on responses of the login and API endpoints.
// HSTS is only sent when serverURL is https.
func SetSecurityHeaders(w http.ResponseWriter, serverURL string) {
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	w.Header().Set("Referrer-Policy", "no-referrer")

	if parsed, err := url.Parse(serverURL); err == nil && parsed.Scheme == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	// OAuth callbacks and user data must not be cached
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
	w.Header().Set("Pragma", "no-cache")
}

// SecurityHeadersMiddleware applies SetSecurityHeaders to every response.
func SecurityHeadersMiddleware(serverURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			SetSecurityHeaders(w, serverURL)
			next.ServeHTTP(w, r)
		})
	}
}
