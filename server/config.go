package server

import (
	"net/url"
	"time"
)

const (
	// DefaultSessionTTL is how long a login session lives.
	DefaultSessionTTL = 8 * time.Hour

	// DefaultStateTTL is how long a started login may take to come back.
	DefaultStateTTL = 10 * time.Minute

	// DefaultCookieName prefixes the per-provider session cookie.
	DefaultCookieName = "oauthapp_session"
)

// Config holds the HTTP surface settings
type Config struct {
	// BaseURL is the externally visible server URL. Cookies are marked Secure
	// and HSTS is sent when it is https.
	BaseURL string

	// SessionTTL is how long a session stays valid after login.
	// Default: 8 hours
	SessionTTL time.Duration

	// StateTTL bounds the time between /login and /callback.
	// Default: 10 minutes
	StateTTL time.Duration

	// CookieName prefixes the session cookie; the provider name is appended.
	// Default: oauthapp_session
	CookieName string

	// TrustProxy enables trusting X-Forwarded-For and X-Real-IP headers
	// WARNING: Only enable if behind a trusted reverse proxy
	TrustProxy bool
}

func (c *Config) applyDefaults() {
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.StateTTL <= 0 {
		c.StateTTL = DefaultStateTTL
	}
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
}

// secureCookies reports whether cookies must carry the Secure attribute.
func (c *Config) secureCookies() bool {
	u, err := url.Parse(c.BaseURL)
	return err == nil && u.Scheme == "https"
}

func (c *Config) cookieName(provider string) string {
	return c.CookieName + "_" + provider
}
