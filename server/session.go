package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/giantswarm/oauthapp/internal/util"
	"github.com/giantswarm/oauthapp/providers/remote"
	"github.com/giantswarm/oauthapp/storage"
)

// sessionIDLogLength is how much of a session ID is logged.
const sessionIDLogLength = 8

func (s *Server) setSessionCookie(w http.ResponseWriter, session *storage.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.cookieName(session.Provider),
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.config.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, provider string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.cookieName(provider),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// requireSession loads the caller's session for provider. On failure it writes
// a 401 and returns false.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request, provider string) (*storage.Session, bool) {
	cookie, err := r.Cookie(s.config.cookieName(provider))
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, ErrorCodeLoginRequired, "no session, log in first")
		return nil, false
	}

	session, err := s.store.GetSession(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, storage.ErrSessionNotFound) {
			s.logger.ErrorContext(r.Context(), "Failed to load session",
				"session_id", util.SafeTruncate(cookie.Value, sessionIDLogLength),
				"error", err)
		}
		s.clearSessionCookie(w, provider)
		writeError(w, http.StatusUnauthorized, ErrorCodeLoginRequired, "session expired, log in again")
		return nil, false
	}

	if session.Provider != provider || session.Token == nil {
		writeError(w, http.StatusUnauthorized, ErrorCodeLoginRequired, "no session for this provider")
		return nil, false
	}
	return session, true
}

// saveRefreshedToken stores the token the provider issued during calls made
// with ctx, if any. Failures are only logged.
func (s *Server) saveRefreshedToken(ctx context.Context, session *storage.Session) {
	token, ok := remote.RefreshedToken(ctx)
	if !ok {
		return
	}

	updated := *session
	updated.Token = token
	if err := s.store.SaveSession(ctx, &updated); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save refreshed token",
			"session_id", util.SafeTruncate(session.ID, sessionIDLogLength),
			"error", err)
		return
	}
	s.logger.DebugContext(ctx, "Saved refreshed token",
		"session_id", util.SafeTruncate(session.ID, sessionIDLogLength))
}
