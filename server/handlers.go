package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/giantswarm/oauthapp"
	"github.com/giantswarm/oauthapp/instrumentation"
	"github.com/giantswarm/oauthapp/providers/remote"
	"github.com/giantswarm/oauthapp/security"
	"github.com/giantswarm/oauthapp/storage"
)

// PKCEMethodS256 is the only code challenge method sent to providers.
const PKCEMethodS256 = "S256"

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"providers": s.registry.Names()})
}

// app resolves the {provider} route parameter. On failure it writes the error.
func (s *Server) app(w http.ResponseWriter, r *http.Request) (*oauthapp.App, bool) {
	app, err := s.registry.Get(chi.URLParam(r, "provider"))
	if err != nil {
		writeAppError(w, err)
		return nil, false
	}
	return app, true
}

// handleLogin starts the authorization code flow with PKCE.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "oauthapp.http.login")
	defer span.End()

	app, ok := s.app(w, r)
	if !ok {
		return
	}
	provider := app.Name()
	instrumentation.AddProviderAttributes(span, provider, oauthapp.OpAuthorize)

	verifier := oauth2.GenerateVerifier()
	now := time.Now()
	st := &storage.AuthorizationState{
		State:        uuid.NewString(),
		Provider:     provider,
		CodeVerifier: verifier,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.config.StateTTL),
	}

	authURL, err := app.AuthorizationURL(st.State, oauth2.S256ChallengeFromVerifier(verifier), PKCEMethodS256)
	if err != nil {
		instrumentation.RecordError(span, err)
		writeAppError(w, err)
		return
	}

	if err := s.store.SaveState(ctx, st); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save authorization state", "provider", provider, "error", err)
		instrumentation.RecordError(span, err)
		writeError(w, http.StatusInternalServerError, ErrorCodeServerError, "failed to start login")
		return
	}

	s.auditor.LogLoginStarted(provider, security.ClientIP(r, s.config.TrustProxy))
	instrumentation.SetSpanSuccess(span)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback finishes the flow: state check, code exchange, login verification
// and a new session.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "oauthapp.http.callback")
	defer span.End()

	app, ok := s.app(w, r)
	if !ok {
		return
	}
	provider := app.Name()
	clientIP := security.ClientIP(r, s.config.TrustProxy)
	instrumentation.AddProviderAttributes(span, provider, oauthapp.OpExchangeCode)

	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		s.logger.WarnContext(ctx, "Provider returned error",
			"provider", provider,
			"error", errParam,
			"description", q.Get("error_description"))
		s.auditor.LogAuthFailure(provider, clientIP, errParam)
		s.metrics.recordLogin(provider, false)
		writeError(w, http.StatusBadRequest, ErrorCodeAccessDenied, q.Get("error_description"))
		return
	}

	state, code := q.Get("state"), q.Get("code")
	if state == "" || code == "" {
		s.metrics.recordLogin(provider, false)
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "state and code are required")
		return
	}

	st, err := s.store.ConsumeState(ctx, state)
	if err == nil && st.Provider != provider {
		err = storage.ErrStateNotFound
	}
	if err != nil {
		if !errors.Is(err, storage.ErrStateNotFound) {
			s.logger.ErrorContext(ctx, "Failed to load authorization state", "error", err)
		}
		s.auditor.LogInvalidState(provider, clientIP)
		s.metrics.recordLogin(provider, false)
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidState, "unknown or expired state, start the login again")
		return
	}

	token, err := app.ExchangeCode(ctx, code, st.CodeVerifier)
	if err != nil {
		s.auditor.LogAuthFailure(provider, clientIP, "code exchange failed")
		s.metrics.recordLogin(provider, false)
		instrumentation.RecordError(span, err)
		writeAppError(w, err)
		return
	}

	login, err := app.VerifyLogin(remote.WithToken(ctx, token))
	if err != nil {
		s.auditor.LogAuthFailure(provider, clientIP, "login verification failed")
		s.metrics.recordLogin(provider, false)
		instrumentation.RecordError(span, err)
		writeAppError(w, err)
		return
	}

	now := time.Now()
	session := &storage.Session{
		ID:        uuid.NewString(),
		Provider:  provider,
		Token:     token,
		UserID:    login.ID,
		Login:     login.Login,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL),
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save session", "provider", provider, "error", err)
		s.metrics.recordLogin(provider, false)
		instrumentation.RecordError(span, err)
		writeError(w, http.StatusInternalServerError, ErrorCodeServerError, "failed to create session")
		return
	}

	s.setSessionCookie(w, session)
	s.auditor.LogLoginVerified(provider, strconv.FormatInt(login.ID, 10), clientIP)
	s.metrics.recordLogin(provider, true)
	instrumentation.SetSpanSuccess(span)
	writeJSON(w, http.StatusOK, login)
}

// handleUser re-verifies the session's login against the provider.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	app, ok := s.app(w, r)
	if !ok {
		return
	}
	session, ok := s.requireSession(w, r, app.Name())
	if !ok {
		return
	}

	ctx := remote.WithToken(r.Context(), session.Token)
	login, err := app.VerifyLogin(ctx)
	s.saveRefreshedToken(ctx, session)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, login)
}

// handleFork forks repoowner/reponame, read from the query string or a form body.
func (s *Server) handleFork(w http.ResponseWriter, r *http.Request) {
	app, ok := s.app(w, r)
	if !ok {
		return
	}
	provider := app.Name()

	session, ok := s.requireSession(w, r, provider)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "malformed form body")
		return
	}

	req := oauthapp.ForkRequestFromValues(r.Form)
	ctx := remote.WithToken(r.Context(), session.Token)
	result, err := app.Fork(ctx, req)
	s.saveRefreshedToken(ctx, session)
	if err != nil {
		s.metrics.recordFork(provider, false)
		writeAppError(w, err)
		return
	}

	s.metrics.recordFork(provider, true)
	writeJSON(w, http.StatusAccepted, result)
}

// handleLogout ends the session for the provider. It succeeds without a session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	app, ok := s.app(w, r)
	if !ok {
		return
	}
	provider := app.Name()

	if cookie, err := r.Cookie(s.config.cookieName(provider)); err == nil && cookie.Value != "" {
		if err := s.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			s.logger.ErrorContext(r.Context(), "Failed to delete session", "provider", provider, "error", err)
		}
		s.auditor.LogSessionEnded(provider, security.ClientIP(r, s.config.TrustProxy))
	}

	s.clearSessionCookie(w, provider)
	w.WriteHeader(http.StatusNoContent)
}
