package storage

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"
)

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")

	// ErrStateNotFound is returned for unknown, expired or already used states.
	ErrStateNotFound = errors.New("authorization state not found")
)

// Session is a logged-in browser session bound to one provider.
type Session struct {
	ID        string
	Provider  string
	Token     *oauth2.Token
	UserID    int64
	Login     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuthorizationState is created when a login starts and consumed by the callback.
type AuthorizationState struct {
	State        string
	Provider     string
	CodeVerifier string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// SessionStore keeps sessions keyed by their random ID.
// All methods accept context.Context for tracing and cancellation.
type SessionStore interface {
	// SaveSession stores s until s.ExpiresAt, replacing any session with the same ID.
	SaveSession(ctx context.Context, s *Session) error

	// GetSession returns the session or ErrSessionNotFound.
	GetSession(ctx context.Context, id string) (*Session, error)

	// DeleteSession removes a session. Deleting an unknown session is not an error.
	DeleteSession(ctx context.Context, id string) error
}

// StateStore keeps pending authorization states.
type StateStore interface {
	// SaveState stores st until st.ExpiresAt.
	SaveState(ctx context.Context, st *AuthorizationState) error

	// ConsumeState returns and removes the state in one step, so a state can be
	// used at most once. Returns ErrStateNotFound otherwise.
	ConsumeState(ctx context.Context, state string) (*AuthorizationState, error)
}

// Store is implemented by backends that provide both stores.
type Store interface {
	SessionStore
	StateStore
}
