package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/giantswarm/oauthapp/internal/util"
	"github.com/giantswarm/oauthapp/security"
	"github.com/giantswarm/oauthapp/storage"
)

const (
	// idLogLength is how much of a session ID or state is logged.
	idLogLength = 8

	// DefaultSessionTTL applies when a session has no ExpiresAt.
	DefaultSessionTTL = 8 * time.Hour

	// DefaultStateTTL applies when a state has no ExpiresAt.
	DefaultStateTTL = 10 * time.Minute

	defaultCleanupInterval = time.Minute

	sessionPrefix = "session:"
	statePrefix   = "state:"
)

// Compile-time interface checks
var (
	_ storage.SessionStore = (*Store)(nil)
	_ storage.StateStore   = (*Store)(nil)
)

// sessionEntry is what the cache holds for a session. The token is sealed.
type sessionEntry struct {
	session     storage.Session
	sealedToken []byte
}

// Store keeps sessions and authorization states in a go-cache with per-item TTLs.
// Tokens are sealed with the encryptor before they enter the cache.
type Store struct {
	// mu makes ConsumeState's get-then-delete atomic.
	mu sync.Mutex

	cache     *gocache.Cache
	encryptor *security.Encryptor
	logger    *slog.Logger
}

// New creates a store. A nil encryptor stores tokens as plain JSON.
func New(encryptor *security.Encryptor, logger *slog.Logger) *Store {
	return NewWithInterval(encryptor, logger, defaultCleanupInterval)
}

// NewWithInterval creates a store whose expired entries are purged every interval.
func NewWithInterval(encryptor *security.Encryptor, logger *slog.Logger, interval time.Duration) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if encryptor == nil {
		// An empty key disables encryption and cannot fail.
		encryptor, _ = security.NewEncryptor(nil)
	}
	if !encryptor.IsEnabled() {
		logger.Debug("Token encryption disabled, session tokens are kept as plain JSON")
	}

	return &Store{
		cache:     gocache.New(DefaultSessionTTL, interval),
		encryptor: encryptor,
		logger:    logger,
	}
}

// SaveSession stores s until s.ExpiresAt.
func (s *Store) SaveSession(_ context.Context, session *storage.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("invalid session")
	}

	ttl := ttlUntil(session.ExpiresAt, DefaultSessionTTL)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	entry := &sessionEntry{session: *session}
	entry.session.Token = nil
	if session.Token != nil {
		sealed, err := storage.SealToken(s.encryptor, session.Token)
		if err != nil {
			return err
		}
		entry.sealedToken = sealed
	}

	s.cache.Set(sessionPrefix+session.ID, entry, ttl)
	s.logger.Debug("Saved session",
		"session_id", util.SafeTruncate(session.ID, idLogLength),
		"provider", session.Provider,
		"ttl", ttl)
	return nil
}

// GetSession returns a copy of the session with its token opened.
func (s *Store) GetSession(_ context.Context, id string) (*storage.Session, error) {
	v, ok := s.cache.Get(sessionPrefix + id)
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	entry, ok := v.(*sessionEntry)
	if !ok {
		return nil, storage.ErrSessionNotFound
	}

	session := entry.session
	if entry.sealedToken != nil {
		token, err := storage.OpenToken(s.encryptor, entry.sealedToken)
		if err != nil {
			s.logger.Warn("Dropping unreadable session",
				"session_id", util.SafeTruncate(id, idLogLength),
				"error", err)
			s.cache.Delete(sessionPrefix + id)
			return nil, storage.ErrSessionNotFound
		}
		session.Token = token
	}
	return &session, nil
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.cache.Delete(sessionPrefix + id)
	return nil
}

// SaveState stores st until st.ExpiresAt.
func (s *Store) SaveState(_ context.Context, st *storage.AuthorizationState) error {
	if st == nil || st.State == "" {
		return fmt.Errorf("invalid authorization state")
	}

	ttl := ttlUntil(st.ExpiresAt, DefaultStateTTL)
	if ttl <= 0 {
		return fmt.Errorf("authorization state already expired")
	}

	stored := *st
	s.cache.Set(statePrefix+st.State, &stored, ttl)
	return nil
}

// ConsumeState returns the state and removes it.
func (s *Store) ConsumeState(_ context.Context, state string) (*storage.AuthorizationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := statePrefix + state
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, storage.ErrStateNotFound
	}
	s.cache.Delete(key)

	st, ok := v.(*storage.AuthorizationState)
	if !ok {
		return nil, storage.ErrStateNotFound
	}
	out := *st
	return &out, nil
}

// Len returns the number of unexpired entries.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// Flush removes everything.
func (s *Store) Flush() {
	s.cache.Flush()
}

func ttlUntil(expiresAt time.Time, fallback time.Duration) time.Duration {
	if expiresAt.IsZero() {
		return fallback
	}
	return time.Until(expiresAt)
}
