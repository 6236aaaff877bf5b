package security

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"
)

// Auditor handles security event logging with PII protection.
type Auditor struct {
	logger  *slog.Logger
	enabled bool

	// OnEvent is called for every logged event, e.g. to count it in metrics.
	OnEvent func(eventType string)
}

// NewAuditor creates a new security auditor
func NewAuditor(logger *slog.Logger, enabled bool) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		logger:  logger,
		enabled: enabled,
	}
}

// Event represents a security audit event
type Event struct {
	Type      string
	Provider  string
	UserID    string
	IPAddress string
	Details   map[string]any
	Timestamp time.Time
}

// LogEvent logs a security event with hashed PII. A nil Auditor is a no-op.
func (a *Auditor) LogEvent(event Event) {
	if a == nil || !a.enabled {
		return
	}

	event.Timestamp = time.Now()

	a.logger.Info("security_audit",
		"event_type", event.Type,
		"provider", event.Provider,
		"user_id_hash", hashForLogging(event.UserID),
		"ip_address", event.IPAddress,
		"details", event.Details,
		"timestamp", event.Timestamp,
	)

	if a.OnEvent != nil {
		a.OnEvent(event.Type)
	}
}

// LogLoginStarted logs a redirect to the provider
func (a *Auditor) LogLoginStarted(provider, ipAddress string) {
	a.LogEvent(Event{
		Type:      EventLoginStarted,
		Provider:  provider,
		IPAddress: ipAddress,
	})
}

// LogLoginVerified logs a successful login verification
func (a *Auditor) LogLoginVerified(provider, userID, ipAddress string) {
	a.LogEvent(Event{
		Type:      EventLoginVerified,
		Provider:  provider,
		UserID:    userID,
		IPAddress: ipAddress,
	})
}

// LogForkCreated logs an accepted fork request
func (a *Auditor) LogForkCreated(provider, fullName, ipAddress string) {
	a.LogEvent(Event{
		Type:      EventForkCreated,
		Provider:  provider,
		IPAddress: ipAddress,
		Details: map[string]any{
			"full_name": fullName,
		},
	})
}

// LogForkRejected logs a rejected fork request
func (a *Auditor) LogForkRejected(provider, owner, repo string, status int) {
	a.LogEvent(Event{
		Type:     EventForkRejected,
		Provider: provider,
		Details: map[string]any{
			"repo_owner": owner,
			"repo_name":  repo,
			"status":     status,
		},
	})
}

// LogAuthFailure logs an authentication failure
func (a *Auditor) LogAuthFailure(provider, ipAddress, reason string) {
	a.LogEvent(Event{
		Type:      EventAuthFailure,
		Provider:  provider,
		IPAddress: ipAddress,
		Details: map[string]any{
			"reason": reason,
		},
	})
}

// LogInvalidState logs a callback with an unknown state
func (a *Auditor) LogInvalidState(provider, ipAddress string) {
	a.LogEvent(Event{
		Type:      EventInvalidState,
		Provider:  provider,
		IPAddress: ipAddress,
	})
}

// LogSessionEnded logs a dropped session
func (a *Auditor) LogSessionEnded(provider, ipAddress string) {
	a.LogEvent(Event{
		Type:      EventSessionEnded,
		Provider:  provider,
		IPAddress: ipAddress,
	})
}

// hashForLogging creates a SHA256 hash of sensitive data for logging
func hashForLogging(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	hash := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(hash[:])[:16]
}
