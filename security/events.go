package security

// Event type constants for security audit logging.
const (
	// EventLoginStarted is logged when a user is redirected to the provider's authorize URL
	EventLoginStarted = "login_started"

	// EventLoginVerified is logged when the provider confirmed the user's identity
	EventLoginVerified = "login_verified"

	// EventForkCreated is logged when the provider accepted a fork request
	EventForkCreated = "fork_created"

	// EventForkRejected is logged when a fork request was rejected
	EventForkRejected = "fork_rejected"

	// EventAuthFailure is logged when the code exchange or login verification fails
	EventAuthFailure = "auth_failure"

	// EventInvalidState is logged when a callback carries an unknown or reused state
	EventInvalidState = "invalid_state"

	// EventSessionEnded is logged when a session token is dropped
	EventSessionEnded = "session_ended"
)
