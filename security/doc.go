// Package security provides the security helpers used around the OAuth remote app:
// audit logging, encryption of tokens held in memory, request IDs, security headers
// and client IP extraction.
//
// # Audit Logging
//
// The Auditor writes structured security events through slog. User identifiers are
// hashed before they are logged:
//
//	auditor := security.NewAuditor(logger, true)
//	auditor.LogLoginVerified("github", "1", clientIP)
//
// # Token Encryption
//
// Access tokens kept in the in-memory session store are sealed with AES-256-GCM.
// The key is either supplied directly (32 bytes) or derived from a configured secret
// with HKDF-SHA256:
//
//	key, err := security.DeriveKey(secret, "session-tokens")
//	enc, err := security.NewEncryptor(key)
//
// A nil key disables encryption, which is only meant for tests.
//
// # Request IDs
//
// RequestIDMiddleware keeps a valid upstream X-Request-ID or generates a UUID, and
// stores it in the request context for log correlation.
package security
