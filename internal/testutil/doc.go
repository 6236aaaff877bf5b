// Package testutil provides test fixtures and helpers shared by the oauthapp packages:
// a log-capturing slog handler, fake provider servers, tokens and provider configs.
package testutil
