// Package storage defines the short-lived state the HTTP surface keeps between
// requests: pending authorization states and logged-in sessions.
//
// Nothing here is persisted. Implementations hold data in process memory and
// expire it after a TTL; a restart logs every user out.
package storage
