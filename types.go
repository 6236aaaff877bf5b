package oauthapp

import (
	"net/url"
	"strings"
)

// Query parameter names carrying the fork target.
const (
	ParamRepoOwner = "repoowner"
	ParamRepoName  = "reponame"
)

// LoginResult is the outcome of a successful login verification.
type LoginResult struct {
	// Status is the provider's HTTP status code (200).
	Status int `json:"status"`

	// ID is the provider's numeric user ID.
	ID int64 `json:"id"`

	// Login is the user's login name.
	Login string `json:"login"`
}

// ForkResult is the outcome of an accepted fork request.
type ForkResult struct {
	// Status is the provider's HTTP status code (202).
	Status int `json:"status"`

	// FullName is the fork's "owner/name". It may be empty if the provider
	// accepted the request without returning a body.
	FullName string `json:"full_name"`
}

// ForkRequest names the repository to fork.
type ForkRequest struct {
	RepoOwner string
	RepoName  string
}

// ForkRequestFromValues reads repoowner and reponame from query or form values.
// Surrounding whitespace is dropped.
func ForkRequestFromValues(values url.Values) ForkRequest {
	return ForkRequest{
		RepoOwner: strings.TrimSpace(values.Get(ParamRepoOwner)),
		RepoName:  strings.TrimSpace(values.Get(ParamRepoName)),
	}
}
