// Package github provides GitHub defaults for the OAuth remote app.
//
// GitHub OAuth Apps use the standard authorization code flow against
// github.com/login/oauth and issue non-expiring access tokens. The API root is
// https://api.github.com/ and the default requested scope is "public_repo",
// which is what creating a fork of a public repository needs.
//
// Endpoints used by the app:
//   - GET  /user                          -> User{ID, Login}
//   - POST /repos/{owner}/{repo}/forks    -> Fork{FullName}, 202 Accepted
//
// Fork creation is asynchronous on GitHub's side: 202 means the fork has been
// queued, not that the repository is already usable.
//
// Example:
//
//	cfg := github.DefaultConfig(os.Getenv("GITHUB_CLIENT_ID"), os.Getenv("GITHUB_CLIENT_SECRET"))
//	cfg.RedirectURL = "http://localhost:8080/callback/github"
//	app, err := registry.Register(github.ProviderName, cfg)
package github
