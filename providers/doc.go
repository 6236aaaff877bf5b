// Package providers defines the provider configuration and remote client types.
//
// A provider is described by a single ProviderConfig: credentials, endpoints and
// the set of capabilities it supports (login verification, fork creation). There are
// no per-provider types; GitHub defaults live in providers/github.
//
// Subpackages:
//   - providers/remote: RemoteClient implementation on top of golang.org/x/oauth2
//   - providers/github: GitHub endpoints and defaults
//   - providers/mock: mock RemoteClient for testing
//
// Example usage:
//
//	cfg := github.DefaultConfig("client-id", "client-secret")
//	client, err := remote.New("github", cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := client.Get(remote.WithToken(ctx, token), cfg.UserEndpoint())
package providers
