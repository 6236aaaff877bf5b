package github

import (
	"net/http"

	oauthgithub "golang.org/x/oauth2/github"

	"github.com/giantswarm/oauthapp/providers"
)

// ProviderName is the registry key used for GitHub.
const ProviderName = "github"

// GitHub API defaults.
const (
	DefaultBaseURL = "https://api.github.com/"
	DefaultScope   = "public_repo"
)

// DefaultCapabilities are the operations GitHub supports.
var DefaultCapabilities = []providers.Capability{
	providers.CapabilityLogin,
	providers.CapabilityFork,
}

// DefaultConfig returns a GitHub provider configuration for the given OAuth App credentials.
func DefaultConfig(clientID, clientSecret string) providers.ProviderConfig {
	return ApplyDefaults(providers.ProviderConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// ApplyDefaults fills every unset endpoint field of cfg with GitHub's values.
// Credentials are left untouched.
func ApplyDefaults(cfg providers.ProviderConfig) providers.ProviderConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = oauthgithub.Endpoint.AuthURL
	}
	if cfg.AccessTokenURL == "" {
		cfg.AccessTokenURL = oauthgithub.Endpoint.TokenURL
	}
	if cfg.AccessTokenMethod == "" {
		cfg.AccessTokenMethod = http.MethodPost
	}
	if cfg.RequestTokenParams == nil {
		cfg.RequestTokenParams = map[string]string{"scope": DefaultScope}
	}
	if len(cfg.Capabilities) == 0 {
		cfg.Capabilities = append([]providers.Capability(nil), DefaultCapabilities...)
	}
	return cfg
}
