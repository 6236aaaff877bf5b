// Package providers defines the provider configuration and the remote client
// interface used to talk to an OAuth-protected provider API.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Capability is an operation a provider supports.
type Capability string

const (
	// CapabilityLogin allows verifying the logged in user against the provider's user endpoint.
	CapabilityLogin Capability = "login"

	// CapabilityFork allows creating repository forks.
	CapabilityFork Capability = "fork"
)

// ErrNoToken is returned by a RemoteClient when no access token is available for the request.
var ErrNoToken = errors.New("no access token available")

// Default endpoint paths relative to BaseURL.
const (
	DefaultUserPath = "/user"
	DefaultForkPath = "/repos/{owner}/{repo}/forks"
)

// ProviderConfig holds the credentials and endpoints for one provider.
// It is loaded once at startup and treated as read-only afterwards.
type ProviderConfig struct {
	// ClientID is the OAuth application client ID (consumer key).
	ClientID string `mapstructure:"client_id"`

	// ClientSecret is the OAuth application client secret (consumer secret).
	ClientSecret string `mapstructure:"client_secret"`

	// BaseURL is the API root that relative request paths are resolved against.
	BaseURL string `mapstructure:"base_url"`

	// AccessTokenURL is the token endpoint.
	AccessTokenURL string `mapstructure:"access_token_url"`

	// AccessTokenMethod is the HTTP method used against the token endpoint.
	// Only POST is supported by the underlying client; GET is rejected.
	AccessTokenMethod string `mapstructure:"access_token_method"`

	// AuthorizeURL is the authorization endpoint users are redirected to.
	AuthorizeURL string `mapstructure:"authorize_url"`

	// RequestTokenParams are extra authorization URL parameters.
	// The "scope" entry is split on spaces and commas into oauth2 scopes.
	RequestTokenParams map[string]string `mapstructure:"request_token_params"`

	// RedirectURL is the OAuth callback URL registered with the provider.
	RedirectURL string `mapstructure:"redirect_url"`

	// UserPath overrides DefaultUserPath.
	UserPath string `mapstructure:"user_path"`

	// ForkPath overrides DefaultForkPath. It must contain {owner} and {repo}.
	ForkPath string `mapstructure:"fork_path"`

	// Capabilities lists what the provider supports. Empty means every capability;
	// list them to opt out of some.
	Capabilities []Capability `mapstructure:"capabilities"`
}

// Validate returns an error naming every missing required field.
func (c ProviderConfig) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if c.BaseURL == "" {
		missing = append(missing, "base_url")
	}
	if c.AccessTokenURL == "" {
		missing = append(missing, "access_token_url")
	}
	if c.AuthorizeURL == "" {
		missing = append(missing, "authorize_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	switch strings.ToUpper(c.AccessTokenMethod) {
	case "", http.MethodPost:
	default:
		return fmt.Errorf("unsupported access_token_method %q", c.AccessTokenMethod)
	}

	if c.ForkPath != "" && (!strings.Contains(c.ForkPath, "{owner}") || !strings.Contains(c.ForkPath, "{repo}")) {
		return fmt.Errorf("fork_path %q must contain {owner} and {repo}", c.ForkPath)
	}
	return nil
}

// Scopes returns the scopes carried in RequestTokenParams["scope"].
func (c ProviderConfig) Scopes() []string {
	raw := c.RequestTokenParams["scope"]
	if raw == "" {
		return nil
	}
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == ','
	})
}

// Has reports whether the provider supports the capability.
func (c ProviderConfig) Has(capability Capability) bool {
	if len(c.Capabilities) == 0 {
		return true
	}
	return slices.Contains(c.Capabilities, capability)
}

// UserEndpoint returns the configured user path.
func (c ProviderConfig) UserEndpoint() string {
	if c.UserPath != "" {
		return c.UserPath
	}
	return DefaultUserPath
}

// ForkEndpoint returns the fork path for owner and repo.
// Both values are path-escaped.
func (c ProviderConfig) ForkEndpoint(owner, repo string) string {
	tmpl := c.ForkPath
	if tmpl == "" {
		tmpl = DefaultForkPath
	}
	return strings.NewReplacer(
		"{owner}", escapeSegment(owner),
		"{repo}", escapeSegment(repo),
	).Replace(tmpl)
}

// Response is a provider API response.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// Data is the raw response body.
	Data []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// RemoteClient performs signed requests against a provider API.
// Paths are relative to the provider's BaseURL; signing is handled by the implementation.
type RemoteClient interface {
	// Get issues an authenticated GET request.
	Get(ctx context.Context, path string) (*Response, error)

	// Post issues an authenticated POST request with an empty body of the given content type.
	Post(ctx context.Context, path, contentType string) (*Response, error)
}
