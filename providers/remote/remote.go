// Package remote implements providers.RemoteClient on top of golang.org/x/oauth2.
//
// The handshake (authorization URL, code exchange, request signing and token refresh)
// is delegated entirely to the oauth2 package. The access token for a request is read
// from the request context, see WithToken. A token refreshed during a call is
// reported by RefreshedToken.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/giantswarm/oauthapp/internal/util"
	"github.com/giantswarm/oauthapp/providers"
)

// Compile-time check that Client implements the providers.RemoteClient interface.
var _ providers.RemoteClient = (*Client)(nil)

const (
	// DefaultRequestTimeout is applied when the request context has no deadline.
	DefaultRequestTimeout = 30 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 1 << 20
)

// Options holds optional client settings.
type Options struct {
	// HTTPClient is used for the code exchange and as the base transport for signed requests.
	HTTPClient *http.Client

	// RequestTimeout is the timeout for API calls (default: 30s).
	RequestTimeout time.Duration
}

// Client is a configured remote app for one provider.
type Client struct {
	name           string
	config         *oauth2.Config
	baseURL        string
	authParams     []oauth2.AuthCodeOption
	httpClient     *http.Client
	requestTimeout time.Duration
}

// New builds a remote client from cfg. The configuration is validated first;
// no network call is made.
func New(name string, cfg providers.ProviderConfig, opts *Options) (*Client, error) {
	if name == "" {
		return nil, fmt.Errorf("provider name is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base_url %q: scheme must be http or https", cfg.BaseURL)
	}

	if opts == nil {
		opts = &Options{}
	}

	requestTimeout := opts.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = DefaultRequestTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: requestTimeout,
		}
	}

	var authParams []oauth2.AuthCodeOption
	for key, value := range cfg.RequestTokenParams {
		if key == "scope" {
			continue
		}
		authParams = append(authParams, oauth2.SetAuthURLParam(key, value))
	}

	return &Client{
		name: name,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes(),
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthorizeURL,
				TokenURL: cfg.AccessTokenURL,
			},
		},
		baseURL:        util.NormalizeURL(cfg.BaseURL),
		authParams:     authParams,
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// AuthorizationURL returns the URL to redirect the user to.
// codeChallenge and codeChallengeMethod enable PKCE when both are set.
func (c *Client) AuthorizationURL(state, codeChallenge, codeChallengeMethod string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(c.authParams)+2)
	opts = append(opts, c.authParams...)
	if codeChallenge != "" && codeChallengeMethod != "" {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", codeChallenge),
			oauth2.SetAuthURLParam("code_challenge_method", codeChallengeMethod),
		)
	}
	return c.config.AuthCodeURL(state, opts...)
}

// ExchangeCode exchanges an authorization code for a token.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	return providers.ExchangeCode(ctx, c.config, c.httpClient, code, verifier)
}

// Get issues a signed GET request.
func (c *Client) Get(ctx context.Context, path string) (*providers.Response, error) {
	return c.do(ctx, http.MethodGet, path, "")
}

// Post issues a signed POST request with an empty body.
func (c *Client) Post(ctx context.Context, path, contentType string) (*providers.Response, error) {
	return c.do(ctx, http.MethodPost, path, contentType)
}

// URL returns the absolute URL for path.
func (c *Client) URL(path string) string {
	return util.JoinURL(c.baseURL, path)
}

// ensureContextTimeout adds the request timeout when ctx has no deadline.
func (c *Client) ensureContextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}

func (c *Client) do(ctx context.Context, method, path, contentType string) (*providers.Response, error) {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return nil, providers.ErrNoToken
	}

	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	var body io.Reader
	if method == http.MethodPost {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// The oauth2 transport signs the request and refreshes the token when it can.
	// A refreshed token is written back to the context's holder.
	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	source := c.config.TokenSource(exchangeCtx, token)
	client := oauth2.NewClient(exchangeCtx, source)

	resp, err := client.Do(req)
	if current, tokenErr := source.Token(); tokenErr == nil {
		if holder := holderFromContext(ctx); holder != nil {
			holder.update(current)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &providers.Response{
		Status: resp.StatusCode,
		Data:   data,
	}, nil
}
