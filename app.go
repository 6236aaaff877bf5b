package oauthapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/giantswarm/oauthapp/instrumentation"
	"github.com/giantswarm/oauthapp/providers"
	"github.com/giantswarm/oauthapp/providers/remote"
	"github.com/giantswarm/oauthapp/security"
)

// ContentTypeJSON is the content type sent with fork requests.
const ContentTypeJSON = "application/json"

// Authorizer is implemented by remote clients that also drive the authorization
// code handshake. remote.Client implements it.
type Authorizer interface {
	AuthorizationURL(state, codeChallenge, codeChallengeMethod string) string
	ExchangeCode(ctx context.Context, code, verifier string) (*oauth2.Token, error)
}

// App is the remote OAuth app for one provider. It holds only immutable state and
// is safe for concurrent use as long as its RemoteClient is.
type App struct {
	name            string
	config          providers.ProviderConfig
	client          providers.RemoteClient
	logger          *slog.Logger
	instrumentation *instrumentation.Instrumentation
	tracer          trace.Tracer
	auditor         *security.Auditor
}

// NewApp builds the remote app for provider name from cfg.
//
// The configuration is validated before anything else, so missing fields fail with a
// *ConstructionError without any network call. Failures are logged before returning.
func NewApp(name string, cfg providers.ProviderConfig, opts ...Option) (*App, error) {
	o := newOptions(opts)

	app := &App{
		name:            name,
		config:          cfg,
		logger:          o.logger.With("provider", name),
		instrumentation: o.instrumentation,
		tracer:          o.instrumentation.Tracer("app"),
		auditor:         o.auditor,
	}

	if err := cfg.Validate(); err != nil {
		return nil, app.constructionFailed(err)
	}

	client := o.client
	if client == nil {
		rc, err := remote.New(name, cfg, &remote.Options{
			HTTPClient:     o.httpClient,
			RequestTimeout: o.requestTimeout,
		})
		if err != nil {
			return nil, app.constructionFailed(err)
		}
		client = rc
	}
	app.client = client

	app.logger.Debug("OAuth app created",
		"base_url", cfg.BaseURL,
		"capabilities", cfg.Capabilities)

	return app, nil
}

func (a *App) constructionFailed(err error) error {
	a.logger.Error("create_oauth_app: exception creating the OAuth app", "error", err)
	return &ConstructionError{Provider: a.name, Err: err}
}

// Name returns the provider name.
func (a *App) Name() string {
	return a.name
}

// Config returns a copy of the provider configuration.
func (a *App) Config() providers.ProviderConfig {
	return a.config
}

// Client returns the underlying remote client.
func (a *App) Client() providers.RemoteClient {
	return a.client
}

// AuthorizationURL returns the provider URL the user is redirected to for login.
func (a *App) AuthorizationURL(state, codeChallenge, codeChallengeMethod string) (string, error) {
	authz, ok := a.client.(Authorizer)
	if !ok {
		return "", &OperationError{Provider: a.name, Op: OpAuthorize, Err: ErrCapabilityNotSupported}
	}
	return authz.AuthorizationURL(state, codeChallenge, codeChallengeMethod), nil
}

// ExchangeCode completes the handshake. The exchange itself is done by the oauth2 library.
func (a *App) ExchangeCode(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	authz, ok := a.client.(Authorizer)
	if !ok {
		return nil, a.fail(ctx, nil, &OperationError{Provider: a.name, Op: OpExchangeCode, Err: ErrCapabilityNotSupported})
	}

	ctx, span := a.tracer.Start(ctx, OpExchangeCode)
	defer span.End()
	instrumentation.AddProviderAttributes(span, a.name, OpExchangeCode)

	token, err := authz.ExchangeCode(ctx, code, verifier)
	if err != nil {
		status := 0
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return nil, a.fail(ctx, span, &HTTPError{Provider: a.name, Op: OpExchangeCode, Status: status, Err: err})
	}

	instrumentation.SetSpanSuccess(span)
	return token, nil
}

// VerifyLogin fetches the authenticated user from the provider's user endpoint.
//
// A 200 response yields the user's id and login. Transport failures and any other
// status are returned as *HTTPError; an undecodable body or a missing token as
// *OperationError. Each failure is logged once.
func (a *App) VerifyLogin(ctx context.Context) (*LoginResult, error) {
	if !a.config.Has(providers.CapabilityLogin) {
		return nil, a.fail(ctx, nil, &OperationError{Provider: a.name, Op: OpVerifyLogin, Err: ErrCapabilityNotSupported})
	}

	ctx, span := a.tracer.Start(ctx, OpVerifyLogin)
	defer span.End()
	instrumentation.AddProviderAttributes(span, a.name, OpVerifyLogin)

	resp, err := a.call(ctx, OpVerifyLogin, func(ctx context.Context) (*providers.Response, error) {
		return a.client.Get(ctx, a.config.UserEndpoint())
	})
	if err != nil {
		a.instrumentation.Metrics().RecordLoginVerified(ctx, a.name, false)
		return nil, a.fail(ctx, span, a.classify(OpVerifyLogin, err))
	}

	if resp.Status != http.StatusOK {
		a.instrumentation.Metrics().RecordLoginVerified(ctx, a.name, false)
		return nil, a.fail(ctx, span, &HTTPError{Provider: a.name, Op: OpVerifyLogin, Status: resp.Status})
	}

	user, err := providers.DecodeUser(resp)
	if err != nil {
		a.instrumentation.Metrics().RecordLoginVerified(ctx, a.name, false)
		return nil, a.fail(ctx, span, &OperationError{Provider: a.name, Op: OpVerifyLogin, Err: err})
	}

	a.logger.InfoContext(ctx, "handleoauthlogin: logged in",
		"id", user.ID,
		"login", user.Login)
	instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrUserLogin, user.Login))
	instrumentation.SetSpanSuccess(span)
	a.instrumentation.Metrics().RecordLoginVerified(ctx, a.name, true)

	return &LoginResult{
		Status: resp.Status,
		ID:     user.ID,
		Login:  user.Login,
	}, nil
}

// CreateFork asks the provider to fork owner/repo into the authenticated user's namespace.
//
// Empty owner or repo fail with *ValidationError before any request is sent.
// Only 202 Accepted counts as success. Every other status is reported as a
// *ValidationError ("check repository name or owner name") with Status set, even
// when the provider failed for an unrelated reason.
func (a *App) CreateFork(ctx context.Context, owner, repo string) (*ForkResult, error) {
	ctx, span := a.tracer.Start(ctx, OpCreateFork)
	defer span.End()
	instrumentation.AddProviderAttributes(span, a.name, OpCreateFork)
	instrumentation.AddRepositoryAttributes(span, owner, repo)

	if owner == "" || repo == "" {
		a.instrumentation.Metrics().RecordValidationFailed(ctx, a.name, "missing_name")
		return nil, a.fail(ctx, span, &ValidationError{
			Provider: a.name,
			Op:       OpCreateFork,
			Message:  fmt.Sprintf("missing repository name %q or owner name %q", repo, owner),
		})
	}

	if !a.config.Has(providers.CapabilityFork) {
		return nil, a.fail(ctx, span, &OperationError{Provider: a.name, Op: OpCreateFork, Err: ErrCapabilityNotSupported})
	}

	a.logger.InfoContext(ctx, "create fork", "repo_owner", owner, "repo_name", repo)

	resp, err := a.call(ctx, OpCreateFork, func(ctx context.Context) (*providers.Response, error) {
		return a.client.Post(ctx, a.config.ForkEndpoint(owner, repo), ContentTypeJSON)
	})
	if err != nil {
		a.instrumentation.Metrics().RecordForkRequested(ctx, a.name, false)
		return nil, a.fail(ctx, span, a.classify(OpCreateFork, err))
	}

	if resp.Status != http.StatusAccepted {
		a.instrumentation.Metrics().RecordForkRequested(ctx, a.name, false)
		a.instrumentation.Metrics().RecordValidationFailed(ctx, a.name, "rejected")
		a.auditor.LogForkRejected(a.name, owner, repo, resp.Status)
		return nil, a.fail(ctx, span, &ValidationError{
			Provider: a.name,
			Op:       OpCreateFork,
			Message:  "check repository name or owner name",
			Status:   resp.Status,
		})
	}

	result := &ForkResult{Status: resp.Status}
	fork, err := providers.DecodeFork(resp)
	if err != nil {
		// 202 means the fork is queued; a missing body does not undo that.
		a.logger.WarnContext(ctx, "create_fork: accepted without a readable body", "error", err)
	} else {
		result.FullName = fork.FullName
	}

	a.logger.InfoContext(ctx, "create_fork data",
		"full_name", result.FullName,
		"status", resp.Status)
	instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrForkName, result.FullName))
	instrumentation.SetSpanSuccess(span)
	a.instrumentation.Metrics().RecordForkRequested(ctx, a.name, true)
	a.auditor.LogForkCreated(a.name, result.FullName, "")

	return result, nil
}

// Fork is CreateFork for a request parsed from query or form values.
func (a *App) Fork(ctx context.Context, req ForkRequest) (*ForkResult, error) {
	return a.CreateFork(ctx, req.RepoOwner, req.RepoName)
}

// call runs one provider request and records its metrics.
func (a *App) call(ctx context.Context, op string, fn func(context.Context) (*providers.Response, error)) (*providers.Response, error) {
	start := time.Now()
	resp, err := fn(ctx)
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	status := 0
	if resp != nil {
		status = resp.Status
	}
	if err == nil && resp == nil {
		err = fmt.Errorf("remote client returned no response")
	}
	a.instrumentation.Metrics().RecordProviderAPICall(ctx, a.name, op, status, durationMs, err)

	return resp, err
}

// classify turns a RemoteClient error into the error taxonomy.
func (a *App) classify(op string, err error) error {
	if errors.Is(err, providers.ErrNoToken) {
		return &OperationError{Provider: a.name, Op: op, Err: err}
	}
	return &HTTPError{Provider: a.name, Op: op, Err: err}
}

// fail logs err once with the operation context, marks the span and returns err unchanged.
func (a *App) fail(ctx context.Context, span trace.Span, err error) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		a.logger.WarnContext(ctx, "handleoauthlogin: request rejected",
			"op", validationErr.Op,
			"status", validationErr.Status,
			"error", err)
	} else {
		a.logger.ErrorContext(ctx, "handleoauthlogin: provider request failed",
			"error", err)
	}

	instrumentation.RecordError(span, err)
	return err
}
