package oauthapp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/giantswarm/oauthapp/instrumentation"
	"github.com/giantswarm/oauthapp/providers"
	"github.com/giantswarm/oauthapp/security"
)

// Option configures an App.
type Option func(*options)

type options struct {
	logger          *slog.Logger
	instrumentation *instrumentation.Instrumentation
	client          providers.RemoteClient
	httpClient      *http.Client
	requestTimeout  time.Duration
	auditor         *security.Auditor
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.instrumentation == nil {
		o.instrumentation = instrumentation.NewNoop()
	}
	return o
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithInstrumentation sets the tracer and meter source. Defaults to no-op.
func WithInstrumentation(inst *instrumentation.Instrumentation) Option {
	return func(o *options) {
		o.instrumentation = inst
	}
}

// WithRemoteClient replaces the signed HTTP client. Used by tests and by callers
// that sign requests themselves.
func WithRemoteClient(client providers.RemoteClient) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHTTPClient sets the http.Client used by the default remote client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithRequestTimeout bounds provider calls whose context has no deadline.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.requestTimeout = timeout
	}
}

// WithAuditor enables security audit events for fork outcomes.
func WithAuditor(auditor *security.Auditor) Option {
	return func(o *options) {
		o.auditor = auditor
	}
}
