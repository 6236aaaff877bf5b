package instrumentation

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
//
// SECURITY WARNING: never put access tokens, authorization codes or client secrets
// into span attributes. Only metadata such as provider names and status codes.
const (
	// Provider attributes
	AttrProviderName      = "provider.name"
	AttrProviderOperation = "provider.operation"
	AttrProviderStatus    = "provider.status"
	AttrProviderErrorType = "provider.error_type"

	// App attributes
	AttrUserLogin = "oauthapp.user.login"
	AttrRepoOwner = "oauthapp.repo.owner"
	AttrRepoName  = "oauthapp.repo.name"
	AttrForkName  = "oauthapp.fork.full_name"

	// HTTP attributes (in addition to standard semantic conventions)
	AttrHTTPEndpoint   = "http.endpoint"
	AttrHTTPMethod     = "http.method"
	AttrHTTPStatusCode = "http.status_code"
)

// RecordError records an error on a span with proper status codes (nil-safe)
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe)
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe)
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddProviderAttributes adds provider attributes to a span (nil-safe)
func AddProviderAttributes(span trace.Span, providerName, operation string) {
	SetSpanAttributes(span,
		attribute.String(AttrProviderName, providerName),
		attribute.String(AttrProviderOperation, operation),
	)
}

// AddRepositoryAttributes adds the fork target to a span (nil-safe)
func AddRepositoryAttributes(span trace.Span, owner, repo string) {
	if owner != "" {
		SetSpanAttributes(span, attribute.String(AttrRepoOwner, owner))
	}
	if repo != "" {
		SetSpanAttributes(span, attribute.String(AttrRepoName, repo))
	}
}

// AddHTTPAttributes adds HTTP request attributes to a span (nil-safe)
func AddHTTPAttributes(span trace.Span, method, endpoint string, statusCode int) {
	SetSpanAttributes(span,
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPEndpoint, endpoint),
		attribute.Int(AttrHTTPStatusCode, statusCode),
	)
}
