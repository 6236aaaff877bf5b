package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments
type Metrics struct {
	// Provider Metrics
	ProviderAPICallsTotal metric.Int64Counter
	ProviderAPIDuration   metric.Float64Histogram
	ProviderAPIErrors     metric.Int64Counter

	// App Metrics
	LoginsVerified  metric.Int64Counter
	ForksRequested  metric.Int64Counter
	ValidationFails metric.Int64Counter

	// Audit Metrics
	AuditEventsTotal metric.Int64Counter
}

// newMetrics creates and registers all metric instruments
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}
	providerMeter := inst.Meter("provider")
	appMeter := inst.Meter("app")
	securityMeter := inst.Meter("security")

	var err error
	m.ProviderAPICallsTotal, err = providerMeter.Int64Counter(
		"provider.api.calls.total",
		metric.WithDescription("Total number of provider API calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.calls.total counter: %w", err)
	}

	m.ProviderAPIDuration, err = providerMeter.Float64Histogram(
		"provider.api.duration",
		metric.WithDescription("Provider API call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.duration histogram: %w", err)
	}

	m.ProviderAPIErrors, err = providerMeter.Int64Counter(
		"provider.api.errors.total",
		metric.WithDescription("Total number of provider API errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.errors.total counter: %w", err)
	}

	m.LoginsVerified, err = appMeter.Int64Counter(
		"oauthapp.login.verified",
		metric.WithDescription("Number of login verifications"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login.verified counter: %w", err)
	}

	m.ForksRequested, err = appMeter.Int64Counter(
		"oauthapp.fork.requested",
		metric.WithDescription("Number of fork creation requests"),
		metric.WithUnit("{fork}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fork.requested counter: %w", err)
	}

	m.ValidationFails, err = appMeter.Int64Counter(
		"oauthapp.validation.failed",
		metric.WithDescription("Number of rejected repository/owner names"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create validation.failed counter: %w", err)
	}

	m.AuditEventsTotal, err = securityMeter.Int64Counter(
		"oauthapp.audit.events.total",
		metric.WithDescription("Total number of audit events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit.events.total counter: %w", err)
	}

	return m, nil
}

// RecordProviderAPICall records a provider API call
func (m *Metrics) RecordProviderAPICall(ctx context.Context, provider, operation string, statusCode int, durationMs float64, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.Int("status", statusCode),
	}

	m.ProviderAPICallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ProviderAPIDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
	))

	if err != nil {
		errorType := "transport"
		if statusCode >= 400 && statusCode < 500 {
			errorType = "client_error"
		} else if statusCode >= 500 {
			errorType = "server_error"
		}

		m.ProviderAPIErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("operation", operation),
			attribute.String("error_type", errorType),
		))
	}
}

// RecordLoginVerified records a login verification outcome
func (m *Metrics) RecordLoginVerified(ctx context.Context, provider string, success bool) {
	m.LoginsVerified.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Bool("success", success),
	))
}

// RecordForkRequested records a fork creation outcome
func (m *Metrics) RecordForkRequested(ctx context.Context, provider string, success bool) {
	m.ForksRequested.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Bool("success", success),
	))
}

// RecordValidationFailed records a rejected fork request
func (m *Metrics) RecordValidationFailed(ctx context.Context, provider, reason string) {
	m.ValidationFails.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("reason", reason),
	))
}

// RecordAuditEvent records an audit event
func (m *Metrics) RecordAuditEvent(ctx context.Context, eventType string) {
	m.AuditEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}
