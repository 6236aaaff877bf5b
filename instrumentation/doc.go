// Package instrumentation provides OpenTelemetry instrumentation for the OAuth remote app.
//
// Every provider API call made by oauthapp.App runs inside a span named after the
// operation ("verify_login", "create_fork") and is counted in the provider metrics.
//
// # Quick Start
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		ServiceName:    "oauthapp",
//		ServiceVersion: "1.0.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inst.Shutdown(context.Background())
//
//	registry := oauthapp.NewRegistry(logger, oauthapp.WithInstrumentation(inst))
//
// When Enabled is true an SDK tracer provider is created; add exporters through
// Config.SpanProcessors. Metrics stay no-op unless Config.MeterProvider is set.
//
// # Available Metrics
//
// Provider:
//   - provider.api.calls.total{provider, operation, status}
//   - provider.api.duration{provider, operation} - milliseconds
//   - provider.api.errors.total{provider, operation, error_type}
//
// App:
//   - oauthapp.login.verified{provider, success}
//   - oauthapp.fork.requested{provider, success}
//   - oauthapp.validation.failed{provider, reason}
//
// Security:
//   - oauthapp.audit.events.total{event_type}
//
// # Privacy
//
// Attributes never carry tokens or secrets. Repository owner and name are recorded
// because they are public identifiers.
package instrumentation
