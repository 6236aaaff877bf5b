package instrumentation

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	// DefaultServiceName is used when Config.ServiceName is empty
	DefaultServiceName = "oauthapp"

	// DefaultServiceVersion is the default service version used when none is provided
	DefaultServiceVersion = "unknown"

	// scopePrefix is prepended to every meter and tracer name
	scopePrefix = "github.com/giantswarm/oauthapp/"
)

// Config holds instrumentation configuration
type Config struct {
	// ServiceName is the name of the service (default: "oauthapp")
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Enabled controls whether instrumentation is active.
	// When false, no-op providers are used.
	Enabled bool

	// Resource allows custom resource attributes.
	// If nil, a resource with service name and version is created.
	Resource *resource.Resource

	// TracerProvider overrides the SDK tracer provider created when Enabled is true.
	TracerProvider trace.TracerProvider

	// MeterProvider overrides the meter provider. Without it metrics are no-ops,
	// exporters are wired by the embedding application.
	MeterProvider metric.MeterProvider

	// SpanProcessors are registered on the SDK tracer provider.
	// Ignored when TracerProvider is set.
	SpanProcessors []sdktrace.SpanProcessor
}

// Instrumentation provides OpenTelemetry instrumentation components
type Instrumentation struct {
	config   Config
	resource *resource.Resource

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider

	metrics *Metrics

	// Shutdown functions are registered during New() only.
	shutdownFuncs []func(context.Context) error
	shutdownOnce  sync.Once
}

// New creates a new instrumentation instance
func New(config Config) (*Instrumentation, error) {
	if config.ServiceName == "" {
		config.ServiceName = DefaultServiceName
	}
	if config.ServiceVersion == "" {
		config.ServiceVersion = DefaultServiceVersion
	}

	res := config.Resource
	if res == nil {
		var err error
		res, err = resource.New(
			context.Background(),
			resource.WithAttributes(
				semconv.ServiceName(config.ServiceName),
				semconv.ServiceVersion(config.ServiceVersion),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create resource: %w", err)
		}
	}

	inst := &Instrumentation{
		config:   config,
		resource: res,
	}

	if config.Enabled {
		inst.initializeProviders()
	} else {
		inst.meterProvider = noop.NewMeterProvider()
		inst.tracerProvider = tracenoop.NewTracerProvider()
	}

	var err error
	inst.metrics, err = newMetrics(inst)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	return inst, nil
}

// NewNoop returns instrumentation that records nothing. It never fails.
func NewNoop() *Instrumentation {
	inst, err := New(Config{Enabled: false})
	if err != nil {
		// no-op providers and an attribute-only resource cannot fail
		panic(fmt.Sprintf("noop instrumentation: %v", err))
	}
	return inst
}

func (i *Instrumentation) initializeProviders() {
	if i.config.TracerProvider != nil {
		i.tracerProvider = i.config.TracerProvider
	} else {
		opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(i.resource)}
		for _, sp := range i.config.SpanProcessors {
			opts = append(opts, sdktrace.WithSpanProcessor(sp))
		}
		tp := sdktrace.NewTracerProvider(opts...)
		i.tracerProvider = tp
		i.shutdownFuncs = append(i.shutdownFuncs, tp.Shutdown)
	}

	if i.config.MeterProvider != nil {
		i.meterProvider = i.config.MeterProvider
	} else {
		i.meterProvider = noop.NewMeterProvider()
	}
}

// Shutdown flushes and stops the providers created by New.
func (i *Instrumentation) Shutdown(ctx context.Context) error {
	var shutdownErr error

	i.shutdownOnce.Do(func() {
		for _, fn := range i.shutdownFuncs {
			if err := fn(ctx); err != nil && shutdownErr == nil {
				shutdownErr = err
			}
		}
	})

	return shutdownErr
}

// Meter returns a named meter for the given scope ("app", "provider", "http", ...)
func (i *Instrumentation) Meter(scope string) metric.Meter {
	return i.meterProvider.Meter(scopePrefix + scope)
}

// Tracer returns a named tracer for the given scope
func (i *Instrumentation) Tracer(scope string) trace.Tracer {
	return i.tracerProvider.Tracer(scopePrefix + scope)
}

// Metrics returns the metrics holder for recording metric values
func (i *Instrumentation) Metrics() *Metrics {
	return i.metrics
}

// TracerProvider returns the underlying tracer provider
func (i *Instrumentation) TracerProvider() trace.TracerProvider {
	return i.tracerProvider
}

// MeterProvider returns the underlying meter provider
func (i *Instrumentation) MeterProvider() metric.MeterProvider {
	return i.meterProvider
}
