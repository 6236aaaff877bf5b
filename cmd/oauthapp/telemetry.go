package main

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/giantswarm/oauthapp/config"
	"github.com/giantswarm/oauthapp/instrumentation"
)

// newInstrumentation sets up tracing and registers it globally. With an OTLP
// endpoint spans are batched to it; otherwise they stay in process.
func newInstrumentation(ctx context.Context, cfg config.InstrumentationConfig) (*instrumentation.Instrumentation, error) {
	instCfg := instrumentation.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Enabled:        cfg.Enabled,
	}

	if cfg.Enabled && cfg.OTLPEndpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		instCfg.SpanProcessors = append(instCfg.SpanProcessors, sdktrace.NewBatchSpanProcessor(exporter))
	}

	inst, err := instrumentation.New(instCfg)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(inst.TracerProvider())
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return inst, nil
}
