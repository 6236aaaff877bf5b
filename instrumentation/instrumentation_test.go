package instrumentation

import (
	"context"
	"fmt"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "disabled",
			config: Config{
				Enabled: false,
			},
		},
		{
			name: "with service name and version",
			config: Config{
				Enabled:        true,
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
			},
		},
		{
			name: "empty service name gets default",
			config: Config{
				Enabled: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}

			if inst.Meter("provider") == nil {
				t.Error("Meter('provider') returned nil")
			}
			if inst.Tracer("app") == nil {
				t.Error("Tracer('app') returned nil")
			}
			if inst.Metrics() == nil {
				t.Error("Metrics() returned nil")
			}
			if inst.TracerProvider() == nil {
				t.Error("TracerProvider() returned nil")
			}
			if inst.MeterProvider() == nil {
				t.Error("MeterProvider() returned nil")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := inst.Shutdown(ctx); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
			// Shutdown is idempotent
			if err := inst.Shutdown(ctx); err != nil {
				t.Errorf("Second Shutdown() error = %v", err)
			}
		})
	}
}

func TestNewNoop(t *testing.T) {
	inst := NewNoop()
	ctx := context.Background()

	inst.Metrics().RecordLoginVerified(ctx, "github", true)
	inst.Metrics().RecordForkRequested(ctx, "github", false)
	inst.Metrics().RecordProviderAPICall(ctx, "github", "create_fork", 404, 1.5, fmt.Errorf("not found"))

	_, span := inst.Tracer("app").Start(ctx, "test-span")
	if span.SpanContext().IsValid() {
		t.Error("noop tracer produced a valid span context")
	}
	span.End()
}

func TestInstrumentation_SpanProcessors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	inst, err := New(Config{
		Enabled:        true,
		SpanProcessors: []sdktrace.SpanProcessor{recorder},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	_, span := inst.Tracer("app").Start(context.Background(), "verify_login")
	AddProviderAttributes(span, "github", "verify_login")
	SetSpanSuccess(span)
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(ended))
	}
	if got := ended[0].Name(); got != "verify_login" {
		t.Errorf("span name = %q, want %q", got, "verify_login")
	}
	if got := ended[0].InstrumentationScope().Name; got != scopePrefix+"app" {
		t.Errorf("scope = %q, want %q", got, scopePrefix+"app")
	}
}

func TestInstrumentation_CustomTracerProvider(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	inst, err := New(Config{
		Enabled:        true,
		TracerProvider: tp,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if inst.TracerProvider() != tp {
		t.Error("TracerProvider() did not return the configured provider")
	}
	if len(inst.shutdownFuncs) != 0 {
		t.Error("a caller-owned tracer provider must not be shut down by Shutdown()")
	}
}

func TestInstrumentation_ConcurrentAccess(t *testing.T) {
	inst, err := New(Config{
		Enabled:        true,
		ServiceName:    "concurrent-test",
		ServiceVersion: "1.0.0",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	done := make(chan bool)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				provider := fmt.Sprintf("provider-%d", id)
				inst.Metrics().RecordLoginVerified(ctx, provider, true)
				inst.Metrics().RecordProviderAPICall(ctx, provider, "verify_login", 200, 3.2, nil)

				_, span := inst.Tracer("app").Start(ctx, "concurrent-span")
				span.End()
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestConfig_Defaults(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if err := inst.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	}()

	if inst.config.ServiceName != DefaultServiceName {
		t.Errorf("Default ServiceName = %q, want %q", inst.config.ServiceName, DefaultServiceName)
	}
	if inst.config.ServiceVersion != "unknown" {
		t.Errorf("Default ServiceVersion = %q, want %q", inst.config.ServiceVersion, "unknown")
	}
}

func BenchmarkTracing_SpanCreation_NoOp(b *testing.B) {
	inst := NewNoop()
	ctx := context.Background()
	tracer := inst.Tracer("app")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, span := tracer.Start(ctx, "test-operation")
		span.End()
	}
}
