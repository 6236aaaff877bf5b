package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingInstrumentation(t *testing.T) (*Instrumentation, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	inst, err := New(Config{
		Enabled:        true,
		SpanProcessors: []sdktrace.SpanProcessor{recorder},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })
	return inst, recorder
}

func attrValue(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRecordError(t *testing.T) {
	inst, recorder := newRecordingInstrumentation(t)

	_, span := inst.Tracer("app").Start(context.Background(), "test-span")
	RecordError(span, errors.New("test error"))
	span.End()

	ended := recorder.Ended()[0]
	if ended.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", ended.Status().Code)
	}
	if ended.Status().Description != "test error" {
		t.Errorf("description = %q, want %q", ended.Status().Description, "test error")
	}
	if len(ended.Events()) != 1 {
		t.Errorf("events = %d, want 1 exception event", len(ended.Events()))
	}
}

func TestSetSpanSuccess(t *testing.T) {
	inst, recorder := newRecordingInstrumentation(t)

	_, span := inst.Tracer("app").Start(context.Background(), "test-span")
	SetSpanSuccess(span)
	span.End()

	if got := recorder.Ended()[0].Status().Code; got != codes.Ok {
		t.Errorf("status = %v, want Ok", got)
	}
}

func TestAddRepositoryAttributes(t *testing.T) {
	inst, recorder := newRecordingInstrumentation(t)

	_, span := inst.Tracer("app").Start(context.Background(), "create_fork")
	AddProviderAttributes(span, "github", "create_fork")
	AddRepositoryAttributes(span, "octocat", "Hello-World")
	span.End()

	ended := recorder.Ended()[0]
	tests := map[string]string{
		AttrProviderName:      "github",
		AttrProviderOperation: "create_fork",
		AttrRepoOwner:         "octocat",
		AttrRepoName:          "Hello-World",
	}
	for key, want := range tests {
		got, ok := attrValue(ended, key)
		if !ok {
			t.Errorf("attribute %q missing", key)
			continue
		}
		if got.AsString() != want {
			t.Errorf("attribute %q = %q, want %q", key, got.AsString(), want)
		}
	}
}

func TestAddRepositoryAttributes_SkipsEmpty(t *testing.T) {
	inst, recorder := newRecordingInstrumentation(t)

	_, span := inst.Tracer("app").Start(context.Background(), "create_fork")
	AddRepositoryAttributes(span, "", "")
	span.End()

	if n := len(recorder.Ended()[0].Attributes()); n != 0 {
		t.Errorf("got %d attributes, want 0", n)
	}
}

func TestAddHTTPAttributes(t *testing.T) {
	inst, recorder := newRecordingInstrumentation(t)

	_, span := inst.Tracer("provider").Start(context.Background(), "GET /user")
	AddHTTPAttributes(span, "GET", "/user", 200)
	span.End()

	got, ok := attrValue(recorder.Ended()[0], AttrHTTPStatusCode)
	if !ok || got.AsInt64() != 200 {
		t.Errorf("status attribute = %v (present %v), want 200", got.AsInt64(), ok)
	}
}

func TestNilSafeHelpers_WithNilSpans(t *testing.T) {
	// Should not panic
	RecordError(nil, errors.New("boom"))
	SetSpanSuccess(nil)
	SetSpanAttributes(nil, attribute.String("k", "v"))
	AddProviderAttributes(nil, "github", "verify_login")
	AddRepositoryAttributes(nil, "octocat", "Hello-World")
	AddHTTPAttributes(nil, "GET", "/user", 200)
}
