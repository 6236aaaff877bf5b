package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/giantswarm/oauthapp/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestConfigValidate(t *testing.T) {
	path := writeConfig(t, `
server:
  base_url: https://oauth.example.com
providers:
  github:
    client_id: abc
    client_secret: def
`)

	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs([]string{"config", "validate", "--config", path, "--env-file", filepath.Join(t.TempDir(), "missing.env")})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "configuration ok: providers github") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestConfigValidate_MissingCredentials(t *testing.T) {
	path := writeConfig(t, `
providers:
  github:
    client_id: abc
`)

	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "validate", "--config", path, "--env-file", filepath.Join(t.TempDir(), "missing.env")})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected an error for a provider without client_secret")
	}
	if !strings.Contains(err.Error(), "client_secret") {
		t.Errorf("error %q should name client_secret", err)
	}
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs([]string{"--version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("output %q should contain version %q", out.String(), version)
	}
}

func TestNewInstrumentation_RegistersGlobals(t *testing.T) {
	t.Cleanup(func() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
	})

	inst, err := newInstrumentation(context.Background(), config.InstrumentationConfig{
		Enabled:     true,
		ServiceName: "oauthapp-test",
	})
	if err != nil {
		t.Fatalf("newInstrumentation() error = %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })

	if otel.GetTracerProvider() != inst.TracerProvider() {
		t.Error("the tracer provider should be registered globally")
	}
	if fields := otel.GetTextMapPropagator().Fields(); !slices.Contains(fields, "traceparent") {
		t.Errorf("propagator fields = %v, want traceparent", fields)
	}
}
