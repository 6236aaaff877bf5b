package testutil

import (
	"log/slog"
	"net/http"
	"testing"
)

func TestLogRecorder(t *testing.T) {
	rec, logger := NewLogRecorder()

	logger.With("provider", "github").Error("boom", "status", 502)
	logger.Info("fine")

	records := rec.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Attrs["provider"] != "github" {
		t.Errorf("expected inherited provider attr, got %v", records[0].Attrs["provider"])
	}
	if got := rec.Count(slog.LevelError); got != 1 {
		t.Errorf("Count(Error) = %d, want 1", got)
	}
}

func TestTestProviderConfig(t *testing.T) {
	cfg := TestProviderConfig("http://127.0.0.1:1234")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if cfg.AccessTokenMethod != http.MethodPost {
		t.Errorf("AccessTokenMethod = %q", cfg.AccessTokenMethod)
	}
}

func TestGenerateRandomString(t *testing.T) {
	a, b := GenerateRandomString(16), GenerateRandomString(16)
	if len(a) != 16 {
		t.Errorf("len = %d, want 16", len(a))
	}
	if a == b {
		t.Error("expected distinct values")
	}
}
