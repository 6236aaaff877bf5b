package config_test

import (
	"bytes"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/oauthapp/config"
	"github.com/giantswarm/oauthapp/providers"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

const sampleYAML = `
server:
  addr: ":9090"
  base_url: "https://app.example.com"
  session_ttl: 1h
log:
  level: debug
  format: text
providers:
  github:
    client_id: from-file
    client_secret: file-secret
  enterprise:
    kind: github
    client_id: ent-id
    client_secret: ent-secret
    base_url: https://ghe.example.com/api/v3/
    authorize_url: https://ghe.example.com/login/oauth/authorize
    access_token_url: https://ghe.example.com/login/oauth/access_token
    capabilities: [login]
`

func TestLoad_File(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "config.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.SessionTTL != time.Hour {
		t.Errorf("Server.SessionTTL = %v", cfg.Server.SessionTTL)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("unset RequestTimeout should keep its default, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Log.Level.ToSlog() != slog.LevelDebug {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if names := cfg.ProviderNames(); !slices.Equal(names, []string{"enterprise", "github"}) {
		t.Errorf("ProviderNames() = %v", names)
	}

	gh := cfg.Providers["github"]
	tests := []struct {
		field string
		got   string
		want  string
	}{
		{"client_id", gh.ClientID, "from-file"},
		{"base_url", gh.BaseURL, "https://api.github.com/"},
		{"authorize_url", gh.AuthorizeURL, "https://github.com/login/oauth/authorize"},
		{"scope", gh.RequestTokenParams["scope"], "public_repo"},
		{"redirect_url", gh.RedirectURL, "https://app.example.com/callback/github"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("github %s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
	if !gh.Has(providers.CapabilityFork) {
		t.Error("github should support forks")
	}

	ent := cfg.Providers["enterprise"]
	if ent.BaseURL != "https://ghe.example.com/api/v3/" {
		t.Errorf("enterprise base_url = %q", ent.BaseURL)
	}
	if !slices.Equal(ent.Capabilities, []providers.Capability{providers.CapabilityLogin}) {
		t.Errorf("enterprise capabilities = %v", ent.Capabilities)
	}
	if ent.Has(providers.CapabilityFork) {
		t.Error("enterprise lists login only and must not fork")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_ProviderWithoutCapabilitiesForks(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "config.yaml", `
providers:
  gitea:
    client_id: id
    client_secret: secret
    base_url: https://gitea.example.com/api/v1/
    authorize_url: https://gitea.example.com/login/oauth/authorize
    access_token_url: https://gitea.example.com/login/oauth/access_token
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	gitea := cfg.Providers["gitea"]
	if !gitea.Has(providers.CapabilityLogin) || !gitea.Has(providers.CapabilityFork) {
		t.Errorf("provider without a capability list should support everything, got %v", gitea.Capabilities)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("OAUTHAPP_PROVIDERS_GITHUB_CLIENT_SECRET", "env-secret")
	t.Setenv("OAUTHAPP_SERVER_ADDR", ":7070")

	cfg, err := config.Load(writeFile(t, "config.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q, want the environment value", cfg.Server.Addr)
	}
	if got := cfg.Providers["github"].ClientSecret; got != "env-secret" {
		t.Errorf("ClientSecret = %q, want the environment value", got)
	}
	if got := cfg.Providers["github"].ClientID; got != "from-file" {
		t.Errorf("ClientID = %q, want the file value", got)
	}
}

func TestLoad_EnvironmentOnly(t *testing.T) {
	t.Setenv("OAUTHAPP_PROVIDERS_GITHUB_CLIENT_ID", "env-id")
	t.Setenv("OAUTHAPP_PROVIDERS_GITHUB_CLIENT_SECRET", "env-secret")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	gh, ok := cfg.Providers["github"]
	if !ok {
		t.Fatalf("github provider missing: %v", cfg.ProviderNames())
	}
	if gh.ClientID != "env-id" {
		t.Errorf("ClientID = %q", gh.ClientID)
	}
	if gh.BaseURL != "https://api.github.com/" {
		t.Errorf("BaseURL = %q", gh.BaseURL)
	}
	if gh.RedirectURL != "http://localhost:8080/callback/github" {
		t.Errorf("RedirectURL = %q", gh.RedirectURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dotenv := writeFile(t, "test.env", "OAUTHAPP_PROVIDERS_GITHUB_CLIENT_ID=dotenv-id\nOAUTHAPP_PROVIDERS_GITHUB_CLIENT_SECRET=dotenv-secret\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("OAUTHAPP_PROVIDERS_GITHUB_CLIENT_ID")
		_ = os.Unsetenv("OAUTHAPP_PROVIDERS_GITHUB_CLIENT_SECRET")
	})

	cfg, err := config.Load("", dotenv)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Providers["github"].ClientID; got != "dotenv-id" {
		t.Errorf("ClientID = %q, want the .env value", got)
	}
}

func TestLoad_MissingDotEnvIsNotAnError(t *testing.T) {
	if _, err := config.Load("", filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestValidate(t *testing.T) {
	t.Run("no providers", func(t *testing.T) {
		cfg, err := config.Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		err = cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "at least one provider") {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("reports every problem", func(t *testing.T) {
		cfg, err := config.Load(writeFile(t, "bad.yaml", `
server:
  session_ttl: 0s
log:
  format: xml
providers:
  github:
    client_id: only-id
`))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		err = cfg.Validate()
		if err == nil {
			t.Fatal("expected validation error")
		}
		for _, want := range []string{
			"session_ttl",
			"log.format",
			"providers.github: missing required configuration: client_secret",
		} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q should mention %q", err, want)
			}
		}
	})
}

func TestServerConfig_SessionKey(t *testing.T) {
	t.Run("random when unset", func(t *testing.T) {
		a, err := config.ServerConfig{}.SessionKey()
		if err != nil {
			t.Fatalf("SessionKey() error = %v", err)
		}
		b, err := config.ServerConfig{}.SessionKey()
		if err != nil {
			t.Fatalf("SessionKey() error = %v", err)
		}
		if len(a) != 32 {
			t.Errorf("key length = %d, want 32", len(a))
		}
		if bytes.Equal(a, b) {
			t.Error("random keys should differ")
		}
	})

	t.Run("base64 key used as is", func(t *testing.T) {
		raw := bytes.Repeat([]byte{7}, 32)
		key, err := config.ServerConfig{EncryptionKey: base64.StdEncoding.EncodeToString(raw)}.SessionKey()
		if err != nil {
			t.Fatalf("SessionKey() error = %v", err)
		}
		if !bytes.Equal(key, raw) {
			t.Error("a base64 32-byte key should be used unchanged")
		}
	})

	t.Run("passphrase is derived", func(t *testing.T) {
		a, err := config.ServerConfig{EncryptionKey: "correct horse battery staple"}.SessionKey()
		if err != nil {
			t.Fatalf("SessionKey() error = %v", err)
		}
		b, err := config.ServerConfig{EncryptionKey: "correct horse battery staple"}.SessionKey()
		if err != nil {
			t.Fatalf("SessionKey() error = %v", err)
		}
		if len(a) != 32 {
			t.Errorf("key length = %d, want 32", len(a))
		}
		if !bytes.Equal(a, b) {
			t.Error("the same passphrase should derive the same key")
		}
	})
}

func TestLogConfig_NewHandler(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(config.LogConfig{Level: "warn", Format: "text"}.NewHandler(&buf))
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Errorf("text output missing warn record: %q", buf.String())
	}

	buf.Reset()
	slog.New(config.LogConfig{Format: "json"}.NewHandler(&buf)).Info("json")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestLogLevel_ToSlog(t *testing.T) {
	tests := map[config.LogLevel]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := in.ToSlog(); got != want {
			t.Errorf("LogLevel(%q).ToSlog() = %v, want %v", in, got, want)
		}
	}
}
