// Package config loads the oauthapp configuration from a file, .env files and
// OAUTHAPP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/giantswarm/oauthapp/internal/util"
	"github.com/giantswarm/oauthapp/providers"
	"github.com/giantswarm/oauthapp/providers/github"
	"github.com/giantswarm/oauthapp/security"
)

// EnvPrefix is prepended to every environment override, e.g.
// OAUTHAPP_PROVIDERS_GITHUB_CLIENT_ID overrides providers.github.client_id.
const EnvPrefix = "OAUTHAPP"

// ProviderKindGitHub marks a provider entry that takes GitHub's endpoint defaults.
const ProviderKindGitHub = "github"

// sessionKeyInfo separates the session key from other keys derived from the same secret.
const sessionKeyInfo = "oauthapp session tokens"

// LogLevel is a log level name.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ToSlog returns the matching slog level. Unknown levels map to info.
func (l LogLevel) ToSlog() slog.Level {
	switch LogLevel(strings.ToLower(string(l))) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config is the complete application configuration.
type Config struct {
	Server          ServerConfig              `mapstructure:"server"`
	Log             LogConfig                 `mapstructure:"log"`
	Instrumentation InstrumentationConfig     `mapstructure:"instrumentation"`
	Providers       map[string]ProviderConfig `mapstructure:"providers"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `mapstructure:"addr"`

	// BaseURL is the externally visible URL, used for OAuth callbacks.
	BaseURL string `mapstructure:"base_url"`

	// SessionTTL bounds how long a login session lives (default 8h).
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	// RequestTimeout bounds each provider API call (default 30s).
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// EncryptionKey seals tokens held in memory. A base64 32-byte key is used
	// as is, any other value is stretched with HKDF. Empty means a random key
	// per process.
	EncryptionKey string `mapstructure:"encryption_key"`

	// TrustProxy enables X-Forwarded-For and X-Real-IP for client IPs.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  LogLevel  `mapstructure:"level"`
	Format LogFormat `mapstructure:"format"`
}

// InstrumentationConfig controls OpenTelemetry tracing.
type InstrumentationConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`

	// OTLPEndpoint is an OTLP/HTTP traces URL. Empty keeps spans in process.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// ProviderConfig is one entry under providers.
type ProviderConfig struct {
	// Kind selects endpoint defaults. Entries named "github" default to kind github.
	Kind string `mapstructure:"kind"`

	providers.ProviderConfig `mapstructure:",squash"`
}

// Load reads the configuration.
//
// path may be empty, in which case only defaults and the environment apply.
// dotenvFiles are loaded into the process environment first; without arguments
// ".env" in the working directory is tried. A missing .env file is not an error.
func Load(path string, dotenvFiles ...string) (*Config, error) {
	err := godotenv.Load(dotenvFiles...)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("No .env file found, continuing...")
	} else if err != nil {
		return nil, fmt.Errorf(".env file found, but could not load it: %w", err)
	}

	reader := viper.New()
	setDefaults(reader)

	if path != "" {
		reader.SetConfigFile(path)
		if err := reader.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not load the app configuration: %w", err)
		}
	}

	reader.SetEnvPrefix(EnvPrefix)
	reader.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	reader.AutomaticEnv()

	// AutomaticEnv only sees keys viper already knows. Bind the GitHub
	// credentials so a deployment can be configured from the environment alone.
	for _, key := range []string{"client_id", "client_secret", "redirect_url"} {
		if err := reader.BindEnv("providers." + github.ProviderName + "." + key); err != nil {
			return nil, fmt.Errorf("failed to bind environment: %w", err)
		}
	}

	var cfg Config
	if err := reader.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config format: %w", err)
	}

	cfg.applyProviderDefaults()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.session_ttl", "8h")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("log.level", string(LogLevelInfo))
	v.SetDefault("log.format", string(LogFormatJSON))
	v.SetDefault("instrumentation.enabled", false)
	v.SetDefault("instrumentation.service_name", "oauthapp")
	v.SetDefault("instrumentation.otlp_endpoint", "")
}

// applyProviderDefaults fills GitHub endpoints and the callback URL.
func (c *Config) applyProviderDefaults() {
	for name, p := range c.Providers {
		if p.Kind == "" && name == github.ProviderName {
			p.Kind = ProviderKindGitHub
		}
		if p.Kind == ProviderKindGitHub {
			p.ProviderConfig = github.ApplyDefaults(p.ProviderConfig)
		}
		if p.RedirectURL == "" && c.Server.BaseURL != "" {
			p.RedirectURL = util.JoinURL(c.Server.BaseURL, "/callback/"+name)
		}
		c.Providers[name] = p
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.SessionTTL <= 0 {
		errs = append(errs, errors.New("server.session_ttl must be positive"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}

	switch LogFormat(strings.ToLower(string(c.Log.Format))) {
	case LogFormatText, LogFormatJSON, "":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	if len(c.Providers) == 0 {
		errs = append(errs, errors.New("at least one provider must be configured"))
	}
	for _, name := range c.ProviderNames() {
		if err := c.Providers[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("providers.%s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// ProviderNames returns the configured provider names in sorted order.
func (c *Config) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProviderConfigs returns the provider settings keyed by name.
func (c *Config) ProviderConfigs() map[string]providers.ProviderConfig {
	out := make(map[string]providers.ProviderConfig, len(c.Providers))
	for name, p := range c.Providers {
		out[name] = p.ProviderConfig
	}
	return out
}

// SessionKey returns the 32-byte key for sealing session tokens.
// Without a configured key a random one is generated, so sessions do not
// survive a restart.
func (s ServerConfig) SessionKey() ([]byte, error) {
	if s.EncryptionKey == "" {
		return security.GenerateKey()
	}
	if key, err := security.KeyFromBase64(s.EncryptionKey); err == nil {
		return key, nil
	}
	return security.DeriveKey([]byte(s.EncryptionKey), sessionKeyInfo)
}

// NewHandler returns the slog handler selected by the log settings.
func (l LogConfig) NewHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: l.Level.ToSlog()}
	if LogFormat(strings.ToLower(string(l.Format))) == LogFormatText {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// NewLogger returns a logger writing to stderr.
func (l LogConfig) NewLogger() *slog.Logger {
	return slog.New(l.NewHandler(os.Stderr))
}
