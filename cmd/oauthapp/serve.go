package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/giantswarm/oauthapp"
	"github.com/giantswarm/oauthapp/config"
	"github.com/giantswarm/oauthapp/security"
	"github.com/giantswarm/oauthapp/server"
	"github.com/giantswarm/oauthapp/storage/memory"
)

func newServeCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve login, user and fork endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	inst, err := newInstrumentation(ctx, cfg.Instrumentation)
	if err != nil {
		return fmt.Errorf("failed to set up instrumentation: %w", err)
	}
	defer func() {
		if err := inst.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to shut down instrumentation", "error", err)
		}
	}()

	key, err := cfg.Server.SessionKey()
	if err != nil {
		return fmt.Errorf("failed to get session key: %w", err)
	}
	if cfg.Server.EncryptionKey == "" {
		logger.Warn("No encryption key configured, sessions will not survive a restart")
	}
	encryptor, err := security.NewEncryptor(key)
	if err != nil {
		return fmt.Errorf("failed to create encryptor: %w", err)
	}

	auditor := security.NewAuditor(logger, true)
	auditor.OnEvent = func(eventType string) {
		inst.Metrics().RecordAuditEvent(ctx, eventType)
	}

	registry, err := oauthapp.NewRegistryFromConfig(logger, cfg.ProviderConfigs(),
		oauthapp.WithInstrumentation(inst),
		oauthapp.WithRequestTimeout(cfg.Server.RequestTimeout),
		oauthapp.WithAuditor(auditor),
	)
	if err != nil {
		return err
	}

	store := memory.New(encryptor, logger)

	srv := server.New(registry, store, server.Config{
		BaseURL:    cfg.Server.BaseURL,
		SessionTTL: cfg.Server.SessionTTL,
		TrustProxy: cfg.Server.TrustProxy,
	},
		server.WithLogger(logger),
		server.WithAuditor(auditor),
		server.WithInstrumentation(inst),
	)

	logger.Info("Starting oauthapp",
		"version", version,
		"addr", cfg.Server.Addr,
		"base_url", cfg.Server.BaseURL,
		"providers", registry.Names())

	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
}
