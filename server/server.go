package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/oauthapp"
	"github.com/giantswarm/oauthapp/instrumentation"
	"github.com/giantswarm/oauthapp/security"
	"github.com/giantswarm/oauthapp/storage"
)

// Server serves the remote apps of a Registry over HTTP.
type Server struct {
	registry *oauthapp.Registry
	store    storage.Store
	config   Config

	logger          *slog.Logger
	auditor         *security.Auditor
	metrics         *Metrics
	instrumentation *instrumentation.Instrumentation
	tracer          trace.Tracer

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAuditor sets the security auditor. Without one, audit events are dropped.
func WithAuditor(auditor *security.Auditor) Option {
	return func(s *Server) {
		s.auditor = auditor
	}
}

// WithMetrics sets the Prometheus metrics. Defaults to a fresh registry.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithInstrumentation sets the OpenTelemetry tracer source.
func WithInstrumentation(inst *instrumentation.Instrumentation) Option {
	return func(s *Server) {
		s.instrumentation = inst
	}
}

// New builds the server and its routes.
func New(registry *oauthapp.Registry, store storage.Store, config Config, opts ...Option) *Server {
	config.applyDefaults()

	s := &Server{
		registry: registry,
		store:    store,
		config:   config,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.instrumentation == nil {
		s.instrumentation = instrumentation.NewNoop()
	}
	s.tracer = s.instrumentation.Tracer("server")

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer,
		security.RequestIDMiddleware,
		s.metrics.Middleware,
		s.requestLogger,
	)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(security.SecurityHeadersMiddleware(s.config.BaseURL))

		r.Get("/providers", s.handleProviders)
		r.Get("/login/{provider}", s.handleLogin)
		r.Get("/callback/{provider}", s.handleCallback)
		r.Get("/user/{provider}", s.handleUser)
		r.Post("/fork/{provider}", s.handleFork)
		r.Post("/logout/{provider}", s.handleLogout)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeInvalidRequest, fmt.Sprintf("path %q not found", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeInvalidRequest, "method not allowed")
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Metrics returns the Prometheus metrics of the server.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", listener.Addr().String())
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// requestLogger opens a span and logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx, span := s.tracer.Start(r.Context(), "oauthapp.http.request")
		defer span.End()

		next.ServeHTTP(ww, r.WithContext(ctx))

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		instrumentation.AddHTTPAttributes(span, r.Method, endpoint, ww.Status())
		if ww.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(ww.Status()))
		}

		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", security.GetRequestID(ctx))
	})
}
