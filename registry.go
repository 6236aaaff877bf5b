package oauthapp

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/giantswarm/oauthapp/providers"
)

// Registry holds at most one App per provider name.
//
// The first successful Register for a name wins; later calls return the same *App
// and ignore their configuration. A failed Register leaves nothing behind, so the
// next call retries construction.
type Registry struct {
	mu     sync.Mutex
	apps   map[string]*App
	opts   []Option
	logger *slog.Logger
}

// NewRegistry creates an empty registry. opts are applied to every App it builds.
func NewRegistry(logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		apps:   make(map[string]*App),
		opts:   append([]Option{WithLogger(logger)}, opts...),
		logger: logger,
	}
}

// NewRegistryFromConfig registers an App for every entry in cfgs. The first
// construction failure is returned; apps built before it stay registered.
func NewRegistryFromConfig(logger *slog.Logger, cfgs map[string]providers.ProviderConfig, opts ...Option) (*Registry, error) {
	r := NewRegistry(logger, opts...)

	names := make([]string, 0, len(cfgs))
	for name := range cfgs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := r.Register(name, cfgs[name]); err != nil {
			return r, err
		}
	}
	return r, nil
}

// Register returns the App for name, building it from cfg on first use.
func (r *Registry) Register(name string, cfg providers.ProviderConfig, opts ...Option) (*App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if app, ok := r.apps[name]; ok {
		return app, nil
	}

	all := make([]Option, 0, len(r.opts)+len(opts))
	all = append(all, r.opts...)
	all = append(all, opts...)

	app, err := NewApp(name, cfg, all...)
	if err != nil {
		return nil, err
	}

	r.apps[name] = app
	r.logger.Info("Registered OAuth app", "provider", name)
	return app, nil
}

// Get returns the App registered for name.
func (r *Registry) Get(name string) (*App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return app, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.apps))
	for name := range r.apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
