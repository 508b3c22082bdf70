package ratelimit

import (
	"log/slog"
	"net/http"
	"sync"

	"hostgate/pkg/config"
	"hostgate/pkg/journal"
)

// ConfigSource resolves the current cool-down policy for a named limiter.
// It is consulted fresh on every request, so hot-reloaded configuration
// takes effect without re-registration.
type ConfigSource func(name string) *config.CooldownConfig

// Registry owns one Limiter per logical name and hands out transports bound
// to the shared limiter for that name.
//
// Distinct names are fully independent: separate limiter instances,
// independent configuration, no cross-name contention. The empty name is
// the default limiter. Limiters are created lazily and exactly once per
// name, also under concurrent Get calls for the same name.
//
// A process normally holds a single Registry for its lifetime.
type Registry struct {
	mu       sync.Mutex
	limiters map[string]*Limiter

	source   ConfigSource
	recorder *journal.Recorder
	metrics  *Metrics
	logger   *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithConfigSource sets the configuration source consulted per request.
// The default source reads the global configuration singleton.
func WithConfigSource(source ConfigSource) RegistryOption {
	return func(r *Registry) { r.source = source }
}

// WithJournal attaches a usage journal recorder to all transports handed
// out by the registry.
func WithJournal(recorder *journal.Recorder) RegistryOption {
	return func(r *Registry) { r.recorder = recorder }
}

// WithMetrics attaches Prometheus metrics to all limiters and transports
// handed out by the registry.
func WithMetrics(metrics *Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = metrics }
}

// WithLogger sets the logger used by the registry and its transports.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates a new limiter registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		limiters: make(map[string]*Limiter),
		source: func(name string) *config.CooldownConfig {
			cfg := config.GetConfig()
			if cfg == nil {
				return nil
			}
			return cfg.RateLimit.Client(name)
		},
		logger: slog.Default().With("component", "ratelimit.registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Limiter returns the shared limiter for name, creating it on first use.
// Repeated and concurrent calls with the same name return the same
// instance.
func (r *Registry) Limiter(name string) *Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[name]
	if !ok {
		l = NewLimiter(r.metrics)
		r.limiters[name] = l
		r.logger.Debug("limiter created", "name", name)
	}
	return l
}

// Wrap installs the cool-down stage for name in front of base and returns
// the resulting RoundTripper. If base is nil, http.DefaultTransport is
// wrapped.
//
// Installation is idempotent: when the chain already contains a cool-down
// stage (walked via Unwrap), base is returned unchanged. Two stacked
// stages sharing one single-permit limiter would deadlock, because the
// inner stage defers its release past completion of a call the outer
// stage is blocking on. Eliding the duplicate is mandatory, not an
// optimization.
func (r *Registry) Wrap(name string, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if containsTransport(base) {
		r.logger.Debug("cool-down stage already installed, skipping", "name", name)
		return base
	}

	return &Transport{
		limiter:  r.Limiter(name),
		conf:     func() *config.CooldownConfig { return r.source(name) },
		next:     base,
		name:     name,
		recorder: r.recorder,
		metrics:  r.metrics,
		logger:   r.logger.With("name", name),
	}
}

// WrapClient installs the cool-down stage for name into an http.Client's
// transport, in place. Like Wrap, installation is idempotent.
func (r *Registry) WrapClient(name string, client *http.Client) {
	client.Transport = r.Wrap(name, client.Transport)
}

// Close releases registry resources. Limiters hold no pooled resources;
// Close exists for shutdown symmetry with the attached journal recorder.
func (r *Registry) Close() error {
	if r.recorder != nil {
		return r.recorder.Close()
	}
	return nil
}

// containsTransport reports whether rt or any RoundTripper it wraps is a
// cool-down stage.
func containsTransport(rt http.RoundTripper) bool {
	for rt != nil {
		if _, ok := rt.(*Transport); ok {
			return true
		}
		u, ok := rt.(interface{ Unwrap() http.RoundTripper })
		if !ok {
			return false
		}
		rt = u.Unwrap()
	}
	return false
}
