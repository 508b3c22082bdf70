// Package metrics aggregates hostgate's Prometheus metrics behind one
// registry and exposes them over HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hostgate/pkg/config"
	"hostgate/pkg/ratelimit"
	"hostgate/pkg/tempfile"
)

// Collector owns the Prometheus registry and the per-package metric sets.
// When metrics are disabled it is nil, and the per-package metric sets
// degrade to no-ops through their nil-safe recording methods.
type Collector struct {
	registry *prometheus.Registry

	// RateLimit holds the outbound rate limiting metrics.
	RateLimit *ratelimit.Metrics

	// TempFiles holds the temporary file lifecycle metrics.
	TempFiles *tempfile.Metrics
}

// NewCollector creates a collector with its own registry. It returns nil
// when metrics are disabled; the nil collector's accessors return nil
// metric sets, which record nothing.
func NewCollector(cfg config.MetricsConfig) *Collector {
	if !cfg.Enabled {
		return nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry:  registry,
		RateLimit: ratelimit.NewMetrics(registry),
		TempFiles: tempfile.NewMetrics(registry),
	}
}

// RateLimitMetrics returns the rate limiting metric set, nil-safe.
func (c *Collector) RateLimitMetrics() *ratelimit.Metrics {
	if c == nil {
		return nil
	}
	return c.RateLimit
}

// TempFileMetrics returns the temp file metric set, nil-safe.
func (c *Collector) TempFileMetrics() *tempfile.Metrics {
	if c == nil {
		return nil
	}
	return c.TempFiles
}

// Handler returns an HTTP handler serving the registry in Prometheus
// exposition format. It returns nil on a nil collector.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return nil
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry returns the underlying registry, for registering additional
// application metrics alongside hostgate's own.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}
