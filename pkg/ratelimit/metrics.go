package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Acquire result labels.
const (
	resultImmediate = "immediate"
	resultQueued    = "queued"
	resultCancelled = "cancelled"
)

// Metrics contains Prometheus metrics for the ratelimit package.
// All recording methods are safe to call on a nil receiver, so components
// can run without metrics wired up.
type Metrics struct {
	acquires  *prometheus.CounterVec
	releases  *prometheus.CounterVec
	queued    *prometheus.GaugeVec
	waitTime  *prometheus.HistogramVec
	cooldowns *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered with reg.
// If reg is nil, the default Prometheus registerer is used.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		acquires: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostgate_ratelimit_acquires_total",
				Help: "Total number of permit acquisitions by result",
			},
			[]string{"host", "result"},
		),

		releases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostgate_ratelimit_releases_total",
				Help: "Total number of permit releases",
			},
			[]string{"host"},
		),

		queued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hostgate_ratelimit_queued",
				Help: "Current number of acquirers queued per host",
			},
			[]string{"host"},
		),

		waitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hostgate_ratelimit_wait_seconds",
				Help:    "Time spent waiting for a permit in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
			},
			[]string{"host"},
		),

		cooldowns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostgate_ratelimit_cooldowns_scheduled_total",
				Help: "Total number of delayed releases scheduled",
			},
			[]string{"host"},
		),
	}
}

func (m *Metrics) recordAcquire(host, result string) {
	if m == nil {
		return
	}
	m.acquires.WithLabelValues(host, result).Inc()
}

func (m *Metrics) recordRelease(host string) {
	if m == nil {
		return
	}
	m.releases.WithLabelValues(host).Inc()
}

func (m *Metrics) recordQueued(host string, delta float64) {
	if m == nil {
		return
	}
	m.queued.WithLabelValues(host).Add(delta)
}

func (m *Metrics) recordWait(host string, d time.Duration) {
	if m == nil {
		return
	}
	m.waitTime.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) recordCooldown(host string) {
	if m == nil {
		return
	}
	m.cooldowns.WithLabelValues(host).Inc()
}
