package tempfile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the tempfile package.
// All recording methods are safe to call on a nil receiver.
type Metrics struct {
	created prometheus.Counter
	deleted prometheus.Counter
	live    prometheus.Gauge
	swept   prometheus.Counter
}

// NewMetrics creates a new Metrics instance registered with reg.
// If reg is nil, the default Prometheus registerer is used.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		created: factory.NewCounter(prometheus.CounterOpts{
			Name: "hostgate_tempfile_created_total",
			Help: "Total number of temporary files created",
		}),

		deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "hostgate_tempfile_deleted_total",
			Help: "Total number of temporary files deleted after their last reference",
		}),

		live: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hostgate_tempfile_live",
			Help: "Current number of temporary files not yet deleted",
		}),

		swept: factory.NewCounter(prometheus.CounterOpts{
			Name: "hostgate_tempfile_swept_total",
			Help: "Total number of orphaned files removed by the sweeper",
		}),
	}
}

func (m *Metrics) recordCreate() {
	if m == nil {
		return
	}
	m.created.Inc()
	m.live.Inc()
}

func (m *Metrics) recordDelete() {
	if m == nil {
		return
	}
	m.deleted.Inc()
	m.live.Dec()
}

func (m *Metrics) recordSwept(n int) {
	if m == nil {
		return
	}
	m.swept.Add(float64(n))
}
