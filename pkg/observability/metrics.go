package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agentlisp"

// Metrics holds the Prometheus collectors the engine records into.
type Metrics struct {
	Steps          *prometheus.CounterVec
	Effects        *prometheus.CounterVec
	SessionsActive prometheus.Gauge
	RunDuration    prometheus.Histogram
}

// NewMetrics creates and registers the collectors on the given registerer.
// Pass prometheus.DefaultRegisterer to use the process-global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "machine_steps_total",
			Help:      "Machine transitions performed, by expression kind.",
		}, []string{"kind"}),
		Effects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effects_total",
			Help:      "Effect boundaries reached, by effect kind.",
		}, []string{"kind"}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held open by a host.",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_segment_duration_seconds",
			Help:      "Wall time of run segments between effect boundaries.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
