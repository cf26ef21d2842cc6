package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cashflow"

// Metrics is nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	movements      *prometheus.CounterVec
	commitAttempts prometheus.Histogram
	applyDuration  *prometheus.HistogramVec
	replays        prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		movements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "movements_total",
			Help:      "Movements submitted, by movement type and outcome code.",
		}, []string{"type", "outcome"}),
		commitAttempts: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "commit_attempts",
			Help:      "Conditional commit attempts needed by accepted movements.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8, 13},
		}),
		applyDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "apply_duration_seconds",
			Help:      "Time spent applying a movement, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		replays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "idempotent_replays_total",
			Help:      "Movements answered from an earlier record with the same idempotency key.",
		}),
	}
}

func (m *Metrics) ObserveMovement(movementType, outcome string, attempts int, replayed bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	if movementType == "" {
		movementType = "unknown"
	}

	m.movements.WithLabelValues(movementType, outcome).Inc()
	m.applyDuration.WithLabelValues(movementType).Observe(elapsed.Seconds())
	if attempts > 0 {
		m.commitAttempts.Observe(float64(attempts))
	}
	if replayed {
		m.replays.Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
