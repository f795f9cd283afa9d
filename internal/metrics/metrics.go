package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	Runs            *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	PublishFailures prometheus.Counter
	PendingItems    prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devlog_runs_total",
			Help: "Total number of daily runs, by outcome.",
		}, []string{"outcome"}),

		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "devlog_run_duration_seconds",
			Help:    "Wall time of one daily run, from store query to publish.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),

		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devlog_publish_failures_total",
			Help: "Publish attempts that failed after the item was already marked posted.",
		}),

		PendingItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "devlog_pending_items",
			Help: "Pending work items left in the queue after the last run.",
		}),
	}

	reg.MustRegister(
		m.Runs,
		m.RunDuration,
		m.PublishFailures,
		m.PendingItems,
	)

	return m
}

// RunHooks returns the callbacks expected by service.Hooks.
// Keeps the prometheus calls here so the service stays import-free.
func (m *Metrics) RunHooks() (
	onRun func(outcome string, elapsed time.Duration),
	onPublishFailed func(),
	onPending func(n int),
) {
	onRun = func(outcome string, elapsed time.Duration) {
		m.Runs.WithLabelValues(outcome).Inc()
		m.RunDuration.Observe(elapsed.Seconds())
	}
	onPublishFailed = func() {
		m.PublishFailures.Inc()
	}
	onPending = func(n int) {
		m.PendingItems.Set(float64(n))
	}
	return
}
