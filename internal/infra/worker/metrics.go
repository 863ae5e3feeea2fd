package worker

import (
	"shopalert/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SweepMetrics provides Prometheus metrics for the reconciliation worker.
// It embeds the standard ConfigMetrics for configuration monitoring and
// adds sweep-specific metrics for job execution tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Sweep-specific metrics:
//   - worker_sweep_runs_total: Total sweep runs by status (success/failure)
//   - worker_sweep_duration_seconds: Duration histogram of sweep execution
//   - worker_sweep_alerts_marked_total: Total stuck records marked as interrupted
//   - worker_sweep_last_success_timestamp: Unix timestamp of last successful run
type SweepMetrics struct {
	*config.ConfigMetrics

	// SweepRunsTotal counts sweep runs by outcome.
	// Labels: status (success, failure)
	SweepRunsTotal *prometheus.CounterVec

	// SweepDurationSeconds measures sweep execution time.
	// Buckets cover the expected range from an empty scan to a full batch
	// of database updates.
	SweepDurationSeconds prometheus.Histogram

	// SweepAlertsMarkedTotal counts PENDING records marked as interrupted.
	SweepAlertsMarkedTotal prometheus.Counter

	// SweepLastSuccessTimestamp records the Unix timestamp of the last
	// successful sweep. Alerting on its age catches a silently dead worker.
	SweepLastSuccessTimestamp prometheus.Gauge
}

// NewSweepMetrics creates a new SweepMetrics instance with all metrics
// initialized. Registration with the default Prometheus registry happens
// automatically via promauto.
func NewSweepMetrics() *SweepMetrics {
	return &SweepMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		SweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_sweep_runs_total",
			Help: "Total number of sweep runs by status (success/failure)",
		}, []string{"status"}),

		SweepDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_sweep_duration_seconds",
			Help:    "Duration of sweep execution in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 120},
		}),

		SweepAlertsMarkedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_sweep_alerts_marked_total",
			Help: "Total number of stuck PENDING alerts marked as interrupted",
		}),

		SweepLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_sweep_last_success_timestamp",
			Help: "Unix timestamp of the last successful sweep run",
		}),
	}
}

// MustRegister is a no-op method for API compatibility.
// Metrics are automatically registered via promauto when created in
// NewSweepMetrics. The explicit call keeps the initialization intent
// visible at the call site.
func (m *SweepMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordSweepRun increments the sweep run counter for the given status.
// Status should be either "success" or "failure".
func (m *SweepMetrics) RecordSweepRun(status string) {
	m.SweepRunsTotal.WithLabelValues(status).Inc()
}

// RecordSweepDuration observes the duration of a sweep run in seconds.
func (m *SweepMetrics) RecordSweepDuration(seconds float64) {
	m.SweepDurationSeconds.Observe(seconds)
}

// RecordAlertsMarked adds the number of records marked in this run to the
// running total.
func (m *SweepMetrics) RecordAlertsMarked(count int) {
	m.SweepAlertsMarkedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful sweep
// completion.
func (m *SweepMetrics) RecordLastSuccess() {
	m.SweepLastSuccessTimestamp.SetToCurrentTime()
}
