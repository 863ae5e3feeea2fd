package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for alert dispatch monitoring
var (
	// dispatchOutcomesTotal tracks dispatch results by outcome
	dispatchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_dispatch_outcomes_total",
			Help: "Total number of alert dispatches by outcome",
		},
		[]string{"outcome"}, // outcome: skipped|sent|failed
	)

	// dispatchSkippedTotal tracks skipped dispatches by reason. Skips are
	// expected steady state, so the reason split is what makes an
	// unconfigured shop visible to operators.
	dispatchSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_dispatch_skipped_total",
			Help: "Total number of skipped alert dispatches",
		},
		[]string{"reason"}, // reason: disabled|unconfigured|unknown_topic
	)

	// dispatchDuration tracks end-to-end dispatch duration
	dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alert_dispatch_duration_seconds",
			Help:    "Alert dispatch duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30}, // 100ms to 30s
		},
		[]string{"outcome"},
	)

	// resendTotal tracks manual resend requests
	resendTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_resend_total",
			Help: "Total number of manual alert resend requests",
		},
	)

	// webhookEventsTotal tracks inbound webhook events by mapping result
	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of inbound webhook events",
		},
		[]string{"result"}, // result: dispatched|unknown_topic
	)
)

// recordOutcome records a finished dispatch with its duration.
func recordOutcome(outcome OutcomeKind, duration time.Duration) {
	dispatchOutcomesTotal.WithLabelValues(string(outcome)).Inc()
	dispatchDuration.WithLabelValues(string(outcome)).Observe(duration.Seconds())
}

// recordSkip records the reason a dispatch produced no delivery.
func recordSkip(reason string) {
	dispatchSkippedTotal.WithLabelValues(reason).Inc()
}
