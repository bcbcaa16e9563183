// Package metrics holds the Prometheus metrics of the availability engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "visitbook"

// Fetch kinds.
const (
	FetchSchedule = "schedule"
	FetchDensity  = "density"
)

// Metrics holds Prometheus metrics for the engine.
// All methods are safe on a nil receiver.
type Metrics struct {
	// FetchesTotal counts remote fetches by kind and outcome (ok, fallback, error, skipped).
	FetchesTotal *prometheus.CounterVec

	// FetchDuration is the latency of remote fetches.
	FetchDuration *prometheus.HistogramVec

	// StaleResponses counts navigation results dropped because a newer one was issued.
	StaleResponses prometheus.Counter

	// ValidationRejections counts local selection rejections by reason.
	ValidationRejections *prometheus.CounterVec

	// SubmissionsTotal counts booking submissions by outcome.
	SubmissionsTotal *prometheus.CounterVec

	// ActiveSessions is the number of live browsing sessions.
	ActiveSessions prometheus.Gauge

	// HTTPRequests counts API requests by route and status code.
	HTTPRequests *prometheus.CounterVec

	// ScheduleReloads counts schedules file reloads by outcome (ok, error).
	ScheduleReloads *prometheus.CounterVec
}

// New creates and registers metrics with reg; nil uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "fetches_total",
				Help:      "Total number of remote fetches by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Time to fetch schedule or density from the booking service",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"kind"},
		),

		StaleResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "stale_responses_total",
				Help:      "Total number of superseded navigation results discarded",
			},
		),

		ValidationRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "validation_rejections_total",
				Help:      "Total number of rejected selections by reason",
			},
			[]string{"reason"},
		),

		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "booking_submissions_total",
				Help:      "Total number of booking submissions by outcome",
			},
			[]string{"outcome"},
		),

		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "active_sessions",
				Help:      "Current number of live browsing sessions",
			},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of API requests by route and status",
			},
			[]string{"route", "code"},
		),

		ScheduleReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "schedule_reloads_total",
				Help:      "Total number of schedules file reloads by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// IncScheduleReload increments schedules file reloads for outcome.
func (m *Metrics) IncScheduleReload(outcome string) {
	if m == nil {
		return
	}
	m.ScheduleReloads.WithLabelValues(outcome).Inc()
}

// ObserveFetch records one fetch of kind.
func (m *Metrics) ObserveFetch(kind, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(kind, outcome).Inc()
	m.FetchDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// IncFetchSkipped records a fetch that was not attempted.
func (m *Metrics) IncFetchSkipped(kind string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(kind, "skipped").Inc()
}

// IncStale increments the stale response counter.
func (m *Metrics) IncStale() {
	if m == nil {
		return
	}
	m.StaleResponses.Inc()
}

// IncRejection increments rejections for reason.
func (m *Metrics) IncRejection(reason string) {
	if m == nil {
		return
	}
	m.ValidationRejections.WithLabelValues(reason).Inc()
}

// IncSubmission increments submissions for outcome.
func (m *Metrics) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

// SetActiveSessions sets the live session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// IncHTTP increments requests for route and status code.
func (m *Metrics) IncHTTP(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, statusLabel(code)).Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
