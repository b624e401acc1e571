package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Checkout session metrics
	SessionOpenAttempts    *prometheus.CounterVec
	SessionsClosed         *prometheus.CounterVec
	ActiveSessions         prometheus.Gauge
	StepValidationFailures *prometheus.CounterVec
	PermissionDenied       *prometheus.CounterVec

	// Submission metrics
	SubmissionsTotal   *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Reference data metrics
	CountryListServed *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		SessionOpenAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_open_attempts_total",
				Help:      "Checkout session open attempts, by permission result",
			},
			[]string{"permission"},
		),
		SessionsClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_closed_total",
				Help:      "Checkout sessions closed, by reason",
			},
			[]string{"reason"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Number of currently open checkout sessions",
			},
		),
		StepValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_validation_failures_total",
				Help:      "Step gate failures on advance or submit, by step",
			},
			[]string{"step"},
		),
		PermissionDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "permission_denied_total",
				Help:      "Purchase attempts blocked by the permission gate",
			},
			[]string{"reason"},
		),
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Transaction submissions, by outcome",
			},
			[]string{"outcome"},
		),
		SubmissionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "submission_duration_seconds",
				Help:      "Transaction submission duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		CountryListServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "country_list_served_total",
				Help:      "Country reference list responses, by source",
			},
			[]string{"source"},
		),
	}

	reg.MustRegister(
		m.SessionOpenAttempts,
		m.SessionsClosed,
		m.ActiveSessions,
		m.StepValidationFailures,
		m.PermissionDenied,
		m.SubmissionsTotal,
		m.SubmissionDuration,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CountryListServed,
	)

	return m
}
