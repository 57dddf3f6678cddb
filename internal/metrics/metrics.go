package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AIRequests counts text-generation calls; purpose is generate, feedback or hint.
	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_ai_requests_total",
			Help: "Total number of text-generation requests",
		},
		[]string{"purpose", "status"},
	)

	AIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_ai_request_duration_seconds",
			Help:    "Latency of text-generation requests",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		},
		[]string{"purpose"},
	)

	SubmissionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_submissions_completed_total",
			Help: "Total number of completed quiz submissions",
		},
	)

	FeedbackDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_feedback_degraded_total",
			Help: "Submissions recorded with empty feedback because the generator failed",
		},
	)

	AttemptsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_attempts_expired_total",
			Help: "In-progress attempts moved to expired by the scheduler",
		},
	)
)
