package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels para WorkflowCalls.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeCacheHit = "cache_hit"
)

var (
	WorkflowCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_calls_total",
			Help: "Total number of workflow calls, one per drug",
		},
		[]string{"outcome"},
	)

	WorkflowCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_call_duration_seconds",
			Help:    "Duration of a single workflow call in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"outcome"},
	)

	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drug_checks_total",
			Help: "Total number of drug checks by final status",
		},
		[]string{"status"},
	)

	CheckDrugs = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drug_check_size",
			Help:    "Number of drugs submitted per check",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "route"},
	)
)
