package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_assessments_total",
			Help: "Total number of risk assessments served, by level",
		},
		[]string{"level"},
	)

	ReassessRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_reassess_runs_total",
			Help: "Total number of reassessment job runs, by outcome",
		},
		[]string{"outcome"},
	)

	ReassessUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auction_reassess_updated_total",
			Help: "Total number of stored classifications corrected by the reassessment job",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_view_cache_lookups_total",
			Help: "Listing view cache lookups, by result",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auction_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
