// Package metrics declares the Prometheus collectors for conversions and the
// HTTP API, and an observer that feeds them from job lifecycle events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversion metrics
var (
	JobsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameconv_jobs_started_total",
			Help: "Total number of conversion jobs started",
		},
		[]string{"codec"},
	)

	JobsFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameconv_jobs_finished_total",
			Help: "Total number of conversion jobs that reached a terminal state",
		},
		[]string{"codec", "state", "kind"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frameconv_job_duration_seconds",
			Help:    "Wall time from job start to terminal state",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"codec", "state"},
	)

	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frameconv_jobs_active",
			Help: "Number of conversion jobs currently running",
		},
	)

	ChunksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameconv_chunks_total",
			Help: "Total number of encoded chunks collected",
		},
		[]string{"codec"},
	)

	ChunkBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameconv_chunk_bytes_total",
			Help: "Total size of encoded chunks in bytes",
		},
		[]string{"codec"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameconv_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frameconv_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frameconv_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)
