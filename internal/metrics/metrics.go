// Package metrics holds the Prometheus collectors shared by the upstream
// clients and the story pipeline. They register with the default registry,
// which `hn-board serve` exposes on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hnboard_upstream_requests_total",
		Help: "Upstream API requests by source and status",
	}, []string{"source", "status"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hnboard_upstream_request_duration_seconds",
		Help:    "Upstream API request duration in seconds by source",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"source"})

	StoriesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hnboard_stories_dropped_total",
		Help: "Ranked identifiers with no matching detail record, by category",
	}, []string{"category"})

	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hnboard_pipeline_runs_total",
		Help: "Story pipeline runs by category and result",
	}, []string{"category", "result"})
)

// ObserveRequest records one upstream round trip. status is the HTTP status
// code, or 0 when the request never got a response.
func ObserveRequest(source string, status int, started time.Time) {
	label := "network_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequests.WithLabelValues(source, label).Inc()
	UpstreamDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
}
