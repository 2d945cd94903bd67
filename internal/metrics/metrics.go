package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ChainWalkHops = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "referral_chain_walk_hops",
			Help:    "Hops taken per referral chain walk",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 50},
		},
	)

	// StructuralGuardTrips counts cycle, self-referral and depth-limit
	// terminations. These end the walk successfully but want operator
	// eyes, since they indicate corrupted referral edges.
	StructuralGuardTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_chain_guard_trips_total",
			Help: "Chain walks terminated by a structural guard",
		},
		[]string{"reason"},
	)

	SnapshotRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commission_snapshot_rebuilds_total",
			Help: "Commission snapshot rebuild runs",
		},
	)
)
