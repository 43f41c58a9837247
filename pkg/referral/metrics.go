package referral

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "referral_client",
			Name:      "requests_total",
			Help:      "Referral API requests by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "referral_client",
			Name:      "request_duration_seconds",
			Help:      "Latency of referral API requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
