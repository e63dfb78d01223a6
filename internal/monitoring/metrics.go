package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_total",
			Help: "Total number of committed votes",
		},
		[]string{"direction"},
	)

	VoteTxRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vote_tx_retries_total",
			Help: "Vote transactions replayed after store contention",
		},
	)

	VoteConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vote_conflicts_total",
			Help: "Votes rejected after exhausting transaction retries",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HttpRequestsTotal,
		HttpRequestDuration,
		VotesTotal,
		VoteTxRetries,
		VoteConflicts,
	)
}
