package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	FetchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "census",
		Name:      "fetch_requests_total",
		Help:      "Requests issued to the census data API by outcome.",
	}, []string{"outcome"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "census",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of census data API requests.",
		Buckets:   prometheus.DefBuckets,
	})

	FetchedRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "census",
		Name:      "fetched_rows_total",
		Help:      "Area rows returned by the census data API.",
	})

	AggregatedRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "census",
		Name:      "aggregated_rows_total",
		Help:      "Rows turned into variable shares.",
	})

	ZeroTotalRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "census",
		Name:      "zero_total_rows_total",
		Help:      "Rows whose variable total was zero and produced NaN shares.",
	})
)
