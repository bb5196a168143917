package sidedata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	SideDataFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sharpline_side_data_fetch_duration_seconds",
		Help:    "Time to load side data",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	SideDataErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpline_side_data_errors_total",
		Help: "Total number of side data loads that failed or timed out",
	}, []string{"kind"})

	BettingMatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharpline_betting_rows_matched_total",
		Help: "Total number of games matched to a betting percentage row",
	})
)
