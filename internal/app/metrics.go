package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpline_cycles_total",
		Help: "Total number of analysis cycles by outcome",
	}, []string{"outcome"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sharpline_cycle_duration_seconds",
		Help:    "Duration of analysis cycles",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)
