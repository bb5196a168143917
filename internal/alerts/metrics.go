package alerts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	AlertsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpline_alerts_emitted_total",
		Help: "Total number of alerts generated",
	}, []string{"type", "priority"})
)
