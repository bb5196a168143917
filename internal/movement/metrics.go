package movement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	SteamMovesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharpline_steam_moves_detected_total",
		Help: "Total number of steam moves reported",
	})
)
