package odds

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// FetchDuration tracks odds API request latency.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sharpline_odds_fetch_duration_seconds",
		Help:    "Duration of odds API requests",
		Buckets: prometheus.DefBuckets,
	})

	// FetchErrorsTotal tracks failed odds API requests by reason.
	FetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpline_odds_fetch_errors_total",
		Help: "Total number of failed odds API requests",
	}, []string{"reason"})

	// GamesFetchedTotal tracks games accepted from the provider.
	GamesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharpline_odds_games_fetched_total",
		Help: "Total number of games accepted from the odds API",
	})

	// RecordsDroppedTotal tracks games, bookmakers and prices dropped as malformed.
	RecordsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharpline_odds_records_dropped_total",
		Help: "Total number of malformed odds records dropped",
	})

	// RequestsRemaining is the last quota reported by the provider.
	RequestsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sharpline_odds_requests_remaining",
		Help: "Remaining odds API requests reported by the provider",
	})

	// MarketOverround tracks each book's margin per market in percentage points.
	MarketOverround = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sharpline_odds_market_overround_percent",
		Help:    "Bookmaker margin per quoted market",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10, 15},
	}, []string{"market"})

	// BreakerState is the odds circuit breaker state (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sharpline_odds_breaker_state",
		Help: "Odds API circuit breaker state",
	})
)
