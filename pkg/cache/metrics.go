package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpline_cache_hits_total",
		Help: "Total number of cache hits",
	}, []string{"cache"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpline_cache_misses_total",
		Help: "Total number of cache misses",
	}, []string{"cache"})

	CacheSetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpline_cache_sets_total",
		Help: "Total number of values admitted to the cache",
	}, []string{"cache"})

	CacheRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpline_cache_rejected_total",
		Help: "Total number of values dropped by the admission policy",
	}, []string{"cache"})
)
