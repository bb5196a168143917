package snapshot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	SnapshotsSavedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpline_snapshots_saved_total",
		Help: "Total number of snapshots persisted",
	}, []string{"backend"})

	SnapshotSaveErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpline_snapshot_save_errors_total",
		Help: "Total number of failed snapshot writes",
	}, []string{"backend"})

	SnapshotParseErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharpline_snapshot_parse_errors_total",
		Help: "Total number of snapshot files skipped because they could not be decoded",
	})

	SnapshotsDeletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpline_snapshots_deleted_total",
		Help: "Total number of snapshots removed by retention cleanup",
	}, []string{"backend"})

	SnapshotLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sharpline_snapshot_load_duration_seconds",
		Help:    "Time to rebuild one game's snapshot sequence",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"backend"})
)
