// Package app wires the odds pipeline together: fetch, snapshot, report, alert.
package app

import (
	"context"
	"sync"

	"github.com/mselser95/sharpline/internal/alerts"
	"github.com/mselser95/sharpline/internal/consensus"
	"github.com/mselser95/sharpline/internal/movement"
	"github.com/mselser95/sharpline/internal/odds"
	"github.com/mselser95/sharpline/internal/scheduler"
	"github.com/mselser95/sharpline/internal/sidedata"
	"github.com/mselser95/sharpline/internal/snapshot"
	"github.com/mselser95/sharpline/internal/storage"
	"github.com/mselser95/sharpline/pkg/cache"
	"github.com/mselser95/sharpline/pkg/config"
	"github.com/mselser95/sharpline/pkg/healthprobe"
	"github.com/mselser95/sharpline/pkg/httpserver"
	"go.uber.org/zap"
)

// Notifier delivers an alert export to people.
type Notifier interface {
	Notify(ctx context.Context, exp *alerts.Export) (int, error)
}

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	opts          Options
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	runner        *scheduler.Runner
	snapshotCache cache.Cache
	odds          *odds.Client // nil without an API key
	store         snapshot.Store
	collector     *sidedata.Collector
	consensus     *consensus.Engine
	steam         *movement.Detector
	engine        *alerts.Engine
	sink          storage.Storage
	notifier      Notifier // nil when not configured
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	cycleMu       sync.Mutex
	closeOnce     sync.Once
}

// Options holds application options.
type Options struct {
	SkipSideData bool // analyze odds only
	Week         int  // NFL week for the export, derived from the date when zero
}
