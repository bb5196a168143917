package app

import (
	"context"
	"fmt"

	"github.com/mselser95/sharpline/internal/alerts"
	"github.com/mselser95/sharpline/internal/consensus"
	"github.com/mselser95/sharpline/internal/movement"
	"github.com/mselser95/sharpline/internal/notify"
	"github.com/mselser95/sharpline/internal/odds"
	"github.com/mselser95/sharpline/internal/report"
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

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:           cfg,
		opts:          *opts,
		logger:        logger,
		healthChecker: setupHealthChecker(),
		ctx:           ctx,
		cancel:        cancel,
	}

	err := a.setup(ctx)
	if err != nil {
		a.closeResources()
		cancel()
		return nil, err
	}

	return a, nil
}

func (a *App) setup(ctx context.Context) error {
	var err error

	a.snapshotCache, err = setupCache(a.logger)
	if err != nil {
		return fmt.Errorf("setup cache: %w", err)
	}

	a.store, err = setupSnapshotStore(ctx, a.cfg, a.logger, a.snapshotCache)
	if err != nil {
		return fmt.Errorf("setup snapshot store: %w", err)
	}

	a.consensus, err = consensus.NewEngine(a.cfg.ConsensusMethod)
	if err != nil {
		return fmt.Errorf("setup consensus: %w", err)
	}

	a.steam, err = movement.NewDetector(movement.Config{
		MinBooks:    a.cfg.Thresholds.SteamMinBooks,
		MinMovement: a.cfg.Thresholds.SteamMinMovement,
		Policy:      a.cfg.SteamPolicy,
	})
	if err != nil {
		return fmt.Errorf("setup steam detector: %w", err)
	}

	a.engine, err = alerts.NewEngine(a.cfg.Thresholds, a.consensus, a.logger)
	if err != nil {
		return fmt.Errorf("setup alert engine: %w", err)
	}

	a.odds, err = setupOddsClient(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("setup odds client: %w", err)
	}

	a.collector = setupCollector(a.cfg, a.logger)

	a.sink, err = setupStorage(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("setup storage: %w", err)
	}

	a.notifier = setupNotifier(a.cfg, a.logger)

	base, err := a.assembler(nil)
	if err != nil {
		return fmt.Errorf("setup report assembler: %w", err)
	}
	a.httpServer = setupHTTPServer(a.cfg, a.logger, a.healthChecker, base)
	a.runner = scheduler.New(ctx, a.logger)

	return nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	reports httpserver.ReportSource,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Reports:       reports,
		AlertsDir:     cfg.AlertsDir(),
		CORSOrigins:   cfg.CORSOrigins,
	})
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		Name:        "snapshots",
		MaxItems:    2000, // about two months of hourly polls
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupSnapshotStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, c cache.Cache) (snapshot.Store, error) {
	if cfg.StorageBackend == "postgres" {
		store, err := snapshot.NewPostgresStore(ctx, &snapshot.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres snapshot store: %w", err)
		}
		return store, nil
	}

	return snapshot.NewFileStore(&snapshot.FileStoreConfig{
		Dir:    cfg.SnapshotDir(),
		Cache:  c,
		Logger: logger,
	})
}

func setupOddsClient(cfg *config.Config, logger *zap.Logger) (*odds.Client, error) {
	if cfg.RequireOddsAPIKey() != nil {
		logger.Debug("odds-client-disabled-no-api-key")
		return nil, nil
	}

	return odds.NewClient(&odds.ClientConfig{
		BaseURL:   cfg.OddsAPIURL,
		APIKey:    cfg.OddsAPIKey,
		Sport:     cfg.OddsSport,
		Regions:   cfg.OddsRegions,
		Markets:   cfg.OddsMarkets,
		Timeout:   cfg.OddsRequestTimeout,
		RateLimit: cfg.OddsRateLimitRPS,
		Logger:    logger,
	})
}

func setupCollector(cfg *config.Config, logger *zap.Logger) *sidedata.Collector {
	return sidedata.NewCollector(&sidedata.CollectorConfig{
		Source:  sidedata.NewFileSource(cfg.SideDataDir),
		Timeout: cfg.SideDataTimeout,
		Logger:  logger,
	})
}

func setupStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.AlertSink == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(ctx, &storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

func setupNotifier(cfg *config.Config, logger *zap.Logger) Notifier {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return nil
	}

	n, err := notify.NewTelegramNotifier(&notify.TelegramConfig{
		Token:  cfg.TelegramBotToken,
		ChatID: cfg.TelegramChatID,
		Logger: logger,
	})
	if err != nil {
		// Alerts are still exported and stored without chat delivery.
		logger.Warn("telegram-notifier-disabled", zap.Error(err))
		return nil
	}
	return n
}

// assembler builds a report assembler. Scraped betting percentages are preferred
// for reverse line movement, with the implied probability proxy as fallback.
func (a *App) assembler(side map[string]sidedata.GameSideData) (*report.Assembler, error) {
	sentiment := []report.SentimentSource{report.ImpliedSentiment{NoVig: a.cfg.SentimentNoVig}}
	if len(side) > 0 {
		sentiment = append([]report.SentimentSource{sidedata.NewSentiment(side)}, sentiment...)
	}

	return report.New(&report.Config{
		Store:            a.store,
		Consensus:        a.consensus,
		Steam:            a.steam,
		Sentiment:        sentiment,
		ReverseThreshold: a.cfg.Thresholds.ReverseMovement,
		Logger:           a.logger,
	})
}

// Store exposes the snapshot store to commands.
func (a *App) Store() snapshot.Store {
	return a.store
}

// Reports returns an assembler that uses the implied probability proxy for public sentiment.
func (a *App) Reports() (*report.Assembler, error) {
	return a.assembler(nil)
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}
