package sidedata

import (
	"context"
	"sync"
	"time"

	"github.com/mselser95/sharpline/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Collector attaches side data to games.
type Collector struct {
	source      Source
	matcher     Matcher
	timeout     time.Duration
	concurrency int
	logger      *zap.Logger
}

// CollectorConfig holds collector configuration.
type CollectorConfig struct {
	Source      Source
	Matcher     Matcher       // DefaultMatcher when nil
	Timeout     time.Duration // per call, 10s when zero
	Concurrency int           // parallel stat fetches, 8 when zero
	Logger      *zap.Logger
}

// NewCollector creates a Collector.
func NewCollector(cfg *CollectorConfig) *Collector {
	matcher := cfg.Matcher
	if matcher == nil {
		matcher = DefaultMatcher()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	concurrency := cfg.Concurrency
	if concurrency == 0 {
		concurrency = 8
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Collector{
		source:      cfg.Source,
		matcher:     matcher,
		timeout:     timeout,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Collect returns side data keyed by game id. Every game gets an entry.
// Source failures and timeouts are logged and leave the affected data absent;
// only cancellation of ctx is returned as an error.
func (c *Collector) Collect(ctx context.Context, games []types.Game) (map[string]GameSideData, error) {
	result := make(map[string]GameSideData, len(games))
	for i := range games {
		result[games[i].ID] = GameSideData{}
	}

	rows := c.loadBetting(ctx)
	for i := range games {
		row, ok := c.matcher.Match(&games[i], rows)
		if !ok {
			continue
		}
		matched := *row
		result[games[i].ID] = GameSideData{Betting: &matched}
		BettingMatchedTotal.Inc()
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i := range games {
		gameID := games[i].ID
		g.Go(func() error {
			stats, ok := c.fetchStats(gctx, gameID)
			if !ok {
				return nil
			}

			mu.Lock()
			entry := result[gameID]
			entry.Stats = &stats
			result[gameID] = entry
			mu.Unlock()
			return nil
		})
	}

	// goroutines never return errors; cancellation is checked below
	_ = g.Wait()

	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Collector) loadBetting(ctx context.Context) []BettingPercentages {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	rows, err := c.source.Betting(callCtx)
	SideDataFetchDuration.WithLabelValues("betting").Observe(time.Since(start).Seconds())
	if err != nil {
		SideDataErrorsTotal.WithLabelValues("betting").Inc()
		c.logger.Warn("betting-data-unavailable", zap.Error(err))
		return nil
	}

	c.logger.Debug("betting-data-loaded", zap.Int("rows", len(rows)))
	return rows
}

func (c *Collector) fetchStats(ctx context.Context, gameID string) (ScoringStats, bool) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	rows, err := c.source.MatchupStats(callCtx, gameID)
	SideDataFetchDuration.WithLabelValues("matchup").Observe(time.Since(start).Seconds())
	if err != nil {
		SideDataErrorsTotal.WithLabelValues("matchup").Inc()
		c.logger.Warn("matchup-stats-unavailable",
			zap.String("game-id", gameID),
			zap.Error(err))
		return ScoringStats{}, false
	}

	return Scoring(rows)
}
