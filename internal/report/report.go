// Package report assembles per-game line movement reports from a snapshot sequence.
package report

import (
	"context"
	"fmt"

	"github.com/mselser95/sharpline/internal/consensus"
	"github.com/mselser95/sharpline/internal/movement"
	"github.com/mselser95/sharpline/internal/snapshot"
	"github.com/mselser95/sharpline/pkg/types"
	"go.uber.org/zap"
)

// Report statuses.
const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
)

// ErrNoSnapshots is the message carried by a no_data report.
const ErrNoSnapshots = "no snapshots found for this game"

// Field names listed in Report.Unavailable.
const (
	FieldOpeningTimestamp = "opening_timestamp"
	FieldCurrentTimestamp = "current_timestamp"
	FieldSpreadOpening    = "spread.opening"
	FieldSpreadCurrent    = "spread.current"
	FieldSpreadMovement   = "spread.movement"
	FieldTotalOpening     = "total.opening"
	FieldTotalCurrent     = "total.current"
	FieldTotalMovement    = "total.movement"
	FieldReverseMovement  = "reverse_movement"

	FieldTotalReverseMovement = "total_reverse_movement"
)

// Report is the line movement report for one game. It holds no wall-clock
// values, so reports built from the same sequence marshal identically.
type Report struct {
	GameID            string               `json:"game_id"`
	Status            string               `json:"status"`
	Error             string               `json:"error,omitempty"`
	HomeTeam          string               `json:"home_team,omitempty"`
	AwayTeam          string               `json:"away_team,omitempty"`
	OpeningTimestamp  *string              `json:"opening_timestamp"`
	CurrentTimestamp  *string              `json:"current_timestamp"`
	Spread            LineSummary          `json:"spread"`
	Total             LineSummary          `json:"total"`
	SteamMoves        []movement.SteamMove `json:"steam_moves"`
	ReverseMovement   *ReverseMovement     `json:"reverse_movement"`
	TotalReverse      *ReverseMovement     `json:"total_reverse_movement"`
	SnapshotsAnalyzed int                  `json:"snapshots_analyzed"`
	Unavailable       []string             `json:"unavailable"`
}

// LineSummary holds the opening and current consensus line of one market.
// Movement is nil unless both ends are present.
type LineSummary struct {
	Opening  *float64 `json:"opening"`
	Current  *float64 `json:"current"`
	Movement *float64 `json:"movement"`
}

// ReverseMovement is a reverse line movement verdict. PublicPct is the home
// share for spreads and the Over share for totals.
type ReverseMovement struct {
	Detected  bool    `json:"detected"`
	Direction string  `json:"direction"`
	PublicPct float64 `json:"public_pct"`
	Source    string  `json:"source"`
}

// Matchup returns "Away @ Home", or the game id when teams are unknown.
func (r *Report) Matchup() string {
	if r.HomeTeam == "" || r.AwayTeam == "" {
		return r.GameID
	}
	return r.AwayTeam + " @ " + r.HomeTeam
}

// Assembler builds reports.
type Assembler struct {
	store            snapshot.Store
	consensus        *consensus.Engine
	steam            *movement.Detector
	sentiment        []SentimentSource
	reverseThreshold float64
	logger           *zap.Logger
}

// Config holds the assembler's collaborators.
type Config struct {
	Store            snapshot.Store
	Consensus        *consensus.Engine  // mean when nil
	Steam            *movement.Detector // default thresholds when nil
	Sentiment        []SentimentSource  // tried in order
	ReverseThreshold float64            // movement.DefaultReverseThreshold when zero
	Logger           *zap.Logger
}

// New creates an Assembler.
func New(cfg *Config) (*Assembler, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("snapshot store is required")
	}

	engine := cfg.Consensus
	if engine == nil {
		var err error
		engine, err = consensus.NewEngine(consensus.MethodMean)
		if err != nil {
			return nil, fmt.Errorf("create consensus engine: %w", err)
		}
	}

	steam := cfg.Steam
	if steam == nil {
		var err error
		steam, err = movement.NewDetector(movement.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("create steam detector: %w", err)
		}
	}

	threshold := cfg.ReverseThreshold
	if threshold == 0 {
		threshold = movement.DefaultReverseThreshold
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assembler{
		store:            cfg.Store,
		consensus:        engine,
		steam:            steam,
		sentiment:        cfg.Sentiment,
		reverseThreshold: threshold,
		logger:           logger,
	}, nil
}

// LineMovementReport builds the report for gameID. A game without snapshots
// yields a no_data report, not an error; only store failures are returned.
func (a *Assembler) LineMovementReport(ctx context.Context, gameID string) (*Report, error) {
	seq, err := a.store.ListSnapshots(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	if len(seq) == 0 {
		ReportsGeneratedTotal.WithLabelValues(StatusNoData).Inc()
		a.logger.Debug("report-no-data", zap.String("game-id", gameID))
		return noDataReport(gameID), nil
	}

	return a.Build(ctx, gameID, seq), nil
}

// Build assembles a report from an already loaded, ordered sequence.
func (a *Assembler) Build(ctx context.Context, gameID string, seq []types.SnapshotEntry) *Report {
	if len(seq) == 0 {
		return noDataReport(gameID)
	}

	opening := &seq[0]
	current := &seq[len(seq)-1]

	r := &Report{
		GameID:            gameID,
		Status:            StatusOK,
		HomeTeam:          current.Game.HomeTeam,
		AwayTeam:          current.Game.AwayTeam,
		OpeningTimestamp:  stringPtr(opening.RawTimestamp),
		CurrentTimestamp:  stringPtr(current.RawTimestamp),
		Spread:            a.summarize(&opening.Game, &current.Game, types.MarketSpreads),
		Total:             a.summarize(&opening.Game, &current.Game, types.MarketTotals),
		SteamMoves:        []movement.SteamMove{},
		SnapshotsAnalyzed: len(seq),
	}

	if move := a.steam.SteamMove(seq); move != nil {
		r.SteamMoves = append(r.SteamMoves, *move)
	}

	r.ReverseMovement = a.reverseMovement(ctx, &current.Game, r.Spread)
	r.TotalReverse = a.totalReverse(ctx, &current.Game, r.Total)
	r.Unavailable = unavailable(r)

	ReportsGeneratedTotal.WithLabelValues(StatusOK).Inc()
	a.logger.Debug("report-built",
		zap.String("game-id", gameID),
		zap.Int("snapshots", len(seq)),
		zap.Int("steam-moves", len(r.SteamMoves)))

	return r
}

func (a *Assembler) summarize(opening, current *types.Game, marketKey string) LineSummary {
	s := LineSummary{
		Opening: a.consensus.Line(opening, marketKey),
		Current: a.consensus.Line(current, marketKey),
	}

	if s.Opening != nil && s.Current != nil {
		m := *s.Current - *s.Opening
		s.Movement = &m
	}

	return s
}

func (a *Assembler) reverseMovement(ctx context.Context, game *types.Game, spread LineSummary) *ReverseMovement {
	if spread.Opening == nil || spread.Current == nil {
		return nil
	}

	for _, src := range a.sentiment {
		pct, source, ok := src.PublicSpreadPct(ctx, game)
		if !ok {
			continue
		}

		rm := &ReverseMovement{
			Direction: movement.DirectionNone,
			PublicPct: pct,
			Source:    source,
		}

		if movement.ReverseLineMovement(*spread.Opening, *spread.Current, pct, a.reverseThreshold) {
			rm.Detected = true
			rm.Direction = movement.ReverseDirection(*spread.Opening, *spread.Current)
		}

		return rm
	}

	return nil
}

func (a *Assembler) totalReverse(ctx context.Context, game *types.Game, total LineSummary) *ReverseMovement {
	if total.Opening == nil || total.Current == nil {
		return nil
	}

	for _, src := range a.sentiment {
		totals, ok := src.(TotalSentimentSource)
		if !ok {
			continue
		}

		pct, source, ok := totals.PublicOverPct(ctx, game)
		if !ok {
			continue
		}

		rm := &ReverseMovement{
			Direction: movement.DirectionNone,
			PublicPct: pct,
			Source:    source,
		}

		if movement.ReverseTotalMovement(*total.Opening, *total.Current, pct, a.reverseThreshold) {
			rm.Detected = true
			rm.Direction = movement.TotalDirection(*total.Opening, *total.Current)
		}

		return rm
	}

	return nil
}

func noDataReport(gameID string) *Report {
	r := &Report{
		GameID:     gameID,
		Status:     StatusNoData,
		Error:      ErrNoSnapshots,
		SteamMoves: []movement.SteamMove{},
	}
	r.Unavailable = unavailable(r)
	return r
}

func unavailable(r *Report) []string {
	fields := []struct {
		name   string
		absent bool
	}{
		{FieldOpeningTimestamp, r.OpeningTimestamp == nil},
		{FieldCurrentTimestamp, r.CurrentTimestamp == nil},
		{FieldSpreadOpening, r.Spread.Opening == nil},
		{FieldSpreadCurrent, r.Spread.Current == nil},
		{FieldSpreadMovement, r.Spread.Movement == nil},
		{FieldTotalOpening, r.Total.Opening == nil},
		{FieldTotalCurrent, r.Total.Current == nil},
		{FieldTotalMovement, r.Total.Movement == nil},
		{FieldReverseMovement, r.ReverseMovement == nil},
		{FieldTotalReverseMovement, r.TotalReverse == nil},
	}

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.absent {
			out = append(out, f.name)
		}
	}
	return out
}

func stringPtr(s string) *string {
	return &s
}
