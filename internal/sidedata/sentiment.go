package sidedata

import (
	"context"

	"github.com/mselser95/sharpline/internal/report"
	"github.com/mselser95/sharpline/pkg/types"
)

// Sentiment serves scraped spread and total bet percentages to the report assembler.
type Sentiment struct {
	data map[string]GameSideData
}

// NewSentiment wraps collected side data.
func NewSentiment(data map[string]GameSideData) *Sentiment {
	return &Sentiment{data: data}
}

// PublicSpreadPct returns the scraped share of spread bets on the home team.
func (s *Sentiment) PublicSpreadPct(_ context.Context, game *types.Game) (float64, string, bool) {
	entry, ok := s.data[game.ID]
	if !ok || entry.Betting == nil || !entry.Betting.SpreadBetPct.Valid {
		return 0, "", false
	}
	return entry.Betting.SpreadBetPct.Value, report.SourceBettingData, true
}

// PublicOverPct returns the scraped share of total bets on the Over.
func (s *Sentiment) PublicOverPct(_ context.Context, game *types.Game) (float64, string, bool) {
	entry, ok := s.data[game.ID]
	if !ok || entry.Betting == nil || !entry.Betting.TotalBetPct.Valid {
		return 0, "", false
	}
	return entry.Betting.TotalBetPct.Value, report.SourceBettingData, true
}
