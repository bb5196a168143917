package report

import (
	"context"

	"github.com/mselser95/sharpline/pkg/oddsmath"
	"github.com/mselser95/sharpline/pkg/types"
)

// Sentiment sources.
const (
	SourceBettingData        = "betting_data"
	SourceImpliedProbability = "implied_probability"
)

// SentimentSource estimates the public share of bets on the home spread.
type SentimentSource interface {
	PublicSpreadPct(ctx context.Context, game *types.Game) (pct float64, source string, ok bool)
}

// TotalSentimentSource estimates the public share of bets on the Over.
// SentimentSources that also implement it feed the totals verdict.
type TotalSentimentSource interface {
	PublicOverPct(ctx context.Context, game *types.Game) (pct float64, source string, ok bool)
}

// ImpliedSentiment uses the mean implied probability of the priced side as the
// public share. With NoVig each book's margin is removed first.
type ImpliedSentiment struct {
	NoVig bool
}

// PublicSpreadPct implements SentimentSource.
func (s ImpliedSentiment) PublicSpreadPct(_ context.Context, game *types.Game) (float64, string, bool) {
	pct, ok := s.estimate(game, types.MarketSpreads)
	return pct, SourceImpliedProbability, ok
}

// PublicOverPct implements TotalSentimentSource.
func (s ImpliedSentiment) PublicOverPct(_ context.Context, game *types.Game) (float64, string, bool) {
	pct, ok := s.estimate(game, types.MarketTotals)
	return pct, SourceImpliedProbability, ok
}

func (s ImpliedSentiment) estimate(game *types.Game, marketKey string) (float64, bool) {
	if s.NoVig {
		return oddsmath.FairSentiment(game, marketKey)
	}
	return oddsmath.PublicSentiment(game, marketKey)
}
