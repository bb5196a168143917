package sidedata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/sharpline/internal/report"
	"github.com/mselser95/sharpline/internal/testutil"
	"github.com/mselser95/sharpline/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"65%", 65, true},
		{" 72.5 % ", 72.5, true},
		{"40", 40, true},
		{"", 0, false},
		{"n/a", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParsePercentage(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestPercent_Unmarshal(t *testing.T) {
	var row BettingPercentages
	data := `{"matchup":"Miami Dolphins @ Buffalo Bills","spread_bet_pct":"68%","spread_money_pct":41,"total_bet_pct":null,"total_money_pct":"-"}`
	require.NoError(t, json.Unmarshal([]byte(data), &row))

	assert.Equal(t, Percent{Value: 68, Valid: true}, row.SpreadBetPct)
	assert.Equal(t, Percent{Value: 41, Valid: true}, row.SpreadMoneyPct)
	assert.False(t, row.TotalBetPct.Valid)
	assert.False(t, row.TotalMoneyPct.Valid)

	out, err := json.Marshal(row.SpreadBetPct)
	require.NoError(t, err)
	assert.Equal(t, "68", string(out))
}

func TestBettingPercentages_Teams(t *testing.T) {
	row := BettingPercentages{Matchup: "Miami Dolphins @ Buffalo Bills"}
	away, home := row.Teams()
	assert.Equal(t, "Miami Dolphins", away)
	assert.Equal(t, "Buffalo Bills", home)

	row = BettingPercentages{Matchup: "x", AwayTeam: "Jets", HomeTeam: "Patriots"}
	away, home = row.Teams()
	assert.Equal(t, "Jets", away)
	assert.Equal(t, "Patriots", home)
}

func TestSameTeam(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Buffalo Bills", "buffalo bills", true},
		{"Buffalo  Bills.", "Buffalo Bills", true},
		{"Bills", "Buffalo Bills", true},
		{"Buffalo Bills", "Bills", true},
		{"Giants", "New York Jets", false},
		{"New York Giants", "New York Jets", false},
		{"Bill", "Buffalo Bills", false},
		{"", "Buffalo Bills", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SameTeam(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestChainMatcher(t *testing.T) {
	game := testutil.CreateTestGame("g1")

	rows := []BettingPercentages{
		{Matchup: "Dolphins @ Bills", Source: "by-name"},
		{GameID: "g1", Matchup: "something else", Source: "by-key"},
	}

	row, ok := DefaultMatcher().Match(&game, rows)
	require.True(t, ok)
	assert.Equal(t, "by-key", row.Source)

	row, ok = DefaultMatcher().Match(&game, rows[:1])
	require.True(t, ok)
	assert.Equal(t, "by-name", row.Source)

	_, ok = DefaultMatcher().Match(&game, []BettingPercentages{{Matchup: "Bills @ Dolphins"}})
	assert.False(t, ok, "home and away must not be swapped")

	_, ok = DefaultMatcher().Match(&game, []BettingPercentages{{Matchup: "Miami @ Buffalo Bills Mafia"}})
	assert.False(t, ok, "substrings never match")
}

func TestScoring(t *testing.T) {
	rows := []StatRow{
		{Kind: KindYardsPerGame, Side: SideOffense, AwayValue: 350, HomeValue: 380},
		{Kind: KindPointsPerGame, Side: SideOffense, AwayValue: 24.5, HomeValue: 28.1},
		{Kind: KindPointsPerGame, Side: SideDefense, AwayValue: 21.0, HomeValue: 18.2},
		{Kind: KindUnknown, Side: SideDefense, AwayValue: 99, HomeValue: 99},
	}

	stats, ok := Scoring(rows)
	require.True(t, ok)
	assert.Equal(t, ScoringStats{
		AwayOffensePPG: 24.5,
		HomeOffensePPG: 28.1,
		AwayDefensePPG: 21.0,
		HomeDefensePPG: 18.2,
	}, stats)

	_, ok = Scoring(rows[:2])
	assert.False(t, ok, "defense row required")
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	src := NewFileSource(dir)
	ctx := context.Background()

	t.Run("missing-files-are-empty", func(t *testing.T) {
		rows, err := src.Betting(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)

		stats, err := src.MatchupStats(ctx, "g1")
		require.NoError(t, err)
		assert.Empty(t, stats)
	})

	t.Run("reads-and-tags-rows", func(t *testing.T) {
		writeJSON(t, filepath.Join(dir, "matchups", "g1.json"), []map[string]any{
			{"kind": "points_per_game", "side": "offense", "away_value": 20, "home_value": 30},
			{"kind": "turnovers", "side": "offense", "away_value": 1, "home_value": 2},
		})

		rows, err := src.MatchupStats(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, KindPointsPerGame, rows[0].Kind)
		assert.Equal(t, KindUnknown, rows[1].Kind)
	})

	t.Run("corrupt-file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "betting.json"), []byte("[{"), 0o644))

		_, err := src.Betting(ctx)
		var parseErr *types.ParseError
		assert.True(t, errors.As(err, &parseErr))
	})

	t.Run("rejects-path-traversal", func(t *testing.T) {
		_, err := src.MatchupStats(ctx, "../secrets")
		var inputErr *types.InputError
		assert.True(t, errors.As(err, &inputErr))
	})
}

type stubSource struct {
	betting []BettingPercentages
	stats   map[string][]StatRow
	delay   map[string]time.Duration
	calls   atomic.Int32
}

func (s *stubSource) Betting(context.Context) ([]BettingPercentages, error) {
	return s.betting, nil
}

func (s *stubSource) MatchupStats(ctx context.Context, gameID string) ([]StatRow, error) {
	s.calls.Add(1)

	if d, ok := s.delay[gameID]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return s.stats[gameID], nil
}

func fullStats() []StatRow {
	return []StatRow{
		{Kind: KindPointsPerGame, Side: SideOffense, AwayValue: 20, HomeValue: 30},
		{Kind: KindPointsPerGame, Side: SideDefense, AwayValue: 25, HomeValue: 15},
	}
}

func TestCollector_Collect(t *testing.T) {
	src := &stubSource{
		betting: []BettingPercentages{
			{Matchup: "Miami Dolphins @ Buffalo Bills", SpreadBetPct: Percent{Value: 70, Valid: true}},
		},
		stats: map[string][]StatRow{
			"g1": fullStats(),
			"g2": fullStats(),
		},
		delay: map[string]time.Duration{"g2": time.Second},
	}

	games := []types.Game{
		testutil.CreateTestGame("g1"),
		testutil.CreateTestGame("g2"),
		testutil.CreateTestGame("g3"),
	}
	games[1].HomeTeam = "New York Jets"

	c := NewCollector(&CollectorConfig{
		Source:  src,
		Timeout: 50 * time.Millisecond,
		Logger:  zap.NewNop(),
	})

	data, err := c.Collect(context.Background(), games)
	require.NoError(t, err)
	require.Len(t, data, 3)

	assert.NotNil(t, data["g1"].Betting)
	assert.NotNil(t, data["g1"].Stats)
	assert.Equal(t, 30.0, data["g1"].Stats.HomeOffensePPG)

	assert.Nil(t, data["g2"].Betting)
	assert.Nil(t, data["g2"].Stats, "timed out fetch yields no data")

	assert.NotNil(t, data["g3"].Betting, "g3 has the same teams as g1")
	assert.Nil(t, data["g3"].Stats)

	assert.Equal(t, int32(3), src.calls.Load())
}

func TestCollector_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(&CollectorConfig{Source: &stubSource{}})
	_, err := c.Collect(ctx, []types.Game{testutil.CreateTestGame("g1")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSentiment(t *testing.T) {
	s := NewSentiment(map[string]GameSideData{
		"g1": {Betting: &BettingPercentages{SpreadBetPct: Percent{Value: 64, Valid: true}}},
		"g2": {Betting: &BettingPercentages{}},
	})

	g1 := testutil.CreateTestGame("g1")
	pct, source, ok := s.PublicSpreadPct(context.Background(), &g1)
	require.True(t, ok)
	assert.Equal(t, 64.0, pct)
	assert.Equal(t, "betting_data", source)

	g2 := testutil.CreateTestGame("g2")
	_, _, ok = s.PublicSpreadPct(context.Background(), &g2)
	assert.False(t, ok)

	g3 := testutil.CreateTestGame("g3")
	_, _, ok = s.PublicSpreadPct(context.Background(), &g3)
	assert.False(t, ok)
}

func TestSentiment_OverPct(t *testing.T) {
	s := NewSentiment(map[string]GameSideData{
		"g1": {Betting: &BettingPercentages{
			SpreadBetPct: Percent{Value: 64, Valid: true},
			TotalBetPct:  Percent{Value: 71, Valid: true},
		}},
		"g2": {Betting: &BettingPercentages{SpreadBetPct: Percent{Value: 55, Valid: true}}},
	})

	var _ report.TotalSentimentSource = s

	g1 := testutil.CreateTestGame("g1")
	pct, source, ok := s.PublicOverPct(context.Background(), &g1)
	require.True(t, ok)
	assert.Equal(t, 71.0, pct)
	assert.Equal(t, "betting_data", source)

	g2 := testutil.CreateTestGame("g2")
	_, _, ok = s.PublicOverPct(context.Background(), &g2)
	assert.False(t, ok)
}
