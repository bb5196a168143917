package testutil

import (
	"time"

	"github.com/mselser95/sharpline/pkg/types"
)

// Default teams used by the fixtures.
const (
	HomeTeam = "Buffalo Bills"
	AwayTeam = "Miami Dolphins"
)

// BaseTime is the first poll of the fixture sequences.
//
//nolint:gochecknoglobals // test fixture
var BaseTime = time.Date(2025, 10, 19, 9, 0, 0, 0, time.UTC)

// CreateTestGame creates a Bills-Dolphins game quoted by the given books.
func CreateTestGame(id string, books ...types.Bookmaker) types.Game {
	return types.Game{
		ID:           id,
		SportKey:     "americanfootball_nfl",
		CommenceTime: time.Date(2025, 10, 19, 17, 0, 0, 0, time.UTC),
		HomeTeam:     HomeTeam,
		AwayTeam:     AwayTeam,
		Bookmakers:   books,
	}
}

// CreateTestBook creates a book quoting a home spread and a total at -110,
// plus a moneyline.
func CreateTestBook(key string, homeSpread float64, total float64) types.Bookmaker {
	return types.Bookmaker{
		Key:   key,
		Title: key,
		Markets: []types.Market{
			{
				Key: types.MarketH2H,
				Outcomes: []types.Outcome{
					{Name: HomeTeam, Price: -150},
					{Name: AwayTeam, Price: 130},
				},
			},
			{
				Key: types.MarketSpreads,
				Outcomes: []types.Outcome{
					{Name: HomeTeam, Price: -110, Point: types.Float64Ptr(homeSpread)},
					{Name: AwayTeam, Price: -110, Point: types.Float64Ptr(-homeSpread)},
				},
			},
			{
				Key: types.MarketTotals,
				Outcomes: []types.Outcome{
					{Name: types.OutcomeOver, Price: -110, Point: types.Float64Ptr(total)},
					{Name: types.OutcomeUnder, Price: -110, Point: types.Float64Ptr(total)},
				},
			},
		},
	}
}

// CreateSpreadBook creates a book quoting only the spread market.
func CreateSpreadBook(key string, homeSpread float64) types.Bookmaker {
	return types.Bookmaker{
		Key: key,
		Markets: []types.Market{{
			Key: types.MarketSpreads,
			Outcomes: []types.Outcome{
				{Name: HomeTeam, Price: -110, Point: types.Float64Ptr(homeSpread)},
				{Name: AwayTeam, Price: -110, Point: types.Float64Ptr(-homeSpread)},
			},
		}},
	}
}

// CreateTestEntry wraps a game as a sequence entry at ts.
func CreateTestEntry(ts time.Time, game types.Game) types.SnapshotEntry {
	return types.SnapshotEntry{
		Timestamp:    ts,
		RawTimestamp: ts.UTC().Format(time.RFC3339Nano),
		Game:         game,
	}
}

// CreateTestSequence builds one entry per game, an hour apart from BaseTime.
func CreateTestSequence(games ...types.Game) []types.SnapshotEntry {
	seq := make([]types.SnapshotEntry, 0, len(games))
	for i, g := range games {
		seq = append(seq, CreateTestEntry(BaseTime.Add(time.Duration(i)*time.Hour), g))
	}
	return seq
}
