package consensus

import (
	"math/rand"
	"testing"

	"github.com/mselser95/sharpline/internal/testutil"
	"github.com/mselser95/sharpline/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLine_Spreads(t *testing.T) {
	game := testutil.CreateTestGame("g1",
		testutil.CreateTestBook("draftkings", -3.5, 47.5),
		testutil.CreateTestBook("fanduel", -3.0, 48.0),
		testutil.CreateTestBook("betmgm", -2.5, 48.5))

	spread := Line(&game, types.MarketSpreads)
	require.NotNil(t, spread)
	assert.InDelta(t, -3.0, *spread, 1e-9)

	total := Line(&game, types.MarketTotals)
	require.NotNil(t, total)
	assert.InDelta(t, 48.0, *total, 1e-9)
}

func TestLine_Absent(t *testing.T) {
	tests := []struct {
		name   string
		game   types.Game
		market string
	}{
		{"no-books", testutil.CreateTestGame("g1"), types.MarketSpreads},
		{"moneyline", testutil.CreateTestGame("g1", testutil.CreateTestBook("a", -3, 47)), types.MarketH2H},
		{"unknown-market", testutil.CreateTestGame("g1", testutil.CreateTestBook("a", -3, 47)), "player_props"},
		{"spread-only-books-for-totals", testutil.CreateTestGame("g1", testutil.CreateSpreadBook("a", -3)), types.MarketTotals},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Line(&tt.game, tt.market))
		})
	}
}

func TestLine_SkipsBooksWithoutReferenceOutcome(t *testing.T) {
	renamed := testutil.CreateSpreadBook("oddbook", -10.0)
	renamed.Markets[0].Outcomes[0].Name = "Buffalo"

	noPoint := testutil.CreateSpreadBook("nopoint", -10.0)
	noPoint.Markets[0].Outcomes[0].Point = nil

	game := testutil.CreateTestGame("g1", testutil.CreateSpreadBook("a", -3.0), renamed, noPoint)

	spread := Line(&game, types.MarketSpreads)
	require.NotNil(t, spread)
	assert.Equal(t, -3.0, *spread)
}

func TestLine_ZeroIsAValue(t *testing.T) {
	game := testutil.CreateTestGame("g1", testutil.CreateSpreadBook("a", 0))

	spread := Line(&game, types.MarketSpreads)
	require.NotNil(t, spread)
	assert.Equal(t, 0.0, *spread)
}

func TestLine_OrderInvariant(t *testing.T) {
	books := []types.Bookmaker{
		testutil.CreateTestBook("a", -3.5, 47.1),
		testutil.CreateTestBook("b", -3.0, 48.3),
		testutil.CreateTestBook("c", -2.5, 46.7),
		testutil.CreateTestBook("d", -4.0, 47.9),
		testutil.CreateTestBook("e", -3.1, 48.2),
		testutil.CreateTestBook("f", -2.9, 46.1),
	}

	base := testutil.CreateTestGame("g1", books...)
	wantSpread := *Line(&base, types.MarketSpreads)
	wantTotal := *Line(&base, types.MarketTotals)

	rng := rand.New(rand.NewSource(7))
	for i := range 50 {
		shuffled := make([]types.Bookmaker, len(books))
		copy(shuffled, books)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		game := testutil.CreateTestGame("g1", shuffled...)
		if got := *Line(&game, types.MarketSpreads); got != wantSpread {
			t.Fatalf("permutation %d: spread %v != %v", i, got, wantSpread)
		}
		if got := *Line(&game, types.MarketTotals); got != wantTotal {
			t.Fatalf("permutation %d: total %v != %v", i, got, wantTotal)
		}
	}
}

func TestEngine_Median(t *testing.T) {
	engine, err := NewEngine(MethodMedian)
	require.NoError(t, err)

	odd := testutil.CreateTestGame("g1",
		testutil.CreateSpreadBook("a", -3.0),
		testutil.CreateSpreadBook("b", -10.0),
		testutil.CreateSpreadBook("c", -3.5))
	assert.Equal(t, -3.5, *engine.Line(&odd, types.MarketSpreads))

	even := testutil.CreateTestGame("g1",
		testutil.CreateSpreadBook("a", -3.0),
		testutil.CreateSpreadBook("b", -4.0))
	assert.Equal(t, -3.5, *engine.Line(&even, types.MarketSpreads))
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine("")
	require.NoError(t, err)
	assert.Equal(t, MethodMean, engine.Method())

	_, err = NewEngine("mode")
	assert.Error(t, err)
}

func TestHomeSpreads(t *testing.T) {
	game := testutil.CreateTestGame("g1",
		testutil.CreateSpreadBook("draftkings", -3.5),
		testutil.CreateSpreadBook("fanduel", -3.0),
		testutil.CreateSpreadBook("draftkings", -9.0),
		types.Bookmaker{Key: "totals-only", Markets: []types.Market{{Key: types.MarketTotals}}})

	spreads := HomeSpreads(&game)

	assert.Equal(t, map[string]float64{"draftkings": -3.5, "fanduel": -3.0}, spreads)
}
