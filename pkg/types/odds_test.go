package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGame_Clone(t *testing.T) {
	orig := Game{
		ID:       "g1",
		HomeTeam: "Buffalo Bills",
		AwayTeam: "Miami Dolphins",
		Bookmakers: []Bookmaker{{
			Key: "draftkings",
			Markets: []Market{{
				Key: MarketSpreads,
				Outcomes: []Outcome{
					{Name: "Buffalo Bills", Price: -110, Point: Float64Ptr(-3.5), ImpliedProbability: Float64Ptr(0.52)},
					{Name: "Miami Dolphins", Price: -110, Point: Float64Ptr(3.5)},
				},
			}},
		}},
	}

	c := orig.Clone()
	assert.Equal(t, orig, c)

	*c.Bookmakers[0].Markets[0].Outcomes[0].Point = 0
	*c.Bookmakers[0].Markets[0].Outcomes[0].ImpliedProbability = 1
	c.Bookmakers[0].Markets[0].Outcomes[1].Name = "changed"
	c.Bookmakers[0].Key = "changed"

	require.NotNil(t, orig.Bookmakers[0].Markets[0].Outcomes[0].Point)
	assert.Equal(t, -3.5, *orig.Bookmakers[0].Markets[0].Outcomes[0].Point)
	assert.Equal(t, 0.52, *orig.Bookmakers[0].Markets[0].Outcomes[0].ImpliedProbability)
	assert.Equal(t, "Miami Dolphins", orig.Bookmakers[0].Markets[0].Outcomes[1].Name)
	assert.Equal(t, "draftkings", orig.Bookmakers[0].Key)
}

func TestGame_CloneNilBookmakers(t *testing.T) {
	g := Game{ID: "g1"}
	assert.Nil(t, g.Clone().Bookmakers)
}
