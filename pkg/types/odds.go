package types

import (
	"time"
)

// Market keys reported by the odds provider.
const (
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
	MarketH2H     = "h2h"
)

// OutcomeOver and OutcomeUnder are the outcome names used by totals markets.
const (
	OutcomeOver  = "Over"
	OutcomeUnder = "Under"
)

// Game is one fixture as returned by the odds provider, with every bookmaker's quotes.
type Game struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key,omitempty"`
	SportTitle   string      `json:"sport_title,omitempty"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Matchup returns the "Away @ Home" label used in alerts and logs.
func (g *Game) Matchup() string {
	return g.AwayTeam + " @ " + g.HomeTeam
}

// Clone returns a deep copy of the game. Stores hand out clones so callers
// may annotate or prune the result without touching cached documents.
func (g *Game) Clone() Game {
	out := *g
	if g.Bookmakers == nil {
		return out
	}

	out.Bookmakers = make([]Bookmaker, len(g.Bookmakers))
	for i, b := range g.Bookmakers {
		if b.Markets != nil {
			markets := make([]Market, len(b.Markets))
			for j, m := range b.Markets {
				if m.Outcomes != nil {
					outcomes := make([]Outcome, len(m.Outcomes))
					for k, o := range m.Outcomes {
						o.Point = cloneFloat(o.Point)
						o.ImpliedProbability = cloneFloat(o.ImpliedProbability)
						outcomes[k] = o
					}
					m.Outcomes = outcomes
				}
				markets[j] = m
			}
			b.Markets = markets
		}
		out.Bookmakers[i] = b
	}

	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Bookmaker is one sportsbook's quotes for a game at one point in time.
type Bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title,omitempty"`
	LastUpdate string   `json:"last_update,omitempty"`
	Markets    []Market `json:"markets"`
}

// Market returns the market with the given key, or nil when the book does not quote it.
func (b *Bookmaker) Market(key string) *Market {
	for i := range b.Markets {
		if b.Markets[i].Key == key {
			return &b.Markets[i]
		}
	}
	return nil
}

// Market is a priced market (spreads, totals or h2h) with its outcomes in provider order.
type Market struct {
	Key        string    `json:"key"`
	LastUpdate string    `json:"last_update,omitempty"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Outcome returns the outcome with the given name, or nil.
func (m *Market) Outcome(name string) *Outcome {
	for i := range m.Outcomes {
		if m.Outcomes[i].Name == name {
			return &m.Outcomes[i]
		}
	}
	return nil
}

// Outcome is one priced side of a market.
// Point is nil for moneyline outcomes. Price is in American format.
type Outcome struct {
	Name               string   `json:"name"`
	Price              int      `json:"price"`
	Point              *float64 `json:"point,omitempty"`
	ImpliedProbability *float64 `json:"implied_probability,omitempty"`
}

// Snapshot is the persisted document for one polling cycle.
type Snapshot struct {
	Timestamp string `json:"timestamp"`
	Games     []Game `json:"games"`
}

// SnapshotEntry is one element of a game's snapshot sequence.
type SnapshotEntry struct {
	Timestamp    time.Time `json:"-"`
	RawTimestamp string    `json:"timestamp"`
	Game         Game      `json:"game"`
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
