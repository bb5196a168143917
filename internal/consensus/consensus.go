// Package consensus reconstructs a single market line from every bookmaker's quotes.
package consensus

import (
	"fmt"
	"sort"

	"github.com/mselser95/sharpline/pkg/types"
)

// Aggregation methods.
const (
	MethodMean   = "mean"
	MethodMedian = "median"
)

// Engine computes consensus lines with a configurable aggregation method.
type Engine struct {
	method string
}

// NewEngine creates an engine. An empty method means mean.
func NewEngine(method string) (*Engine, error) {
	switch method {
	case "", MethodMean:
		return &Engine{method: MethodMean}, nil
	case MethodMedian:
		return &Engine{method: MethodMedian}, nil
	default:
		return nil, fmt.Errorf("unknown consensus method %q", method)
	}
}

// Method returns the aggregation method in use.
func (e *Engine) Method() string {
	return e.method
}

// Line returns the consensus point for marketKey, or nil when no book quotes it.
func (e *Engine) Line(game *types.Game, marketKey string) *float64 {
	points := Points(game, marketKey)
	if len(points) == 0 {
		return nil
	}

	if e.method == MethodMedian {
		return median(points)
	}
	return mean(points)
}

// Line is the mean consensus point for marketKey across books.
func Line(game *types.Game, marketKey string) *float64 {
	points := Points(game, marketKey)
	if len(points) == 0 {
		return nil
	}
	return mean(points)
}

// Points collects the reference point of every book quoting marketKey, sorted
// ascending. For spreads the reference is the home team's point, for totals the
// Over point. Moneyline and unknown markets have no reference point.
func Points(game *types.Game, marketKey string) []float64 {
	outcomeName, ok := referenceOutcome(game, marketKey)
	if !ok {
		return nil
	}

	points := make([]float64, 0, len(game.Bookmakers))
	for i := range game.Bookmakers {
		point, found := bookPoint(&game.Bookmakers[i], marketKey, outcomeName)
		if found {
			points = append(points, point)
		}
	}

	sort.Float64s(points)
	return points
}

// HomeSpreads returns each book's home spread point keyed by book key.
// Books without a home spread point are omitted.
func HomeSpreads(game *types.Game) map[string]float64 {
	spreads := make(map[string]float64, len(game.Bookmakers))
	for i := range game.Bookmakers {
		book := &game.Bookmakers[i]
		point, found := bookPoint(book, types.MarketSpreads, game.HomeTeam)
		if !found {
			continue
		}
		// first quote wins when a book is listed twice
		if _, seen := spreads[book.Key]; !seen {
			spreads[book.Key] = point
		}
	}
	return spreads
}

func referenceOutcome(game *types.Game, marketKey string) (string, bool) {
	switch marketKey {
	case types.MarketSpreads:
		return game.HomeTeam, true
	case types.MarketTotals:
		return types.OutcomeOver, true
	default:
		return "", false
	}
}

func bookPoint(book *types.Bookmaker, marketKey string, outcomeName string) (float64, bool) {
	market := book.Market(marketKey)
	if market == nil {
		return 0, false
	}

	outcome := market.Outcome(outcomeName)
	if outcome == nil || outcome.Point == nil {
		return 0, false
	}

	return *outcome.Point, true
}

// mean expects sorted input so the summation order is fixed.
func mean(sorted []float64) *float64 {
	var sum float64
	for _, p := range sorted {
		sum += p
	}
	v := sum / float64(len(sorted))
	return &v
}

func median(sorted []float64) *float64 {
	n := len(sorted)
	v := sorted[n/2]
	if n%2 == 0 {
		v = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return &v
}
