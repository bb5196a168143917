package oddsmath

import (
	"fmt"
	"sort"

	"github.com/mselser95/sharpline/pkg/types"
)

// RemoveVig removes the bookmaker margin from a two-way market with the multiplicative
// method. Inputs and outputs are percentages.
//
// -110 / -110 → 52.38 / 52.38 → 50 / 50.
func RemoveVig(prob1, prob2 float64) (fair1, fair2 float64, err error) {
	if prob1 <= 0 || prob1 >= 100 || prob2 <= 0 || prob2 >= 100 {
		return 0, 0, fmt.Errorf("probabilities must be between 0 and 100")
	}

	total := prob1 + prob2
	if total <= 100 {
		return 0, 0, fmt.Errorf("no vig detected: probabilities sum to %.2f", total)
	}

	return prob1 / total * 100, prob2 / total * 100, nil
}

// Overround returns the bookmaker margin of a market in percentage points.
func Overround(probabilities []float64) float64 {
	var total float64
	for _, p := range probabilities {
		total += p
	}
	if total <= 100 {
		return 0
	}
	return total - 100
}

// FairSentiment is PublicSentiment with the margin removed: each book's two-way
// market is devigged before averaging the side of interest. Books whose market
// is not two-way or carries no margin are skipped.
func FairSentiment(game *types.Game, marketKey string) (pct float64, ok bool) {
	side := game.HomeTeam
	if marketKey == types.MarketTotals {
		side = types.OutcomeOver
	}

	var fair []float64
	for i := range game.Bookmakers {
		market := game.Bookmakers[i].Market(marketKey)
		if market == nil || len(market.Outcomes) != 2 {
			continue
		}

		sideIdx := -1
		for j := range market.Outcomes {
			if market.Outcomes[j].Name == side {
				sideIdx = j
			}
		}
		if sideIdx < 0 {
			continue
		}

		p1, err := ImpliedProbability(market.Outcomes[sideIdx].Price)
		if err != nil {
			continue
		}
		p2, err := ImpliedProbability(market.Outcomes[1-sideIdx].Price)
		if err != nil {
			continue
		}

		f, _, err := RemoveVig(p1, p2)
		if err != nil {
			continue
		}
		fair = append(fair, f)
	}

	if len(fair) == 0 {
		return 0, false
	}

	sort.Float64s(fair)
	var sum float64
	for _, f := range fair {
		sum += f
	}
	return sum / float64(len(fair)), true
}

// MarketOverround returns the margin of one book's market, in percentage
// points. ok is false when an outcome has an unusable price.
func MarketOverround(market *types.Market) (float64, bool) {
	probs, errs := MarketProbabilities(market.Outcomes)
	if len(errs) > 0 || len(probs) < 2 {
		return 0, false
	}

	values := make([]float64, 0, len(probs))
	for _, p := range probs {
		values = append(values, p)
	}
	return Overround(values), true
}
