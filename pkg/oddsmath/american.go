package oddsmath

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mselser95/sharpline/pkg/types"
)

// ErrZeroOdds is returned for an American price of 0, which encodes no real-world price.
var ErrZeroOdds = errors.New("american odds cannot be 0")

// ImpliedProbability converts American odds to an implied probability in percent.
// -110 → 52.38, +150 → 40.00. A price of 0 is rejected with an InputError.
func ImpliedProbability(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("%w: %w", &types.InputError{Field: "price", Reason: "zero"}, ErrZeroOdds)
	}

	if american < 0 {
		abs := float64(-american)
		return abs / (abs + 100.0) * 100.0, nil
	}

	return 100.0 / (float64(american) + 100.0) * 100.0, nil
}

// MarketProbabilities maps outcome name to implied probability for every priced outcome.
// Zero prices are skipped and reported in the returned error slice.
func MarketProbabilities(outcomes []types.Outcome) (map[string]float64, []error) {
	probs := make(map[string]float64, len(outcomes))
	var errs []error

	for _, out := range outcomes {
		p, err := ImpliedProbability(out.Price)
		if err != nil {
			errs = append(errs, fmt.Errorf("outcome %q: %w", out.Name, err))
			continue
		}
		probs[out.Name] = p
	}

	return probs, errs
}

// AnnotateGame fills Outcome.ImpliedProbability for every outcome with a usable price.
func AnnotateGame(game *types.Game) []error {
	var errs []error
	for b := range game.Bookmakers {
		book := &game.Bookmakers[b]
		for m := range book.Markets {
			for o := range book.Markets[m].Outcomes {
				out := &book.Markets[m].Outcomes[o]
				p, err := ImpliedProbability(out.Price)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s/%s/%s: %w", book.Key, book.Markets[m].Key, out.Name, err))
					continue
				}
				out.ImpliedProbability = &p
			}
		}
	}
	return errs
}

// PublicSentiment estimates the share of public money on the side of interest for a
// market: the home team for spreads and h2h, Over for totals. It averages the implied
// probability of that side's price across books. ok is false if no book prices it.
func PublicSentiment(game *types.Game, marketKey string) (pct float64, ok bool) {
	side := game.HomeTeam
	if marketKey == types.MarketTotals {
		side = types.OutcomeOver
	}

	var probs []float64
	for i := range game.Bookmakers {
		market := game.Bookmakers[i].Market(marketKey)
		if market == nil {
			continue
		}
		out := market.Outcome(side)
		if out == nil {
			continue
		}
		p, err := ImpliedProbability(out.Price)
		if err != nil {
			continue
		}
		probs = append(probs, p)
	}

	if len(probs) == 0 {
		return 0, false
	}

	sort.Float64s(probs)
	var sum float64
	for _, p := range probs {
		sum += p
	}
	return sum / float64(len(probs)), true
}
