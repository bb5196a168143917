package alerts

import (
	"fmt"
	"math"

	"github.com/mselser95/sharpline/internal/consensus"
	"github.com/mselser95/sharpline/internal/report"
	"github.com/mselser95/sharpline/internal/sidedata"
	"github.com/mselser95/sharpline/pkg/config"
	"github.com/mselser95/sharpline/pkg/types"
	"go.uber.org/zap"
)

// GameInput is everything the rules look at for one game.
// Report and side data are optional.
type GameInput struct {
	Game   *types.Game
	Report *report.Report
	Side   sidedata.GameSideData
}

type rule func(e *Engine, in *GameInput) []Alert

// Engine evaluates the alert rules.
type Engine struct {
	th        config.Thresholds
	consensus *consensus.Engine
	rules     []rule
	logger    *zap.Logger
}

// NewEngine creates an engine with the given thresholds. A nil consensus engine means mean.
func NewEngine(th config.Thresholds, engine *consensus.Engine, logger *zap.Logger) (*Engine, error) {
	err := th.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate thresholds: %w", err)
	}

	if engine == nil {
		engine, err = consensus.NewEngine(consensus.MethodMean)
		if err != nil {
			return nil, fmt.Errorf("create consensus engine: %w", err)
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		th:        th,
		consensus: engine,
		rules: []rule{
			checkSharpMoney,
			checkLineFlip,
			checkLargeSpread,
			checkTotalValue,
			checkTrapGame,
			checkMismatch,
			checkPublicFade,
			checkSteamMove,
			checkReverseMovement,
			checkTotalReverseMovement,
		},
		logger: logger,
	}, nil
}

// Evaluate runs every rule on every game and returns the alerts sorted by priority.
func (e *Engine) Evaluate(inputs []GameInput) []Alert {
	out := make([]Alert, 0)
	for i := range inputs {
		in := &inputs[i]
		if in.Game == nil {
			continue
		}

		for _, r := range e.rules {
			found := r(e, in)
			for _, a := range found {
				AlertsEmittedTotal.WithLabelValues(a.Type, a.Priority).Inc()
			}
			out = append(out, found...)
		}
	}

	SortByPriority(out)

	e.logger.Info("alerts-evaluated",
		zap.Int("games", len(inputs)),
		zap.Int("alerts", len(out)))

	return out
}

// currentSpread prefers the report's consensus so both agree on one number.
func (e *Engine) currentSpread(in *GameInput) *float64 {
	if in.Report != nil && in.Report.Status == report.StatusOK {
		return in.Report.Spread.Current
	}
	return e.consensus.Line(in.Game, types.MarketSpreads)
}

func (e *Engine) currentTotal(in *GameInput) *float64 {
	if in.Report != nil && in.Report.Status == report.StatusOK {
		return in.Report.Total.Current
	}
	return e.consensus.Line(in.Game, types.MarketTotals)
}

func checkSharpMoney(e *Engine, in *GameInput) []Alert {
	b := in.Side.Betting
	if b == nil || !b.SpreadBetPct.Valid || !b.SpreadMoneyPct.Valid {
		return nil
	}

	bet, money := b.SpreadBetPct.Value, b.SpreadMoneyPct.Value
	if bet == 0 || money == 0 {
		return nil
	}

	diff := SharpDifferential(bet, money)
	if math.Abs(diff) < e.th.SharpMoneyDiff {
		return nil
	}

	a := newAlert(TypeSharpMoney, PriorityHigh, in.Game)
	a.Title = fmt.Sprintf("SHARP MONEY: %.1f%% differential", math.Abs(diff))
	if diff > 0 {
		a.Description = "Money outweighs tickets on the home spread"
		a.Reasoning = fmt.Sprintf("%.1f%% of money on %.1f%% of bets backs %s", money, bet, in.Game.HomeTeam)
	} else {
		a.Description = "Tickets outweigh money on the home spread"
		a.Reasoning = fmt.Sprintf("%.1f%% of money on %.1f%% of bets, larger wagers on %s", money, bet, in.Game.AwayTeam)
	}
	a.Data["bet_pct"] = bet
	a.Data["money_pct"] = money
	a.Data["differential"] = math.Abs(diff)

	return []Alert{a}
}

func checkLineFlip(e *Engine, in *GameInput) []Alert {
	current := e.currentSpread(in)
	if current == nil {
		return nil
	}

	var opening *float64
	if in.Report != nil {
		opening = in.Report.Spread.Opening
	}

	flipped := opening != nil && *opening*(*current) < 0
	nearPickEm := math.Abs(*current) <= e.th.LineFlipMaxSpread && *current != 0
	if !flipped && !nearPickEm {
		return nil
	}

	a := newAlert(TypeLineFlip, PriorityHigh, in.Game)
	if flipped {
		a.Title = fmt.Sprintf("LINE FLIP: %s %+.1f", in.Game.HomeTeam, *current)
		a.Description = fmt.Sprintf("Home spread moved from %+.1f to %+.1f, the favorite changed", *opening, *current)
		a.Reasoning = "A favorite switch means the market has repriced the game"
		a.Data["opening_line"] = *opening
	} else {
		a.Title = fmt.Sprintf("POTENTIAL LINE FLIP: %s %+.1f", in.Game.HomeTeam, *current)
		a.Description = fmt.Sprintf("Line at %+.1f is close to a pick'em, watch for a flip", *current)
		a.Reasoning = "Small spreads often flip as money comes in"
	}
	a.Data["current_line"] = *current
	a.Data["team"] = in.Game.HomeTeam

	return []Alert{a}
}

func checkLargeSpread(e *Engine, in *GameInput) []Alert {
	current := e.currentSpread(in)
	if current == nil || math.Abs(*current) < e.th.LargeSpread {
		return nil
	}

	a := newAlert(TypeLineMovement, PriorityMedium, in.Game)
	a.Title = fmt.Sprintf("LARGE SPREAD: %s %+.1f", in.Game.HomeTeam, *current)
	a.Description = "Unusually large line suggests significant movement from the opener"
	a.Reasoning = "Big spreads often follow injury news or sharp action"
	a.Data["current_line"] = *current
	if in.Report != nil && in.Report.Spread.Movement != nil {
		a.Data["movement"] = *in.Report.Spread.Movement
	}

	return []Alert{a}
}

func checkTotalValue(e *Engine, in *GameInput) []Alert {
	line := e.currentTotal(in)
	stats := in.Side.Stats
	if line == nil || stats == nil {
		return nil
	}

	expected := ExpectedTotal(*stats, e.th.OffenseWeight, e.th.DefenseWeight)
	dev, ok := TotalDeviation(*line, expected)
	if !ok {
		return nil
	}

	var a Alert
	switch {
	case IsValueOver(*line, expected, e.th.ValueTotalRatio):
		a = newAlert(TypeValueOver, PriorityHigh, in.Game)
		a.Title = fmt.Sprintf("VALUE OVER: line %.1f, expected %.1f", *line, expected)
		a.Description = fmt.Sprintf("Total is %.1f%% below the expected total", math.Abs(dev)*100)
	case IsValueUnder(*line, expected, e.th.ValueTotalRatio):
		a = newAlert(TypeValueUnder, PriorityHigh, in.Game)
		a.Title = fmt.Sprintf("VALUE UNDER: line %.1f, expected %.1f", *line, expected)
		a.Description = fmt.Sprintf("Total is %.1f%% above the expected total", dev*100)
	default:
		return nil
	}

	a.Reasoning = fmt.Sprintf("(%.1f+%.1f)*%.1f + (%.1f+%.1f)*%.1f = %.1f",
		stats.AwayOffensePPG, stats.HomeOffensePPG, e.th.OffenseWeight,
		stats.AwayDefensePPG, stats.HomeDefensePPG, e.th.DefenseWeight, expected)
	a.Data["line"] = *line
	a.Data["expected"] = expected
	a.Data["difference"] = *line - expected
	a.Data["percent_diff"] = dev * 100

	return []Alert{a}
}

func checkTrapGame(e *Engine, in *GameInput) []Alert {
	b := in.Side.Betting
	if b == nil || !b.SpreadBetPct.Valid || !b.SpreadMoneyPct.Valid {
		return nil
	}

	bet, money := b.SpreadBetPct.Value, b.SpreadMoneyPct.Value
	if bet < e.th.TrapBetPct || money > e.th.TrapMoneyPct {
		return nil
	}

	a := newAlert(TypeTrapGame, PriorityMedium, in.Game)
	a.Title = "TRAP GAME: public vs sharps"
	a.Description = fmt.Sprintf("%.1f%% of bets but only %.1f%% of money", bet, money)
	a.Reasoning = "Public loading one side while larger wagers take the other"
	a.Data["bet_pct"] = bet
	a.Data["money_pct"] = money

	return []Alert{a}
}

func checkMismatch(e *Engine, in *GameInput) []Alert {
	s := in.Side.Stats
	if s == nil {
		return nil
	}

	sides := []struct {
		team, opponent   string
		offense, defense float64
	}{
		{in.Game.AwayTeam, in.Game.HomeTeam, s.AwayOffensePPG, s.HomeDefensePPG},
		{in.Game.HomeTeam, in.Game.AwayTeam, s.HomeOffensePPG, s.AwayDefensePPG},
	}

	var out []Alert
	for _, side := range sides {
		adv := OffensiveAdvantage(side.offense, side.defense)
		if adv < e.th.Mismatch {
			continue
		}

		a := newAlert(TypeMismatch, PriorityMedium, in.Game)
		a.Title = "OFFENSIVE MISMATCH: " + side.team
		a.Description = fmt.Sprintf("%s offense (%.1f ppg) vs %s defense (%.1f ppg allowed)",
			side.team, side.offense, side.opponent, side.defense)
		a.Reasoning = fmt.Sprintf("%.1f point advantage", adv)
		a.Data["team"] = side.team
		a.Data["advantage"] = adv
		a.Data["offense_ppg"] = side.offense
		a.Data["defense_ppg"] = side.defense
		out = append(out, a)
	}

	return out
}

func checkPublicFade(e *Engine, in *GameInput) []Alert {
	b := in.Side.Betting
	if b == nil || !b.SpreadBetPct.Valid {
		return nil
	}

	bet := b.SpreadBetPct.Value
	var backed, fade string
	switch {
	case bet >= e.th.PublicFade:
		backed, fade = in.Game.HomeTeam, in.Game.AwayTeam
	case bet <= 100-e.th.PublicFade:
		backed, fade = in.Game.AwayTeam, in.Game.HomeTeam
	default:
		return nil
	}

	a := newAlert(TypePublicFade, PriorityLow, in.Game)
	a.Title = fmt.Sprintf("PUBLIC FADE: %.1f%% of spread bets on %s", bet, in.Game.HomeTeam)
	a.Description = fmt.Sprintf("Extreme public betting on %s, consider %s", backed, fade)
	a.Reasoning = "The public tends to overvalue favorites and popular teams"
	a.Data["bet_pct"] = bet
	a.Data["fade_side"] = fade

	return []Alert{a}
}

func checkSteamMove(_ *Engine, in *GameInput) []Alert {
	if in.Report == nil || len(in.Report.SteamMoves) == 0 {
		return nil
	}

	move := in.Report.SteamMoves[0]
	a := newAlert(TypeSteamMove, PriorityHigh, in.Game)
	a.Title = fmt.Sprintf("STEAM MOVE: %d books moved %s", move.BooksMoved, move.Direction)
	a.Description = fmt.Sprintf("%d books moved the home spread %.1f points on average", move.BooksMoved, move.AvgMovement)
	a.Reasoning = "Near-simultaneous moves across books point to coordinated sharp action"
	a.Data["timestamp"] = move.Timestamp
	a.Data["books_moved"] = move.BooksMoved
	a.Data["avg_movement"] = move.AvgMovement
	a.Data["direction"] = move.Direction

	return []Alert{a}
}

func checkReverseMovement(_ *Engine, in *GameInput) []Alert {
	if in.Report == nil || in.Report.ReverseMovement == nil || !in.Report.ReverseMovement.Detected {
		return nil
	}

	rm := in.Report.ReverseMovement
	a := newAlert(TypeReverseMovement, PriorityHigh, in.Game)
	a.Title = "REVERSE LINE MOVEMENT: " + rm.Direction
	a.Description = fmt.Sprintf("Spread moved %+.1f against %.1f%% public support", *in.Report.Spread.Movement, rm.PublicPct)
	a.Reasoning = "A line moving away from the majority of bets suggests sharp money on the other side"
	a.Data["market"] = types.MarketSpreads
	a.Data["public_pct"] = rm.PublicPct
	a.Data["source"] = rm.Source
	a.Data["opening_line"] = *in.Report.Spread.Opening
	a.Data["current_line"] = *in.Report.Spread.Current

	return []Alert{a}
}

func checkTotalReverseMovement(_ *Engine, in *GameInput) []Alert {
	if in.Report == nil || in.Report.TotalReverse == nil || !in.Report.TotalReverse.Detected {
		return nil
	}

	rm := in.Report.TotalReverse
	a := newAlert(TypeReverseMovement, PriorityMedium, in.Game)
	a.Title = "REVERSE TOTAL MOVEMENT: " + rm.Direction
	a.Description = fmt.Sprintf("Total moved %+.1f against %.1f%% of bets on the Over", *in.Report.Total.Current-*in.Report.Total.Opening, rm.PublicPct)
	a.Reasoning = "A total moving away from the majority of bets suggests sharp money on the other side"
	a.Data["market"] = types.MarketTotals
	a.Data["over_pct"] = rm.PublicPct
	a.Data["source"] = rm.Source
	a.Data["opening_total"] = *in.Report.Total.Opening
	a.Data["current_total"] = *in.Report.Total.Current

	return []Alert{a}
}
