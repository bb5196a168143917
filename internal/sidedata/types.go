// Package sidedata reads the betting percentages and matchup statistics
// written by the external scraper and attaches them to odds games.
package sidedata

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Stat row kinds.
const (
	KindPointsPerGame = "points_per_game"
	KindYardsPerGame  = "yards_per_game"
	KindUnknown       = "unknown"
)

// Stat row sides.
const (
	SideOffense = "offense"
	SideDefense = "defense"
)

// Percent is a 0-100 percentage that decodes from a number or a string such as "65%".
// Valid is false when the source value was missing or unparseable.
type Percent struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Percent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Percent{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		v, ok := ParsePercentage(s)
		*p = Percent{Value: v, Valid: ok}
		return nil
	}

	var f float64
	err := json.Unmarshal(data, &f)
	if err != nil {
		*p = Percent{}
		return nil
	}
	*p = Percent{Value: f, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(p.Value, 'f', -1, 64)), nil
}

// ParsePercentage converts text such as "65%", " 65.5 " or "65" to a number.
func ParsePercentage(text string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, "%", ""))
	if cleaned == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BettingPercentages is one scraped row of public betting splits.
// Spread percentages refer to the home side, total percentages to the Over.
type BettingPercentages struct {
	GameID         string  `json:"game_id,omitempty"`
	Matchup        string  `json:"matchup"`
	AwayTeam       string  `json:"away_team"`
	HomeTeam       string  `json:"home_team"`
	SpreadBetPct   Percent `json:"spread_bet_pct"`
	SpreadMoneyPct Percent `json:"spread_money_pct"`
	TotalBetPct    Percent `json:"total_bet_pct"`
	TotalMoneyPct  Percent `json:"total_money_pct"`
	Source         string  `json:"source"`
}

// Teams returns away and home team names, falling back to the "Away @ Home" matchup label.
func (b *BettingPercentages) Teams() (string, string) {
	if b.AwayTeam != "" && b.HomeTeam != "" {
		return b.AwayTeam, b.HomeTeam
	}

	for _, sep := range []string{" @ ", " at ", "@"} {
		if away, home, found := strings.Cut(b.Matchup, sep); found {
			return strings.TrimSpace(away), strings.TrimSpace(home)
		}
	}

	return b.AwayTeam, b.HomeTeam
}

// StatRow is one tagged matchup statistic.
type StatRow struct {
	Kind      string  `json:"kind"`
	Side      string  `json:"side"`
	AwayValue float64 `json:"away_value"`
	HomeValue float64 `json:"home_value"`
}

// ScoringStats holds points-per-game for both teams. Defense values are points allowed.
type ScoringStats struct {
	AwayOffensePPG float64 `json:"away_offense_ppg"`
	HomeOffensePPG float64 `json:"home_offense_ppg"`
	AwayDefensePPG float64 `json:"away_defense_ppg"`
	HomeDefensePPG float64 `json:"home_defense_ppg"`
}

// Scoring extracts points-per-game from stat rows. It reports false unless
// both an offense and a defense row are present. Later rows override earlier ones.
func Scoring(rows []StatRow) (ScoringStats, bool) {
	var (
		stats            ScoringStats
		offense, defense bool
	)

	for _, row := range rows {
		if row.Kind != KindPointsPerGame {
			continue
		}

		switch row.Side {
		case SideOffense:
			stats.AwayOffensePPG = row.AwayValue
			stats.HomeOffensePPG = row.HomeValue
			offense = true
		case SideDefense:
			stats.AwayDefensePPG = row.AwayValue
			stats.HomeDefensePPG = row.HomeValue
			defense = true
		}
	}

	return stats, offense && defense
}

// GameSideData is everything known about one game beyond its odds.
type GameSideData struct {
	Betting *BettingPercentages `json:"betting,omitempty"`
	Stats   *ScoringStats       `json:"stats,omitempty"`
}
