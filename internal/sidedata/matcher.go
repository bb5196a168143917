package sidedata

import (
	"strings"
	"unicode"

	"github.com/mselser95/sharpline/pkg/types"
)

// Matcher finds the betting row that belongs to a game.
type Matcher interface {
	Match(game *types.Game, rows []BettingPercentages) (*BettingPercentages, bool)
}

// ExactKeyMatcher matches rows carrying the provider's game id.
type ExactKeyMatcher struct{}

// Match implements Matcher.
func (ExactKeyMatcher) Match(game *types.Game, rows []BettingPercentages) (*BettingPercentages, bool) {
	for i := range rows {
		if rows[i].GameID != "" && rows[i].GameID == game.ID {
			return &rows[i], true
		}
	}
	return nil, false
}

// NormalizedNameMatcher matches on both team names after normalization.
// Names are equal when their normalized forms are equal, or when one side
// is a bare nickname ("Bills") that equals the other's last word
// ("Buffalo Bills"). Substrings never match.
type NormalizedNameMatcher struct{}

// Match implements Matcher.
func (NormalizedNameMatcher) Match(game *types.Game, rows []BettingPercentages) (*BettingPercentages, bool) {
	for i := range rows {
		away, home := rows[i].Teams()
		if SameTeam(away, game.AwayTeam) && SameTeam(home, game.HomeTeam) {
			return &rows[i], true
		}
	}
	return nil, false
}

// ChainMatcher tries each matcher in order.
type ChainMatcher []Matcher

// DefaultMatcher matches by game id, then by team names.
func DefaultMatcher() ChainMatcher {
	return ChainMatcher{ExactKeyMatcher{}, NormalizedNameMatcher{}}
}

// Match implements Matcher.
func (c ChainMatcher) Match(game *types.Game, rows []BettingPercentages) (*BettingPercentages, bool) {
	for _, m := range c {
		if row, ok := m.Match(game, rows); ok {
			return row, true
		}
	}
	return nil, false
}

// SameTeam compares two team names after normalization.
func SameTeam(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	wa, wb := strings.Fields(na), strings.Fields(nb)
	switch {
	case len(wa) == 1 && len(wb) > 1:
		return wa[0] == wb[len(wb)-1]
	case len(wb) == 1 && len(wa) > 1:
		return wb[0] == wa[len(wa)-1]
	default:
		return false
	}
}

// NormalizeName lowercases, drops punctuation and collapses whitespace.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
