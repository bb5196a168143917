// Package alerts turns per-game reports and side data into ranked betting alerts.
package alerts

import (
	"sort"

	"github.com/google/uuid"
	"github.com/mselser95/sharpline/pkg/types"
)

// Alert types.
const (
	TypeSharpMoney      = "sharp_money"
	TypeLineFlip        = "line_flip"
	TypeLineMovement    = "line_movement"
	TypeValueOver       = "value_over"
	TypeValueUnder      = "value_under"
	TypeTrapGame        = "trap_game"
	TypeMismatch        = "mismatch"
	TypePublicFade      = "public_fade"
	TypeSteamMove       = "steam_move"
	TypeReverseMovement = "reverse_line_movement"
)

// Priorities.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Alert is one actionable finding for a game.
type Alert struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Priority    string         `json:"priority"`
	GameID      string         `json:"game_id"`
	Game        string         `json:"game"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Reasoning   string         `json:"reasoning"`
	Data        map[string]any `json:"data"`
}

func newAlert(alertType, priority string, game *types.Game) Alert {
	return Alert{
		ID:       uuid.NewString(),
		Type:     alertType,
		Priority: priority,
		GameID:   game.ID,
		Game:     game.Matchup(),
		Data:     map[string]any{},
	}
}

// PriorityRank orders priorities, HIGH first. Unknown priorities sort last.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// SortByPriority orders alerts by priority, keeping the original order within a priority.
func SortByPriority(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return PriorityRank(alerts[i].Priority) < PriorityRank(alerts[j].Priority)
	})
}

// TypeCount is the number of alerts of one type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// CountByType summarizes alerts, most frequent type first, ties by name.
func CountByType(alerts []Alert) []TypeCount {
	counts := make(map[string]int)
	for i := range alerts {
		counts[alerts[i].Type]++
	}

	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{Type: t, Count: n})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})

	return out
}
