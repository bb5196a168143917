package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds groups every tunable of the signal and alert rules.
// Percentages are 0-100 unless noted.
type Thresholds struct {
	SharpMoneyDiff    float64 `yaml:"sharp_money_diff"`     // |money% - bet%|
	ValueTotalRatio   float64 `yaml:"value_total_ratio"`    // fraction, 0.20 = 20%
	Mismatch          float64 `yaml:"mismatch"`             // points per game
	PublicFade        float64 `yaml:"public_fade"`          // bet% at or beyond which to fade
	TrapBetPct        float64 `yaml:"trap_bet_pct"`         // bet% at or above
	TrapMoneyPct      float64 `yaml:"trap_money_pct"`       // money% at or below
	ReverseMovement   float64 `yaml:"reverse_movement"`     // public% strictly above (or below 100-x)
	SteamMinBooks     int     `yaml:"steam_min_books"`      // books moving together
	SteamMinMovement  float64 `yaml:"steam_min_movement"`   // points per book
	LineFlipMaxSpread float64 `yaml:"line_flip_max_spread"` // |spread| at or below, excluding 0
	LargeSpread       float64 `yaml:"large_spread"`         // |spread| at or above
	OffenseWeight     float64 `yaml:"offense_weight"`       // expected total formula
	DefenseWeight     float64 `yaml:"defense_weight"`       // expected total formula
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SharpMoneyDiff:    25.0,
		ValueTotalRatio:   0.20,
		Mismatch:          8.0,
		PublicFade:        75.0,
		TrapBetPct:        70.0,
		TrapMoneyPct:      45.0,
		ReverseMovement:   55.0,
		SteamMinBooks:     3,
		SteamMinMovement:  1.5,
		LineFlipMaxSpread: 1.5,
		LargeSpread:       14.0,
		OffenseWeight:     0.6,
		DefenseWeight:     0.4,
	}
}

// LoadFile overlays values from a YAML file. Keys absent from the file keep their current value.
func (t *Thresholds) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read thresholds file: %w", err)
	}

	err = yaml.Unmarshal(data, t)
	if err != nil {
		return fmt.Errorf("parse thresholds file: %w", err)
	}

	return nil
}

// Validate checks that thresholds are usable.
func (t *Thresholds) Validate() error {
	if t.ReverseMovement <= 50 || t.ReverseMovement >= 100 {
		return fmt.Errorf("reverse_movement must be between 50 and 100, got %f", t.ReverseMovement)
	}

	if t.SteamMinBooks < 1 {
		return fmt.Errorf("steam_min_books must be at least 1, got %d", t.SteamMinBooks)
	}

	if t.SteamMinMovement <= 0 {
		return fmt.Errorf("steam_min_movement must be positive, got %f", t.SteamMinMovement)
	}

	if t.ValueTotalRatio <= 0 || t.ValueTotalRatio >= 1 {
		return fmt.Errorf("value_total_ratio must be between 0 and 1, got %f", t.ValueTotalRatio)
	}

	if t.PublicFade <= 50 || t.PublicFade > 100 {
		return fmt.Errorf("public_fade must be between 50 and 100, got %f", t.PublicFade)
	}

	return nil
}
