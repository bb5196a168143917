// Package movement detects reverse line movement and steam moves in a game's
// snapshot sequence.
package movement

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mselser95/sharpline/internal/consensus"
	"github.com/mselser95/sharpline/pkg/types"
)

// Steam scan policies.
const (
	PolicyFirst   = "first"
	PolicyLargest = "largest"
)

// Steam move directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// pointEpsilon absorbs float error in half-point arithmetic.
const pointEpsilon = 1e-9

// SteamMove is a near-simultaneous spread move across several books between two consecutive snapshots.
type SteamMove struct {
	At            time.Time `json:"-"`
	Timestamp     string    `json:"timestamp"`
	BooksMoved    int       `json:"books_moved"`
	AvgMovement   float64   `json:"avg_movement"`
	Direction     string    `json:"direction"`
	ReferenceBook string    `json:"reference_book"`
}

// Config holds steam detection parameters.
type Config struct {
	MinBooks    int     // books that must move, default 3
	MinMovement float64 // points each of them must move, default 1.5
	Policy      string  // first (default) or largest
}

// DefaultConfig returns the standard steam thresholds with the first-occurrence policy.
func DefaultConfig() Config {
	return Config{
		MinBooks:    3,
		MinMovement: 1.5,
		Policy:      PolicyFirst,
	}
}

// Detector finds steam moves in snapshot sequences.
type Detector struct {
	cfg Config
}

// NewDetector validates cfg and creates a detector.
func NewDetector(cfg Config) (*Detector, error) {
	if cfg.Policy == "" {
		cfg.Policy = PolicyFirst
	}

	if cfg.Policy != PolicyFirst && cfg.Policy != PolicyLargest {
		return nil, fmt.Errorf("unknown steam policy %q", cfg.Policy)
	}

	if cfg.MinBooks < 1 {
		return nil, fmt.Errorf("min books must be at least 1, got %d", cfg.MinBooks)
	}

	if cfg.MinMovement <= 0 {
		return nil, fmt.Errorf("min movement must be positive, got %f", cfg.MinMovement)
	}

	return &Detector{cfg: cfg}, nil
}

// Policy returns the scan policy in use.
func (d *Detector) Policy() string {
	return d.cfg.Policy
}

// SteamMove returns the steam move selected by the policy, or nil.
// Under the largest policy ties go to the earliest pair.
func (d *Detector) SteamMove(seq []types.SnapshotEntry) *SteamMove {
	if len(seq) < 2 {
		return nil
	}

	var best *SteamMove
	for i := 0; i+1 < len(seq); i++ {
		move := d.comparePair(&seq[i], &seq[i+1])
		if move == nil {
			continue
		}

		if d.cfg.Policy == PolicyFirst {
			SteamMovesDetectedTotal.Inc()
			return move
		}

		if best == nil || move.AvgMovement > best.AvgMovement+pointEpsilon {
			best = move
		}
	}

	if best != nil {
		SteamMovesDetectedTotal.Inc()
	}
	return best
}

// SteamMoves returns a steam move for every qualifying consecutive pair, in order.
func (d *Detector) SteamMoves(seq []types.SnapshotEntry) []SteamMove {
	moves := make([]SteamMove, 0)
	for i := 0; i+1 < len(seq); i++ {
		move := d.comparePair(&seq[i], &seq[i+1])
		if move != nil {
			moves = append(moves, *move)
		}
	}
	return moves
}

func (d *Detector) comparePair(prev, curr *types.SnapshotEntry) *SteamMove {
	prevSpreads := consensus.HomeSpreads(&prev.Game)
	currSpreads := consensus.HomeSpreads(&curr.Game)

	common := make([]string, 0, len(prevSpreads))
	for book := range prevSpreads {
		if _, ok := currSpreads[book]; ok {
			common = append(common, book)
		}
	}
	if len(common) == 0 {
		return nil
	}
	sort.Strings(common)

	moved := 0
	var total float64
	for _, book := range common {
		m := math.Abs(currSpreads[book] - prevSpreads[book])
		if m+pointEpsilon >= d.cfg.MinMovement {
			moved++
			total += m
		}
	}

	if moved < d.cfg.MinBooks {
		return nil
	}

	reference := common[0]
	direction := DirectionDown
	if currSpreads[reference] > prevSpreads[reference] {
		direction = DirectionUp
	}

	return &SteamMove{
		At:            curr.Timestamp,
		Timestamp:     curr.RawTimestamp,
		BooksMoved:    moved,
		AvgMovement:   total / float64(moved),
		Direction:     direction,
		ReferenceBook: reference,
	}
}
