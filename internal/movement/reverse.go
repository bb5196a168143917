package movement

// Reverse line movement directions.
const (
	TowardUnderdog = "toward_underdog"
	TowardFavorite = "toward_favorite"
	DirectionNone  = "none"

	TowardOver  = "toward_over"
	TowardUnder = "toward_under"
)

// DefaultReverseThreshold is the public percentage above which one side is
// considered heavily backed.
const DefaultReverseThreshold = 55.0

// ReverseLineMovement reports whether a spread moved against the public.
// Lines are quoted from the side publicPct refers to, so public money on that
// side pushes its line down (e.g. -3.5 to -4.5). The line drifting up while
// more than threshold percent back the side, or down while fewer than
// 100-threshold percent do, is reverse movement. Both comparisons are strict
// and an unchanged line never qualifies.
func ReverseLineMovement(opening, current, publicPct, threshold float64) bool {
	delta := current - opening

	if publicPct > threshold && delta > 0 {
		return true
	}

	if publicPct < 100-threshold && delta < 0 {
		return true
	}

	return false
}

// ReverseTotalMovement is ReverseLineMovement for totals, where overPct is the
// public share on the Over and Over money pushes the total up.
func ReverseTotalMovement(opening, current, overPct, threshold float64) bool {
	delta := current - opening

	if overPct > threshold && delta < 0 {
		return true
	}

	if overPct < 100-threshold && delta > 0 {
		return true
	}

	return false
}

// ReverseDirection describes a home spread move relative to the favorite.
// The favorite is taken from the opening line, or the current line when the
// game opened as a pick'em.
func ReverseDirection(opening, current float64) string {
	delta := current - opening
	if delta == 0 {
		return DirectionNone
	}

	favorite := opening
	if favorite == 0 {
		favorite = current
	}

	switch {
	case favorite < 0 && delta > 0, favorite > 0 && delta < 0:
		return TowardUnderdog
	default:
		return TowardFavorite
	}
}

// TotalDirection describes a totals move.
func TotalDirection(opening, current float64) string {
	switch {
	case current > opening:
		return TowardOver
	case current < opening:
		return TowardUnder
	default:
		return DirectionNone
	}
}
