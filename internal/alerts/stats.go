package alerts

import "github.com/mselser95/sharpline/internal/sidedata"

// ExpectedTotal projects a game total from both teams' scoring:
// (offense sum) * offenseWeight + (points allowed sum) * defenseWeight.
func ExpectedTotal(s sidedata.ScoringStats, offenseWeight, defenseWeight float64) float64 {
	offense := (s.HomeOffensePPG + s.AwayOffensePPG) * offenseWeight
	defense := (s.HomeDefensePPG + s.AwayDefensePPG) * defenseWeight
	return offense + defense
}

// SharpDifferential is money% minus bet%. Positive means money outweighs tickets.
func SharpDifferential(betPct, moneyPct float64) float64 {
	return moneyPct - betPct
}

// TotalDeviation is (line - expected) / expected. It reports false when expected is not positive.
func TotalDeviation(line, expected float64) (float64, bool) {
	if expected <= 0 {
		return 0, false
	}
	return (line - expected) / expected, true
}

// IsValueOver reports a posted total at least ratio below the expected total.
func IsValueOver(line, expected, ratio float64) bool {
	dev, ok := TotalDeviation(line, expected)
	return ok && dev <= -ratio
}

// IsValueUnder reports a posted total at least ratio above the expected total.
func IsValueUnder(line, expected, ratio float64) bool {
	dev, ok := TotalDeviation(line, expected)
	return ok && dev >= ratio
}

// OffensiveAdvantage is an offense's scoring minus what the opposing defense allows.
func OffensiveAdvantage(offensePPG, opponentDefensePPG float64) float64 {
	return offensePPG - opponentDefensePPG
}
