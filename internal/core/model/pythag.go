package model

import "math"

// DefaultExponent separates strong and weak teams sharply; basketball
// scoring fits best somewhere between 13.9 and 16.5.
const DefaultExponent = 14.0

// NeutralProbability is returned when scoring data is missing or
// non-positive, so placeholder rows still project as coin-flip teams.
const NeutralProbability = 0.5

// WinProbability estimates a team's chance of beating a league-average
// opponent from its per-game points for and against (Pythagorean
// expectation): pf^k / (pf^k + pa^k).
//
// It is evaluated as 1 / (1 + (pa/pf)^k) so that large exponents saturate
// towards 0 or 1 instead of overflowing to Inf/Inf.
func WinProbability(pointsFor, pointsAgainst, exponent float64) float64 {
	if pointsFor <= 0 || pointsAgainst <= 0 {
		return NeutralProbability
	}
	return 1 / (1 + math.Pow(pointsAgainst/pointsFor, exponent))
}
