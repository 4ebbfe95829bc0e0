package model

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/charleschow/draft-lottery/internal/core/league"
)

// ErrNoGames is returned when no team has played a game yet.
var ErrNoGames = errors.New("no team has games played")

// Fit is the estimator's error against actual win rates at one exponent.
// Errors are weighted by games played.
type Fit struct {
	Exponent float64
	RMSE     float64
	MAE      float64
	Bias     float64 // mean(predicted - actual)
}

// Evaluate scores WinProbability at exponent k against each team's
// current win rate. Teams without games are skipped.
func Evaluate(teams []league.TeamRecord, k float64) (Fit, error) {
	var diffs, weights []float64
	for _, t := range teams {
		if t.GamesPlayed <= 0 {
			continue
		}
		actual := float64(t.Wins) / float64(t.GamesPlayed)
		diffs = append(diffs, WinProbability(t.PointsFor, t.PointsAgainst, k)-actual)
		weights = append(weights, float64(t.GamesPlayed))
	}
	if len(diffs) == 0 {
		return Fit{}, ErrNoGames
	}

	abs := make([]float64, len(diffs))
	sq := make([]float64, len(diffs))
	for i, d := range diffs {
		abs[i] = math.Abs(d)
		sq[i] = d * d
	}
	return Fit{
		Exponent: k,
		RMSE:     math.Sqrt(stat.Mean(sq, weights)),
		MAE:      stat.Mean(abs, weights),
		Bias:     stat.Mean(diffs, weights),
	}, nil
}

// FitExponent evaluates every exponent on the grid [lo, hi] with n points
// and returns the lowest-RMSE fit along with the whole curve.
func FitExponent(teams []league.TeamRecord, lo, hi float64, n int) (Fit, []Fit, error) {
	if n < 2 || !(lo > 0) || !(hi > lo) || math.IsInf(hi, 1) {
		return Fit{}, nil, errors.New("exponent grid needs 0 < lo < hi and at least 2 points")
	}
	grid := floats.Span(make([]float64, n), lo, hi)

	curve := make([]Fit, 0, n)
	best := Fit{RMSE: math.Inf(1)}
	for _, k := range grid {
		f, err := Evaluate(teams, k)
		if err != nil {
			return Fit{}, nil, err
		}
		curve = append(curve, f)
		if f.RMSE < best.RMSE {
			best = f
		}
	}
	return best, curve, nil
}
