package sim

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/core/model"
)

// TrialResult holds one trial's projected final win totals, indexed like
// the run's team slice.
type TrialResult []int

// ProjectWins adds a binomial draw over the team's remaining games to its
// current wins. One value is taken from the stream per remaining game; a
// team that has finished its schedule consumes nothing.
func ProjectWins(team league.TeamRecord, seasonLength int, p float64, s *Stream) int {
	remaining := team.RemainingGames(seasonLength)
	if remaining == 0 {
		return team.Wins
	}
	game := distuv.Bernoulli{P: p, Src: s.src}
	wins := team.Wins
	for range remaining {
		wins += int(game.Rand())
	}
	return wins
}

// WinProbabilities evaluates the estimator once per team. The values do not
// change between trials.
func WinProbabilities(teams []league.TeamRecord, exponent float64) []float64 {
	probs := make([]float64, len(teams))
	for i, t := range teams {
		probs[i] = model.WinProbability(t.PointsFor, t.PointsAgainst, exponent)
	}
	return probs
}

// ProjectSeason fills out with one final win total per team, drawing in
// team order.
func ProjectSeason(teams []league.TeamRecord, probs []float64, seasonLength int, s *Stream, out TrialResult) {
	for i, t := range teams {
		out[i] = ProjectWins(t, seasonLength, probs[i], s)
	}
}
