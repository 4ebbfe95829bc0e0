// Package report turns a finished simulation into per-team summaries and
// renders them as fixed-width tables or JSON.
package report

import (
	"fmt"
	"slices"

	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/core/model"
	"github.com/charleschow/draft-lottery/internal/core/sim"
)

// TeamSummary is one team's view of a run. Probabilities are fractions in
// [0, 1]; PickProbabilities[0] is the first pick.
type TeamSummary struct {
	Team              string    `json:"team"`
	Wins              int       `json:"wins"`
	Losses            int       `json:"losses"`
	GamesPlayed       int       `json:"games_played"`
	WinProbability    float64   `json:"win_probability"`
	AverageWins       float64   `json:"average_wins"`
	AverageLosses     float64   `json:"average_losses"`
	ExpectedPick      float64   `json:"expected_pick"`
	PickProbabilities []float64 `json:"pick_probabilities"`
	TopOdds           float64   `json:"top_odds"` // chance of any lottery-drawn pick
}

// Summarize builds one summary per team, ordered by ascending average
// wins. Ties keep input order.
func Summarize(res *sim.Result, teams []league.TeamRecord) ([]TeamSummary, error) {
	if len(teams) != len(res.Teams) {
		return nil, fmt.Errorf("summarize: %d teams given, result has %d", len(teams), len(res.Teams))
	}

	out := make([]TeamSummary, 0, len(teams))
	for _, t := range teams {
		i, ok := res.Index(t.Team)
		if !ok {
			return nil, fmt.Errorf("summarize: team %q not in result", t.Team)
		}
		avg := res.AverageWins(i)
		out = append(out, TeamSummary{
			Team:              t.Team,
			Wins:              t.Wins,
			Losses:            t.Losses,
			GamesPlayed:       t.GamesPlayed,
			WinProbability:    model.WinProbability(t.PointsFor, t.PointsAgainst, res.Exponent),
			AverageWins:       avg,
			AverageLosses:     float64(res.Rules.SeasonLength) - avg,
			ExpectedPick:      res.ExpectedPick(i),
			PickProbabilities: res.PickProbabilities(i),
			TopOdds:           res.TopProbability(i, res.Rules.TopPicks),
		})
	}

	slices.SortStableFunc(out, func(a, b TeamSummary) int {
		switch {
		case a.AverageWins < b.AverageWins:
			return -1
		case a.AverageWins > b.AverageWins:
			return 1
		}
		return 0
	})
	return out, nil
}

// Worst returns the first n summaries (the n teams with the fewest
// projected wins), or all of them when n is out of range.
func Worst(summaries []TeamSummary, n int) []TeamSummary {
	if n <= 0 || n > len(summaries) {
		return summaries
	}
	return summaries[:n]
}
