package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/charleschow/draft-lottery/internal/core/league"
)

func TestProjectWins_FinishedScheduleConsumesNothing(t *testing.T) {
	s, cs := countingStream(1)
	team := league.TeamRecord{Team: "Done", Wins: 50, Losses: 32, GamesPlayed: 82, PointsFor: 115, PointsAgainst: 108}

	assert.Equal(t, 50, ProjectWins(team, 82, 0.9, s))
	assert.Equal(t, 0, cs.draws)

	// Games played beyond the season length still projects nothing.
	over := team
	over.GamesPlayed = 85
	assert.Equal(t, 50, ProjectWins(over, 82, 0.9, s))
	assert.Equal(t, 0, cs.draws)
}

func TestProjectWins_OneDrawPerRemainingGame(t *testing.T) {
	s, cs := countingStream(2)
	team := league.TeamRecord{Team: "Mid", Wins: 20, Losses: 29, GamesPlayed: 49}

	wins := ProjectWins(team, 82, 0.5, s)
	assert.Equal(t, 33, cs.draws)
	assert.GreaterOrEqual(t, wins, 20)
	assert.LessOrEqual(t, wins, 20+33)
}

func TestProjectWins_CertainOutcomes(t *testing.T) {
	s := NewStream(3)
	team := league.TeamRecord{Team: "X", Wins: 10, Losses: 10, GamesPlayed: 20}

	assert.Equal(t, 10+62, ProjectWins(team, 82, 1.0, s))
	assert.Equal(t, 10, ProjectWins(team, 82, 0.0, s))
}

func TestProjectWins_MeanTracksProbability(t *testing.T) {
	s := NewStream(4)
	team := league.TeamRecord{Team: "Y", GamesPlayed: 0}

	const n = 2000
	var total int
	for range n {
		total += ProjectWins(team, 82, 0.3, s)
	}
	mean := float64(total) / n
	assert.InDelta(t, 0.3*82, mean, 0.5)
}

func TestProjectSeason_DrawsInTeamOrder(t *testing.T) {
	teams := league.SampleTeams()
	rules := league.DefaultRules()
	probs := WinProbabilities(teams, 14)

	s, cs := countingStream(5)
	out := make(TrialResult, len(teams))
	ProjectSeason(teams, probs, rules.SeasonLength, s, out)

	want := 0
	for i, tm := range teams {
		want += tm.RemainingGames(rules.SeasonLength)
		assert.GreaterOrEqual(t, out[i], tm.Wins)
	}
	assert.Equal(t, want, cs.draws)

	// Same seed, same order: same projection.
	again := make(TrialResult, len(teams))
	ProjectSeason(teams, probs, rules.SeasonLength, NewStream(5), again)
	assert.Equal(t, out, again)
}
