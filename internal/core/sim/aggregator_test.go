package sim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/core/model"
	"github.com/charleschow/draft-lottery/internal/telemetry"
)

func assertCountInvariants(t *testing.T, res *Result) {
	t.Helper()
	picks := len(res.Counts[0])
	colSums := make([]int, picks)
	for i, row := range res.Counts {
		rowSum := 0
		for j, c := range row {
			rowSum += c
			colSums[j] += c
		}
		assert.Equal(t, res.Trials, rowSum, "team %s", res.Teams[i])
	}
	for j, s := range colSums {
		assert.Equal(t, res.Trials, s, "pick %d", j+1)
	}
}

func TestRun_Reproducible(t *testing.T) {
	teams := league.SampleTeams()
	params := DefaultParams(2000, 42)

	a, err := Run(teams, params)
	require.NoError(t, err)
	b, err := Run(teams, params)
	require.NoError(t, err)

	assert.Equal(t, a.Counts, b.Counts)
	assert.Equal(t, a.WinTotals, b.WinTotals)
	for i := range teams {
		assert.Equal(t, a.AverageWins(i), b.AverageWins(i))
	}

	c, err := Run(teams, DefaultParams(2000, 43))
	require.NoError(t, err)
	assert.NotEqual(t, a.Counts, c.Counts)
}

func TestRun_CountInvariants(t *testing.T) {
	res, err := Run(league.SampleTeams(), DefaultParams(1500, 7))
	require.NoError(t, err)
	assert.Equal(t, 1500, res.Trials)
	assertCountInvariants(t, res)
}

func TestRun_AverageWinsWithinReach(t *testing.T) {
	teams := league.SampleTeams()
	res, err := Run(teams, DefaultParams(1000, 9))
	require.NoError(t, err)

	for i, tm := range teams {
		avg := res.AverageWins(i)
		assert.GreaterOrEqual(t, avg, float64(tm.Wins), tm.Team)
		assert.LessOrEqual(t, avg, float64(tm.Wins+tm.RemainingGames(82)), tm.Team)
	}
}

func TestRun_PlayoffTeamsNeverWinLottery(t *testing.T) {
	teams := league.SampleTeams()
	res, err := Run(teams, DefaultParams(2000, 21))
	require.NoError(t, err)

	i, ok := res.Index("Cavaliers")
	require.True(t, ok)
	assert.Zero(t, res.TopProbability(i, 4))

	w, ok := res.Index("Wizards")
	require.True(t, ok)
	assert.Greater(t, res.TopProbability(w, 4), 0.3)
	assert.InDelta(t, 1.0, res.TopProbability(w, 30), 1e-9)
}

func TestRun_TwoTeamLotteryMatchesTicketShare(t *testing.T) {
	rules := league.Rules{SeasonLength: 82, LeagueSize: 2, LotteryTeams: 2, TopPicks: 1, Tickets: []int{3, 1}}
	teams := []league.TeamRecord{
		{Team: "Worst", Wins: 10, Losses: 72, GamesPlayed: 82, PointsFor: 100, PointsAgainst: 115},
		{Team: "Better", Wins: 30, Losses: 52, GamesPlayed: 82, PointsFor: 108, PointsAgainst: 110},
	}
	params := Params{Trials: 1000, Exponent: 14, Seed: seedPtr(7), Rules: rules}

	res, err := Run(teams, params)
	require.NoError(t, err)

	worst, _ := res.Index("Worst")
	share := res.PickProbabilities(worst)[0]
	assert.GreaterOrEqual(t, share, 0.70)
	assert.LessOrEqual(t, share, 0.80)
	assert.Equal(t, 10.0, res.AverageWins(worst))
	assertCountInvariants(t, res)
}

func TestRun_UnseededRecordsSeed(t *testing.T) {
	teams := league.SampleTeams()
	params := DefaultParams(200, 0)
	params.Seed = nil

	res, err := Run(teams, params)
	require.NoError(t, err)

	replay := DefaultParams(200, res.Seed)
	again, err := Run(teams, replay)
	require.NoError(t, err)
	assert.Equal(t, res.Counts, again.Counts)
}

func TestRun_InvalidConfiguration(t *testing.T) {
	teams := league.SampleTeams()

	p := DefaultParams(0, 1)
	_, err := Run(teams, p)
	assert.ErrorIs(t, err, league.ErrInvalidConfig)

	p = DefaultParams(10, 1)
	p.Exponent = 0
	_, err = Run(teams, p)
	assert.ErrorIs(t, err, league.ErrInvalidConfig)

	for _, k := range []float64{-1, math.NaN(), math.Inf(1)} {
		p = DefaultParams(10, 1)
		p.Exponent = k
		res, err := Run(teams, p)
		assert.ErrorIs(t, err, league.ErrInvalidConfig, "exponent=%v", k)
		assert.Nil(t, res)

		_, err = RunSharded(context.Background(), teams, p, 4)
		assert.ErrorIs(t, err, league.ErrInvalidConfig, "exponent=%v", k)
	}

	p = DefaultParams(10, 1)
	p.Rules.Tickets = p.Rules.Tickets[:13]
	res, err := Run(teams, p)
	assert.ErrorIs(t, err, league.ErrInvalidConfig)
	assert.Nil(t, res)

	_, err = Run(teams[:29], DefaultParams(10, 1))
	assert.ErrorIs(t, err, league.ErrInvalidConfig)
}

func TestRun_CountsRejectedRunsAsErrors(t *testing.T) {
	before := telemetry.Metrics.RunErrors.Value()

	_, err := Run(league.SampleTeams(), DefaultParams(0, 1))
	require.Error(t, err)
	_, err = RunSharded(context.Background(), league.SampleTeams(), DefaultParams(0, 1), 3)
	require.Error(t, err)

	assert.Equal(t, before+2, telemetry.Metrics.RunErrors.Value())
}

func TestRun_LargeExponentStillProjectsWins(t *testing.T) {
	teams := league.SampleTeams()
	p := DefaultParams(200, 3)
	p.Exponent = 200

	res, err := Run(teams, p)
	require.NoError(t, err)
	assertCountInvariants(t, res)

	best := 0
	for i, tm := range teams {
		if model.WinProbability(tm.PointsFor, tm.PointsAgainst, 200) > model.WinProbability(teams[best].PointsFor, teams[best].PointsAgainst, 200) {
			best = i
		}
	}
	remaining := teams[best].RemainingGames(p.Rules.SeasonLength)
	require.Positive(t, remaining)
	// Near-certain favourite: it should win almost every remaining game.
	assert.Greater(t, res.AverageWins(best), float64(teams[best].Wins)+0.9*float64(remaining))
}

func TestRunSharded_ReproducibleAndComplete(t *testing.T) {
	teams := league.SampleTeams()
	params := DefaultParams(3001, 99)

	a, err := RunSharded(context.Background(), teams, params, 4)
	require.NoError(t, err)
	b, err := RunSharded(context.Background(), teams, params, 4)
	require.NoError(t, err)

	assert.Equal(t, 3001, a.Trials)
	assert.Equal(t, 4, a.Shards)
	assert.Equal(t, a.Counts, b.Counts)
	assert.Equal(t, a.WinTotals, b.WinTotals)
	assertCountInvariants(t, a)
}

func TestRunSharded_SingleShardIsSerial(t *testing.T) {
	teams := league.SampleTeams()
	params := DefaultParams(500, 5)

	serial, err := Run(teams, params)
	require.NoError(t, err)
	one, err := RunSharded(context.Background(), teams, params, 1)
	require.NoError(t, err)
	assert.Equal(t, serial.Counts, one.Counts)
}

func TestRunSharded_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := RunSharded(ctx, league.SampleTeams(), DefaultParams(5000, 1), 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestShardTrials(t *testing.T) {
	total := 0
	for k := range 7 {
		total += ShardTrials(100, 7, k)
	}
	assert.Equal(t, 100, total)
	assert.Equal(t, 15, ShardTrials(100, 7, 0))
	assert.Equal(t, 14, ShardTrials(100, 7, 6))
	assert.Equal(t, 0, ShardTrials(2, 4, 3))
}

func TestShardSeed_Distinct(t *testing.T) {
	seen := map[uint64]bool{}
	for k := range 64 {
		s := ShardSeed(42, k)
		assert.False(t, seen[s])
		seen[s] = true
	}
}

func TestAccumulator_MergeMismatch(t *testing.T) {
	a := NewAccumulator(3, 3)
	b := NewAccumulator(2, 3)
	assert.Error(t, a.Merge(b))
}
