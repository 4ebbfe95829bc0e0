package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/draft-lottery/internal/core/league"
)

func sequentialWins(n int) TrialResult {
	w := make(TrialResult, n)
	for i := range w {
		w[i] = i
	}
	return w
}

func TestAllocate_CoversLeagueOnce(t *testing.T) {
	rules := league.DefaultRules()
	alloc := NewAllocator(rules)
	s := NewStream(11)

	for trial := 0; trial < 500; trial++ {
		wins := make(TrialResult, rules.LeagueSize)
		for i := range wins {
			wins[i] = int(s.Float64() * 10) // plenty of ties
		}
		order, err := alloc.Allocate(wins, s)
		require.NoError(t, err)
		require.Len(t, order, rules.LeagueSize)

		seen := make(map[int]bool, len(order))
		for _, team := range order {
			require.False(t, seen[team], "team %d drafted twice", team)
			seen[team] = true
		}
	}
}

func TestAllocate_ConsumesTeamsPlusPicksDraws(t *testing.T) {
	rules := league.DefaultRules()
	alloc := NewAllocator(rules)
	s, cs := countingStream(12)

	_, err := alloc.Allocate(sequentialWins(rules.LeagueSize), s)
	require.NoError(t, err)
	assert.Equal(t, rules.LeagueSize+rules.TopPicks, cs.draws)
}

func TestAllocate_NonLotteryAndUnpickedInRankedOrder(t *testing.T) {
	rules := league.DefaultRules()
	alloc := NewAllocator(rules)
	s := NewStream(13)

	for range 200 {
		order, err := alloc.Allocate(sequentialWins(rules.LeagueSize), s)
		require.NoError(t, err)

		// Lottery winners are always from the worst 14.
		for _, team := range order[:rules.TopPicks] {
			assert.Less(t, team, rules.LotteryTeams)
		}
		// Remaining lottery teams keep worst-to-best order.
		rest := order[rules.TopPicks:rules.LotteryTeams]
		for i := 1; i < len(rest); i++ {
			assert.Less(t, rest[i-1], rest[i])
		}
		// Playoff teams pick 15..30 by record.
		for pick := rules.LotteryTeams; pick < rules.LeagueSize; pick++ {
			assert.Equal(t, pick, order[pick])
		}
		// No team drops more than TopPicks spots below its slot.
		for pick, team := range order[:rules.LotteryTeams] {
			assert.LessOrEqual(t, pick-team, rules.TopPicks)
		}
	}
}

func TestAllocate_TicketsFollowOriginalSlot(t *testing.T) {
	// Slot 0 and slot 3 hold every ticket. If slot 0 wins pick 1, the
	// remaining drum must still credit slot 3 with its 9 tickets, so slots
	// 1 and 2 can never be drawn.
	rules := league.Rules{SeasonLength: 82, LeagueSize: 4, LotteryTeams: 4, TopPicks: 2, Tickets: []int{2, 0, 0, 9}}
	require.NoError(t, rules.Validate())
	alloc := NewAllocator(rules)
	s := NewStream(14)

	var slot0First int
	for range 2000 {
		order, err := alloc.Allocate(sequentialWins(4), s)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{0, 3}, order[:2])
		assert.Equal(t, []int{1, 2}, []int(order[2:]))
		if order[0] == 0 {
			slot0First++
		}
	}
	frac := float64(slot0First) / 2000
	assert.InDelta(t, 2.0/11.0, frac, 0.04)
}

func TestAllocate_TiesBrokenByDrawValue(t *testing.T) {
	rules := league.Rules{SeasonLength: 82, LeagueSize: 4, LotteryTeams: 2, TopPicks: 0, Tickets: []int{1, 1}}
	require.NoError(t, rules.Validate())
	alloc := NewAllocator(rules)
	s := NewStream(15)

	wins := TrialResult{30, 10, 30, 10}
	firstCount := map[int]int{}
	for range 4000 {
		order, err := alloc.Allocate(wins, s)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 3}, order[:2])
		assert.ElementsMatch(t, []int{0, 2}, order[2:])
		firstCount[order[0]]++
	}
	// A pairwise coin flip: each tied team leads about half the time.
	assert.InDelta(t, 0.5, float64(firstCount[1])/4000, 0.04)
}

func TestAllocate_RejectsWrongTeamCount(t *testing.T) {
	alloc := NewAllocator(league.DefaultRules())
	_, err := alloc.Allocate(sequentialWins(29), NewStream(1))
	assert.ErrorIs(t, err, league.ErrInvalidConfig)
}

func TestCheck_DetectsBrokenBookkeeping(t *testing.T) {
	rules := league.Rules{SeasonLength: 82, LeagueSize: 3, LotteryTeams: 2, TopPicks: 1, Tickets: []int{1, 1}}
	alloc := NewAllocator(rules)

	assert.ErrorIs(t, alloc.check(DraftOrder{0, 1}), ErrDraftOrderLength)
	assert.ErrorIs(t, alloc.check(DraftOrder{0, 1, 1}), ErrDraftOrderLength)
	assert.ErrorIs(t, alloc.check(DraftOrder{0, 1, 5}), ErrDraftOrderLength)
	assert.NoError(t, alloc.check(DraftOrder{2, 0, 1}))
}

func TestPickWeighted_SingleCandidateAlwaysWins(t *testing.T) {
	for _, u := range []float64{0, 0.3, 1, 5, 1e9, math.Inf(1)} {
		assert.Equal(t, 0, pickWeighted([]float64{7}, u), "u=%v", u)
		assert.Equal(t, 0, pickWeighted([]float64{0}, u), "u=%v", u)
	}
}

func TestPickWeighted_BoundaryAcceptsOnEqual(t *testing.T) {
	w := []float64{3, 1}
	assert.Equal(t, 0, pickWeighted(w, 0))
	assert.Equal(t, 0, pickWeighted(w, 3))
	assert.Equal(t, 1, pickWeighted(w, 3.0000001))
	assert.Equal(t, 1, pickWeighted(w, 4))
	assert.Equal(t, 1, pickWeighted(w, 4.5))
}

func TestDrawWeighted_SingleCandidateFromStream(t *testing.T) {
	s := NewStream(16)
	for range 100 {
		assert.Equal(t, 0, drawWeighted([]float64{140}, s))
	}
}
