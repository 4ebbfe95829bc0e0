package sim

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/charleschow/draft-lottery/internal/core/league"
)

// ErrDraftOrderLength signals broken pool bookkeeping: the allocator built
// an order that does not hold every team exactly once.
var ErrDraftOrderLength = errors.New("draft order does not cover the league")

// DraftOrder lists team indices by pick, pick 1 first.
type DraftOrder []int

// Allocator turns one trial's final standings into a draft order. It keeps
// scratch buffers between calls and is not safe for concurrent use.
type Allocator struct {
	rules league.Rules

	ranked    []int
	tiebreak  []float64
	available []int     // lottery slots still in the drum, worst first
	weights   []float64 // tickets of available, same order
	seen      []bool
}

func NewAllocator(rules league.Rules) *Allocator {
	return &Allocator{
		rules:     rules,
		ranked:    make([]int, 0, rules.LeagueSize),
		tiebreak:  make([]float64, rules.LeagueSize),
		available: make([]int, 0, rules.LotteryTeams),
		weights:   make([]float64, 0, rules.LotteryTeams),
		seen:      make([]bool, rules.LeagueSize),
	}
}

// Allocate ranks the teams, runs the weighted lottery for the top picks and
// fills the remaining picks in reverse-standings order. It consumes one
// tie-break value per team and one value per lottery pick.
func (a *Allocator) Allocate(wins TrialResult, s *Stream) (DraftOrder, error) {
	if len(wins) != a.rules.LeagueSize {
		return nil, fmt.Errorf("%w: %d final win totals for a %d-team league", league.ErrInvalidConfig, len(wins), a.rules.LeagueSize)
	}

	ranked := a.rank(wins, s)
	lotteryPool := ranked[:a.rules.LotteryTeams]

	// Slots index the ticket table by the pool's original order; removing a
	// winner never shifts another team's ticket count.
	a.available = a.available[:0]
	for slot := range lotteryPool {
		a.available = append(a.available, slot)
	}

	order := make(DraftOrder, 0, len(wins))
	for range a.rules.TopPicks {
		a.weights = a.weights[:0]
		for _, slot := range a.available {
			a.weights = append(a.weights, float64(a.rules.Tickets[slot]))
		}
		idx := drawWeighted(a.weights, s)
		order = append(order, lotteryPool[a.available[idx]])
		a.available = slices.Delete(a.available, idx, idx+1)
	}
	for _, slot := range a.available {
		order = append(order, lotteryPool[slot])
	}
	order = append(order, ranked[a.rules.LotteryTeams:]...)

	if err := a.check(order); err != nil {
		return nil, err
	}
	return order, nil
}

// rank orders team indices ascending by (wins, tie-break). The tie-break is
// only a secondary key: it settles exact ties pairwise by draw value.
func (a *Allocator) rank(wins TrialResult, s *Stream) []int {
	for i := range wins {
		a.tiebreak[i] = s.Float64()
	}
	a.ranked = a.ranked[:0]
	for i := range wins {
		a.ranked = append(a.ranked, i)
	}
	slices.SortStableFunc(a.ranked, func(x, y int) int {
		if c := cmp.Compare(wins[x], wins[y]); c != 0 {
			return c
		}
		return cmp.Compare(a.tiebreak[x], a.tiebreak[y])
	})
	return a.ranked
}

func (a *Allocator) check(order DraftOrder) error {
	if len(order) != a.rules.LeagueSize {
		return fmt.Errorf("%w: %d picks for %d teams", ErrDraftOrderLength, len(order), a.rules.LeagueSize)
	}
	clear(a.seen)
	for pick, team := range order {
		if team < 0 || team >= len(a.seen) || a.seen[team] {
			return fmt.Errorf("%w: team %d repeated or out of range at pick %d", ErrDraftOrderLength, team, pick+1)
		}
		a.seen[team] = true
	}
	return nil
}

// drawWeighted samples u ~ Uniform[0, Σw] and returns the winning index.
func drawWeighted(weights []float64, s *Stream) int {
	u := distuv.Uniform{Min: 0, Max: floats.Sum(weights), Src: s.src}.Rand()
	return pickWeighted(weights, u)
}

// pickWeighted walks the cumulative weights and returns the first index
// whose cumulative total reaches u. The last index absorbs any rounding
// overshoot.
func pickWeighted(weights []float64, u float64) int {
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if u <= cumulative {
			return i
		}
	}
	return len(weights) - 1
}
