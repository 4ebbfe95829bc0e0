package sim

import (
	"gonum.org/v1/gonum/floats"

	"github.com/charleschow/draft-lottery/internal/core/league"
)

// Result is the finished aggregate of a run. Counts and win sums are raw;
// probabilities and averages are derived on read.
type Result struct {
	Teams     []string
	Counts    [][]int // [team][pick]
	WinTotals []int64
	Trials    int
	Seed      uint64
	Shards    int
	Exponent  float64
	Rules     league.Rules

	index map[string]int
}

func newResult(teams []league.TeamRecord, p Params, seed uint64, shards int, acc *Accumulator) *Result {
	r := &Result{
		Teams:     make([]string, len(teams)),
		Counts:    acc.counts,
		WinTotals: acc.winSums,
		Trials:    acc.trials,
		Seed:      seed,
		Shards:    shards,
		Exponent:  p.Exponent,
		Rules:     p.Rules,
		index:     make(map[string]int, len(teams)),
	}
	for i, t := range teams {
		r.Teams[i] = t.Team
		r.index[t.Team] = i
	}
	return r
}

// Index returns the position of team in the input order.
func (r *Result) Index(team string) (int, bool) {
	i, ok := r.index[team]
	return i, ok
}

// PickProbabilities returns count/N for every pick of team i.
func (r *Result) PickProbabilities(i int) []float64 {
	probs := make([]float64, len(r.Counts[i]))
	for j, c := range r.Counts[i] {
		probs[j] = float64(c)
	}
	floats.Scale(1/float64(r.Trials), probs)
	return probs
}

// TopProbability is the chance team i lands one of the first n picks.
func (r *Result) TopProbability(i, n int) float64 {
	n = min(n, len(r.Counts[i]))
	return floats.Sum(r.PickProbabilities(i)[:n])
}

// AverageWins is the mean projected final win total of team i.
func (r *Result) AverageWins(i int) float64 {
	return float64(r.WinTotals[i]) / float64(r.Trials)
}

// ExpectedPick is the mean pick number (1-based) of team i.
func (r *Result) ExpectedPick(i int) float64 {
	var sum float64
	for j, c := range r.Counts[i] {
		sum += float64(j+1) * float64(c)
	}
	return sum / float64(r.Trials)
}
