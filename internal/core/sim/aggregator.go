package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/core/model"
	"github.com/charleschow/draft-lottery/internal/telemetry"
)

// Params are the scalar inputs of a run.
type Params struct {
	Trials   int
	Exponent float64
	// Seed makes the run reproducible. Nil draws a fresh seed, which is
	// still recorded on the Result.
	Seed  *uint64
	Rules league.Rules
}

// DefaultParams returns the standard configuration with the given seed.
func DefaultParams(trials int, seed uint64) Params {
	return Params{
		Trials:   trials,
		Exponent: model.DefaultExponent,
		Seed:     &seed,
		Rules:    league.DefaultRules(),
	}
}

func (p Params) Validate(teams []league.TeamRecord) error {
	if p.Trials <= 0 {
		return fmt.Errorf("%w: trial count must be positive, got %d", league.ErrInvalidConfig, p.Trials)
	}
	if !(p.Exponent > 0) || math.IsInf(p.Exponent, 1) {
		return fmt.Errorf("%w: exponent must be positive, got %g", league.ErrInvalidConfig, p.Exponent)
	}
	if err := p.Rules.Validate(); err != nil {
		return err
	}
	return league.ValidateTeams(teams, p.Rules)
}

func (p Params) seed() uint64 {
	if p.Seed != nil {
		return *p.Seed
	}
	return EntropySeed()
}

// Accumulator holds raw per-team pick counts and win sums. Nothing is
// divided until a Result is read.
type Accumulator struct {
	counts  [][]int // [team][pick]
	winSums []int64
	trials  int
}

func NewAccumulator(teams, picks int) *Accumulator {
	counts := make([][]int, teams)
	cells := make([]int, teams*picks)
	for i := range counts {
		counts[i] = cells[i*picks : (i+1)*picks : (i+1)*picks]
	}
	return &Accumulator{counts: counts, winSums: make([]int64, teams)}
}

// Add tallies one trial.
func (a *Accumulator) Add(wins TrialResult, order DraftOrder) {
	for i, w := range wins {
		a.winSums[i] += int64(w)
	}
	for pick, team := range order {
		a.counts[team][pick]++
	}
	a.trials++
}

// Merge adds b into a element-wise. Merge order does not affect the sums.
func (a *Accumulator) Merge(b *Accumulator) error {
	if len(a.counts) != len(b.counts) {
		return fmt.Errorf("merge accumulators: %d teams vs %d", len(a.counts), len(b.counts))
	}
	for i := range a.counts {
		if len(a.counts[i]) != len(b.counts[i]) {
			return fmt.Errorf("merge accumulators: team %d has %d picks vs %d", i, len(a.counts[i]), len(b.counts[i]))
		}
		for j, c := range b.counts[i] {
			a.counts[i][j] += c
		}
		a.winSums[i] += b.winSums[i]
	}
	a.trials += b.trials
	return nil
}

func (a *Accumulator) Trials() int { return a.trials }

// engine owns the per-worker state for a sequence of trials.
type engine struct {
	teams        []league.TeamRecord
	probs        []float64
	seasonLength int
	alloc        *Allocator
	wins         TrialResult
}

func newEngine(teams []league.TeamRecord, p Params) *engine {
	return &engine{
		teams:        teams,
		probs:        WinProbabilities(teams, p.Exponent),
		seasonLength: p.Rules.SeasonLength,
		alloc:        NewAllocator(p.Rules),
		wins:         make(TrialResult, len(teams)),
	}
}

// trial projects the season, runs the lottery and tallies the outcome.
func (e *engine) trial(s *Stream, acc *Accumulator) error {
	ProjectSeason(e.teams, e.probs, e.seasonLength, s, e.wins)
	order, err := e.alloc.Allocate(e.wins, s)
	if err != nil {
		return err
	}
	acc.Add(e.wins, order)
	return nil
}

// Run executes params.Trials trials on one stream. Trial i starts exactly
// where trial i-1 stopped drawing, so the same seed, team order and trial
// count reproduce the same counts bit for bit.
func Run(teams []league.TeamRecord, params Params) (*Result, error) {
	if err := params.Validate(teams); err != nil {
		telemetry.Metrics.RunErrors.Inc()
		return nil, err
	}
	seed := params.seed()
	start := time.Now()

	e := newEngine(teams, params)
	stream := NewStream(seed)
	acc := NewAccumulator(len(teams), params.Rules.LeagueSize)
	for range params.Trials {
		if err := e.trial(stream, acc); err != nil {
			telemetry.Metrics.RunErrors.Inc()
			return nil, fmt.Errorf("trial %d: %w", acc.Trials()+1, err)
		}
	}

	telemetry.Metrics.TrialsSimulated.Add(int64(acc.Trials()))
	telemetry.Metrics.RunsCompleted.Inc()
	telemetry.Metrics.RunLatency.Since(start)
	telemetry.Debugf("sim: %d trials seed=%d in %s", acc.Trials(), seed, time.Since(start).Round(time.Millisecond))

	return newResult(teams, params, seed, 1, acc), nil
}
