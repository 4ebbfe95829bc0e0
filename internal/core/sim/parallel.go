package sim

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/telemetry"
)

const cancelCheckEvery = 1024

// RunSharded splits the trials across shards workers. Shard k draws from its
// own stream seeded with ShardSeed(seed, k); no stream is shared between
// goroutines. Results are reproducible for a fixed (seed, shards, trials)
// but differ from a serial run with the same seed. shards <= 1 is Run.
func RunSharded(ctx context.Context, teams []league.TeamRecord, params Params, shards int) (*Result, error) {
	if shards <= 1 {
		return Run(teams, params)
	}
	if err := params.Validate(teams); err != nil {
		telemetry.Metrics.RunErrors.Inc()
		return nil, err
	}
	seed := params.seed()
	start := time.Now()

	accs := make([]*Accumulator, shards)
	g, ctx := errgroup.WithContext(ctx)
	for k := range shards {
		g.Go(func() error {
			e := newEngine(teams, params)
			stream := NewStream(ShardSeed(seed, k))
			acc := NewAccumulator(len(teams), params.Rules.LeagueSize)
			n := ShardTrials(params.Trials, shards, k)
			for i := range n {
				if i%cancelCheckEvery == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				if err := e.trial(stream, acc); err != nil {
					return fmt.Errorf("shard %d trial %d: %w", k, i+1, err)
				}
			}
			accs[k] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.Metrics.RunErrors.Inc()
		return nil, err
	}

	total := NewAccumulator(len(teams), params.Rules.LeagueSize)
	for _, acc := range accs {
		if err := total.Merge(acc); err != nil {
			telemetry.Metrics.RunErrors.Inc()
			return nil, err
		}
	}

	telemetry.Metrics.TrialsSimulated.Add(int64(total.Trials()))
	telemetry.Metrics.RunsCompleted.Inc()
	telemetry.Metrics.RunLatency.Since(start)
	telemetry.Debugf("sim: %d trials over %d shards seed=%d in %s", total.Trials(), shards, seed, time.Since(start).Round(time.Millisecond))

	return newResult(teams, params, seed, shards, total), nil
}

// ShardTrials is the number of trials shard k runs; the first
// trials%shards shards take one extra.
func ShardTrials(trials, shards, k int) int {
	n := trials / shards
	if k < trials%shards {
		n++
	}
	return n
}
