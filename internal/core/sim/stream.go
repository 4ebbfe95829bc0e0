package sim

import "math/rand/v2"

// pcgStream is the fixed PCG increment; the user-facing seed drives the
// state word only.
const pcgStream = 0xda3e39cb94b95bdb

// Stream is the single ordered random sequence a run consumes. Every draw
// (game result, tie-break, lottery ball) takes exactly one 64-bit value from
// the underlying source, so the sequence position after a trial depends only
// on the team list and rules, never on the outcomes themselves.
type Stream struct {
	src rand.Source
	rnd *rand.Rand
}

// NewStream returns a reproducible stream for seed.
func NewStream(seed uint64) *Stream {
	return newStream(rand.NewPCG(seed, pcgStream))
}

func newStream(src rand.Source) *Stream {
	return &Stream{src: src, rnd: rand.New(src)}
}

// Float64 returns a uniform value in [0, 1).
func (s *Stream) Float64() float64 { return s.rnd.Float64() }

// EntropySeed picks a fresh seed for runs that did not ask for
// reproducibility. The caller should log it so the run can be replayed.
func EntropySeed() uint64 { return rand.Uint64() }

// ShardSeed derives the sub-seed of shard k with SplitMix64, giving each
// parallel worker an independent stream.
func ShardSeed(seed uint64, shard int) uint64 {
	z := seed + uint64(shard+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
