package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/charleschow/draft-lottery/internal/core/league"
)

// countingSource counts the 64-bit values drawn from the wrapped source.
type countingSource struct {
	src   rand.Source
	draws int
}

func (c *countingSource) Uint64() uint64 {
	c.draws++
	return c.src.Uint64()
}

func countingStream(seed uint64) (*Stream, *countingSource) {
	cs := &countingSource{src: rand.NewPCG(seed, pcgStream)}
	return newStream(cs), cs
}

// finishedTeams builds a league whose schedule is complete, so standings
// are fixed and only the lottery is random. Team i has i wins.
func finishedTeams(n, seasonLength int) []league.TeamRecord {
	teams := make([]league.TeamRecord, n)
	for i := range teams {
		teams[i] = league.TeamRecord{
			Team:          fmt.Sprintf("T%02d", i),
			Wins:          i,
			Losses:        seasonLength - i,
			GamesPlayed:   seasonLength,
			PointsFor:     110,
			PointsAgainst: 110,
		}
	}
	return teams
}

func seedPtr(s uint64) *uint64 { return &s }
