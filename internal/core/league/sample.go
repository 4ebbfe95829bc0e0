package league

import (
	"context"
	"slices"
)

// sampleTeams is a mid-season snapshot (~50 games played) used when no live
// or file source is configured.
var sampleTeams = []TeamRecord{
	{"Celtics", 37, 12, 49, 120.7, 111.5},
	{"Cavaliers", 39, 10, 49, 122.0, 111.6},
	{"Knicks", 34, 17, 51, 118.4, 112.0},
	{"Bucks", 28, 21, 49, 114.9, 112.2},
	{"Pacers", 28, 21, 49, 116.1, 115.2},
	{"76ers", 20, 29, 49, 109.4, 112.3},
	{"Heat", 24, 25, 49, 111.2, 110.6},
	{"Magic", 26, 24, 50, 106.1, 104.8},
	{"Bulls", 22, 27, 49, 116.7, 121.3},
	{"Hawks", 24, 27, 51, 116.0, 118.4},
	{"Nets", 17, 33, 50, 105.1, 111.3},
	{"Raptors", 16, 35, 51, 111.6, 117.3},
	{"Hornets", 12, 36, 48, 106.2, 112.6},
	{"Wizards", 9, 41, 50, 108.6, 122.0},
	{"Pistons", 23, 26, 49, 113.8, 115.5},
	{"Thunder", 39, 9, 48, 118.3, 104.9},
	{"Timberwolves", 30, 22, 52, 110.7, 107.9},
	{"Nuggets", 31, 19, 50, 120.9, 116.8},
	{"Clippers", 28, 21, 49, 111.4, 108.5},
	{"Mavericks", 26, 24, 50, 115.0, 113.4},
	{"Suns", 25, 25, 50, 113.0, 111.9},
	{"Kings", 25, 24, 49, 116.8, 114.7},
	{"Lakers", 27, 20, 47, 113.1, 112.4},
	{"Warriors", 25, 25, 50, 112.2, 111.4},
	{"Rockets", 32, 18, 50, 113.1, 107.7},
	{"Grizzlies", 35, 16, 51, 123.2, 115.6},
	{"Spurs", 22, 26, 48, 112.7, 113.9},
	{"Pelicans", 12, 37, 49, 108.9, 117.0},
	{"Trail Blazers", 20, 29, 49, 108.3, 114.2},
	{"Jazz", 11, 37, 48, 111.2, 118.7},
}

// SampleTeams returns a copy of the bundled team list.
func SampleTeams() []TeamRecord { return slices.Clone(sampleTeams) }

// SampleSource serves the bundled list.
type SampleSource struct{}

func (SampleSource) Name() string { return "sample" }

func (SampleSource) Load(_ context.Context) ([]TeamRecord, error) {
	return SampleTeams(), nil
}
