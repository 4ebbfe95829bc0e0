package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/core/sim"
)

// Document is the machine-readable form of a run. It is also the payload
// published to watchers.
type Document struct {
	Season    string        `json:"season,omitempty"`
	Source    string        `json:"source,omitempty"`
	Generated time.Time     `json:"generated"`
	Trials    int           `json:"trials"`
	Seed      uint64        `json:"seed"`
	Shards    int           `json:"shards"`
	Exponent  float64       `json:"exponent"`
	Rules     league.Rules  `json:"rules"`
	Teams     []TeamSummary `json:"teams"`
}

// Options carries run metadata that the simulation itself does not know.
type Options struct {
	Season    string
	Generated time.Time
	Source    string
}

// NewDocument summarizes res with the metadata in opts.
func NewDocument(res *sim.Result, teams []league.TeamRecord, opts Options) (*Document, error) {
	summaries, err := Summarize(res, teams)
	if err != nil {
		return nil, err
	}
	gen := opts.Generated
	if gen.IsZero() {
		gen = time.Now()
	}
	return &Document{
		Season:    opts.Season,
		Source:    opts.Source,
		Generated: gen.UTC(),
		Trials:    res.Trials,
		Seed:      res.Seed,
		Shards:    res.Shards,
		Exponent:  res.Exponent,
		Rules:     res.Rules,
		Teams:     summaries,
	}, nil
}

// JSON writes doc indented.
func JSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
