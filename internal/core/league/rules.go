package league

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks configuration that must abort a run before any
// trial executes.
var ErrInvalidConfig = errors.New("invalid configuration")

//go:embed rules.yaml
var defaultRulesData []byte

// Rules are the fixed structural constants of a league's season and lottery.
type Rules struct {
	SeasonLength int   `yaml:"season_length" json:"season_length"`
	LeagueSize   int   `yaml:"league_size" json:"league_size"`
	LotteryTeams int   `yaml:"lottery_teams" json:"lottery_teams"`
	TopPicks     int   `yaml:"top_picks" json:"top_picks"`
	Tickets      []int `yaml:"tickets" json:"tickets"`
}

// DefaultRules returns the embedded rules. The embedded file is part of the
// binary, so a parse failure is a build defect and panics.
func DefaultRules() Rules {
	r, err := ParseRules(defaultRulesData)
	if err != nil {
		panic(fmt.Sprintf("league: embedded rules: %v", err))
	}
	return r
}

// ParseRules decodes and validates a YAML rules document.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse league rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

func (r Rules) Validate() error {
	switch {
	case r.SeasonLength <= 0:
		return fmt.Errorf("%w: season length must be positive, got %d", ErrInvalidConfig, r.SeasonLength)
	case r.LeagueSize <= 0:
		return fmt.Errorf("%w: league size must be positive, got %d", ErrInvalidConfig, r.LeagueSize)
	case r.LotteryTeams <= 0 || r.LotteryTeams > r.LeagueSize:
		return fmt.Errorf("%w: lottery teams must be in [1, %d], got %d", ErrInvalidConfig, r.LeagueSize, r.LotteryTeams)
	case r.TopPicks < 0 || r.TopPicks > r.LotteryTeams:
		return fmt.Errorf("%w: top picks must be in [0, %d], got %d", ErrInvalidConfig, r.LotteryTeams, r.TopPicks)
	case len(r.Tickets) != r.LotteryTeams:
		return fmt.Errorf("%w: ticket table has %d entries for %d lottery teams", ErrInvalidConfig, len(r.Tickets), r.LotteryTeams)
	}
	for i, t := range r.Tickets {
		if t < 0 {
			return fmt.Errorf("%w: ticket count at slot %d is negative (%d)", ErrInvalidConfig, i+1, t)
		}
	}
	if r.TopPicks > 0 && r.TicketTotal() <= 0 {
		return fmt.Errorf("%w: ticket table is empty", ErrInvalidConfig)
	}
	return nil
}

func (r Rules) TicketTotal() int {
	total := 0
	for _, t := range r.Tickets {
		total += t
	}
	return total
}

// TicketShare is the pick-1 probability of lottery slot i (0 = worst record).
func (r Rules) TicketShare(i int) float64 {
	total := r.TicketTotal()
	if i < 0 || i >= len(r.Tickets) || total == 0 {
		return 0
	}
	return float64(r.Tickets[i]) / float64(total)
}
