package process

import (
	"fmt"

	"github.com/charleschow/draft-lottery/internal/adapters/inbound/teams_csv"
	"github.com/charleschow/draft-lottery/internal/adapters/outbound/stats_http"
	"github.com/charleschow/draft-lottery/internal/config"
	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/core/sim"
)

// NewSource returns the team source named by cfg.TeamSource.
func NewSource(cfg *config.Config, rules league.Rules) (league.Source, error) {
	switch cfg.TeamSource {
	case "sample", "":
		return league.SampleSource{}, nil
	case "live":
		return stats_http.NewClient(stats_http.Options{
			BaseURL:    cfg.StatsBaseURL,
			Season:     cfg.Season,
			Timeout:    cfg.HTTPTimeout,
			Retries:    cfg.HTTPRetries,
			Backoff:    cfg.HTTPBackoff,
			LeagueSize: rules.LeagueSize,
		}), nil
	case "csv":
		if cfg.CSVPath == "" {
			return nil, fmt.Errorf("%w: csv source requires a csv path", league.ErrInvalidConfig)
		}
		return teams_csv.Source{Path: cfg.CSVPath}, nil
	default:
		return nil, fmt.Errorf("%w: unknown team source %q (want sample, live or csv)", league.ErrInvalidConfig, cfg.TeamSource)
	}
}

// NewParams builds run parameters from cfg. A negative seed leaves the
// seed unset so every run draws a fresh one.
func NewParams(cfg *config.Config, rules league.Rules) sim.Params {
	p := sim.Params{
		Trials:   cfg.Simulations,
		Exponent: cfg.Exponent,
		Rules:    rules,
	}
	if cfg.Seed >= 0 {
		seed := uint64(cfg.Seed)
		p.Seed = &seed
	}
	return p
}
