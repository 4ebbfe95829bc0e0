package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/draft-lottery/internal/core/league"
)

func TestCurrentSeason(t *testing.T) {
	assert.Equal(t, "2025-26", CurrentSeason(time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-27", CurrentSeason(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-26", CurrentSeason(time.Date(2026, time.September, 30, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1999-00", CurrentSeason(time.Date(1999, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SIMULATIONS", "500")
	t.Setenv("PYTHAG_EXPONENT", "16.5")
	t.Setenv("SEED", "-1")
	t.Setenv("HTTP_BACKOFF_SEC", "0.5")
	t.Setenv("TEAM_SOURCE", "csv")
	t.Setenv("WORKERS", "not-a-number")

	cfg := Load()
	assert.Equal(t, 500, cfg.Simulations)
	assert.Equal(t, 16.5, cfg.Exponent)
	assert.Equal(t, int64(-1), cfg.Seed)
	assert.Equal(t, 500*time.Millisecond, cfg.HTTPBackoff)
	assert.Equal(t, "csv", cfg.TeamSource)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
}

func TestLoadLeagueRules_DefaultWhenEmpty(t *testing.T) {
	rules, err := LoadLeagueRules("")
	require.NoError(t, err)
	assert.Equal(t, league.DefaultRules(), rules)
}

func TestLoadLeagueRules_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
season_length: 72
league_size: 4
lottery_teams: 2
top_picks: 1
tickets: [3, 1]
`), 0o644))

	rules, err := LoadLeagueRules(path)
	require.NoError(t, err)
	assert.Equal(t, 72, rules.SeasonLength)
	assert.Equal(t, []int{3, 1}, rules.Tickets)
}

func TestLoadLeagueRules_RejectsMismatchedTickets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
season_length: 82
league_size: 30
lottery_teams: 14
top_picks: 4
tickets: [140, 140, 140]
`), 0o644))

	_, err := LoadLeagueRules(path)
	assert.ErrorIs(t, err, league.ErrInvalidConfig)
}

func TestLoadLeagueRules_MissingFile(t *testing.T) {
	_, err := LoadLeagueRules(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
