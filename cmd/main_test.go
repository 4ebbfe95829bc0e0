package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/draft-lottery/internal/adapters/inbound/teams_csv"
	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/core/report"
	"github.com/charleschow/draft-lottery/internal/core/tracking"
)

func TestRun_LotteryTop4FromSample(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-source", "sample", "-simulations", "300", "-seed", "42", "-runs-db", "", "-season", "2025-26"}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Season: 2025-26\n"))
	assert.Contains(t, text, "Simulations: 300\n")
	assert.Contains(t, text, "Pythagorean exponent: 14.0\n")
	assert.Contains(t, text, "Top4")
}

func TestRun_ReproducibleJSON(t *testing.T) {
	args := []string{"-source", "sample", "-simulations", "300", "-seed", "7", "-runs-db", "", "-report", "json"}

	var a, b bytes.Buffer
	require.NoError(t, run(args, &a))
	require.NoError(t, run(args, &b))

	var da, db report.Document
	require.NoError(t, json.Unmarshal(a.Bytes(), &da))
	require.NoError(t, json.Unmarshal(b.Bytes(), &db))
	assert.Equal(t, da.Teams, db.Teams)
	assert.EqualValues(t, 7, da.Seed)
}

func TestRun_AllPicksFromCSVWithHistory(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "teams.csv")
	f, err := os.Create(csvPath)
	require.NoError(t, err)
	require.NoError(t, teams_csv.Write(f, league.SampleTeams()))
	require.NoError(t, f.Close())
	dbPath := filepath.Join(dir, "runs.db")

	var out bytes.Buffer
	err = run([]string{"-source", "csv", "-csv-path", csvPath, "-simulations", "200",
		"-report", "all-picks", "-max-pick", "5", "-runs-db", dbPath}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "P5")
	assert.NotContains(t, out.String(), "P6")

	store, err := tracking.OpenStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "csv", runs[0].Source)
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{"-report", "pdf", "-runs-db", ""}, &out))
	assert.Error(t, run([]string{"-source", "csv", "-runs-db", ""}, &out))
	assert.ErrorIs(t, run([]string{"-simulations", "0", "-runs-db", ""}, &out), league.ErrInvalidConfig)
	assert.Error(t, run([]string{"-bogus"}, &out))
}
