// Package teams_csv loads team standings from a header-driven CSV file:
//
//	team,wins,losses,games_played,points_for,points_against
package teams_csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charleschow/draft-lottery/internal/core/league"
)

var requiredColumns = []string{
	"team", "wins", "losses", "games_played", "points_for", "points_against",
}

// Source reads standings from a CSV file on every Load.
type Source struct {
	Path string
}

func (s Source) Name() string { return "csv" }

func (s Source) Load(_ context.Context) ([]league.TeamRecord, error) {
	if s.Path == "" {
		return nil, errors.New("csv source: path is required")
	}
	return Load(s.Path)
}

// Load opens path and parses it with Parse.
func Load(path string) ([]league.TeamRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open teams csv: %w", err)
	}
	defer f.Close()

	teams, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return teams, nil
}

// Parse reads team rows from r. Extra columns are ignored. The team count
// is left to league.ValidateTeams.
func Parse(r io.Reader) ([]league.TeamRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		idx[h] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, fmt.Errorf("csv missing required columns: %v", missing)
	}

	var teams []league.TeamRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		t, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		teams = append(teams, t)
	}
	return teams, nil
}

func parseRow(row []string, idx map[string]int) (league.TeamRecord, error) {
	get := func(col string) string { return strings.TrimSpace(row[idx[col]]) }

	var t league.TeamRecord
	var err error
	t.Team = get("team")
	if t.Wins, err = strconv.Atoi(get("wins")); err != nil {
		return t, fmt.Errorf("wins: %w", err)
	}
	if t.Losses, err = strconv.Atoi(get("losses")); err != nil {
		return t, fmt.Errorf("losses: %w", err)
	}
	if t.GamesPlayed, err = strconv.Atoi(get("games_played")); err != nil {
		return t, fmt.Errorf("games_played: %w", err)
	}
	if t.PointsFor, err = strconv.ParseFloat(get("points_for"), 64); err != nil {
		return t, fmt.Errorf("points_for: %w", err)
	}
	if t.PointsAgainst, err = strconv.ParseFloat(get("points_against"), 64); err != nil {
		return t, fmt.Errorf("points_against: %w", err)
	}
	return t, nil
}

// Write renders teams in the format Parse reads.
func Write(w io.Writer, teams []league.TeamRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(requiredColumns); err != nil {
		return err
	}
	for _, t := range teams {
		cw.Write([]string{
			t.Team,
			strconv.Itoa(t.Wins),
			strconv.Itoa(t.Losses),
			strconv.Itoa(t.GamesPlayed),
			strconv.FormatFloat(t.PointsFor, 'f', -1, 64),
			strconv.FormatFloat(t.PointsAgainst, 'f', -1, 64),
		})
	}
	cw.Flush()
	return cw.Error()
}
