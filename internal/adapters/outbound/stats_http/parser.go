package stats_http

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charleschow/draft-lottery/internal/core/league"
)

// --- JSON response parsing ---

type dashResponse struct {
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// ParseTeams decodes a leaguedashteamstats payload. Opponent points come
// from OPP_PTS when the payload has it, otherwise from PTS - PLUS_MINUS.
func ParseTeams(data []byte) ([]league.TeamRecord, error) {
	var resp dashResponse
	if err := json.Unmarshal(stripBOM(data), &resp); err != nil {
		return nil, fmt.Errorf("stats payload parse: %w", err)
	}
	if len(resp.ResultSets) == 0 {
		return nil, fmt.Errorf("stats payload: no result sets")
	}

	rs := resp.ResultSets[0]
	idx := make(map[string]int, len(rs.Headers))
	for i, h := range rs.Headers {
		idx[h] = i
	}
	_, hasOppPts := idx["OPP_PTS"]

	teams := make([]league.TeamRecord, 0, len(rs.RowSet))
	for n, row := range rs.RowSet {
		r := rowReader{row: row, idx: idx}

		name := r.str("TEAM_NAME")
		wins := r.num("W")
		losses := r.num("L")
		gp := r.num("GP")
		pts := r.num("PTS")

		var opp float64
		if hasOppPts {
			opp = r.num("OPP_PTS")
		} else {
			opp = pts - r.num("PLUS_MINUS")
		}

		if r.err != nil {
			return nil, fmt.Errorf("stats payload row %d: %w", n+1, r.err)
		}
		teams = append(teams, league.TeamRecord{
			Team:          name,
			Wins:          int(wins),
			Losses:        int(losses),
			GamesPlayed:   int(gp),
			PointsFor:     pts,
			PointsAgainst: opp,
		})
	}
	return teams, nil
}

// rowReader looks up row fields by header name and keeps the first error.
type rowReader struct {
	row []any
	idx map[string]int
	err error
}

func (r *rowReader) field(name string) (any, bool) {
	i, ok := r.idx[name]
	if !ok || i >= len(r.row) || r.row[i] == nil {
		if r.err == nil {
			r.err = fmt.Errorf("field %s missing from response", name)
		}
		return nil, false
	}
	return r.row[i], true
}

func (r *rowReader) num(name string) float64 {
	v, ok := r.field(name)
	if !ok {
		return 0
	}
	f, isNum := v.(float64)
	if !isNum {
		if r.err == nil {
			r.err = fmt.Errorf("field %s: expected number, got %T", name, v)
		}
		return 0
	}
	return f
}

func (r *rowReader) str(name string) string {
	v, ok := r.field(name)
	if !ok {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// EncodeTeams renders teams in the same payload shape ParseTeams reads.
// Used by the offline mock server.
func EncodeTeams(teams []league.TeamRecord, withOppPts bool) ([]byte, error) {
	headers := []string{"TEAM_ID", "TEAM_NAME", "GP", "W", "L", "PTS", "PLUS_MINUS"}
	if withOppPts {
		headers = append(headers, "OPP_PTS")
	}
	rows := make([][]any, len(teams))
	for i, t := range teams {
		row := []any{1610612737 + i, t.Team, t.GamesPlayed, t.Wins, t.Losses, t.PointsFor, t.PointsFor - t.PointsAgainst}
		if withOppPts {
			row = append(row, t.PointsAgainst)
		}
		rows[i] = row
	}
	return json.Marshal(dashResponse{ResultSets: []resultSet{{
		Name:    "LeagueDashTeamStats",
		Headers: headers,
		RowSet:  rows,
	}}})
}
