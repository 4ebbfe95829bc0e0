package league

import "fmt"

// TeamRecord is a team's standing at the moment of projection. Points are
// per-game averages. Records are shared read-only across every trial.
type TeamRecord struct {
	Team          string  `json:"team"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	GamesPlayed   int     `json:"games_played"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
}

func (t TeamRecord) Record() string { return fmt.Sprintf("%d-%d", t.Wins, t.Losses) }

// RemainingGames is the number of games left to project, never negative.
func (t TeamRecord) RemainingGames(seasonLength int) int {
	return max(0, seasonLength-t.GamesPlayed)
}

// ValidateTeams checks the input set against the league rules.
// Scoring averages are not checked: non-positive values are handled by the
// win-probability estimator's neutral policy.
func ValidateTeams(teams []TeamRecord, rules Rules) error {
	if len(teams) != rules.LeagueSize {
		return fmt.Errorf("%w: expected %d teams, got %d", ErrInvalidConfig, rules.LeagueSize, len(teams))
	}

	seen := make(map[string]string, len(teams))
	for i, t := range teams {
		if t.Team == "" {
			return fmt.Errorf("%w: team at position %d has no name", ErrInvalidConfig, i+1)
		}
		key := Normalize(t.Team)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: duplicate team %q (also %q)", ErrInvalidConfig, t.Team, prev)
		}
		seen[key] = t.Team

		if t.Wins < 0 || t.Losses < 0 || t.GamesPlayed < 0 {
			return fmt.Errorf("%w: %s has a negative record (%d-%d in %d)", ErrInvalidConfig, t.Team, t.Wins, t.Losses, t.GamesPlayed)
		}
		if t.Wins+t.Losses > t.GamesPlayed {
			return fmt.Errorf("%w: %s record %d-%d exceeds %d games played", ErrInvalidConfig, t.Team, t.Wins, t.Losses, t.GamesPlayed)
		}
	}
	return nil
}
