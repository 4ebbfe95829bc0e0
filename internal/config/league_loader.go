package config

import (
	"fmt"
	"os"

	"github.com/charleschow/draft-lottery/internal/core/league"
)

// LoadLeagueRules reads a YAML rules file. An empty path returns the
// embedded defaults.
func LoadLeagueRules(path string) (league.Rules, error) {
	if path == "" {
		return league.DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return league.Rules{}, fmt.Errorf("read league rules: %w", err)
	}

	rules, err := league.ParseRules(data)
	if err != nil {
		return league.Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}
