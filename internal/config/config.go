package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Simulation
	Simulations int
	Exponent    float64
	Seed        int64 // negative: pick a fresh seed per run
	Workers     int

	// Team source
	TeamSource string // sample, live, csv
	CSVPath    string
	Season     string

	// Stats API
	StatsBaseURL string
	HTTPTimeout  time.Duration
	HTTPRetries  int
	HTTPBackoff  time.Duration

	// League rules override; empty uses the embedded defaults
	LeagueRulesPath string

	// Output
	Report  string // lottery-top4, all-picks, json
	MaxPick int

	// Persistence + notifications
	RunsDBPath        string
	DiscordWebhookURL string

	// Serve mode
	FanoutPort      int
	RefreshInterval time.Duration

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Simulations: envInt("SIMULATIONS", 20000),
		Exponent:    envFloat("PYTHAG_EXPONENT", 14.0),
		Seed:        envInt64("SEED", 42),
		Workers:     envInt("WORKERS", 1),

		TeamSource: envStr("TEAM_SOURCE", "sample"),
		CSVPath:    envStr("CSV_PATH", ""),
		Season:     envStr("SEASON", CurrentSeason(time.Now())),

		StatsBaseURL: envStr("STATS_BASE_URL", "https://stats.nba.com"),
		HTTPTimeout:  envSeconds("HTTP_TIMEOUT_SEC", 60),
		HTTPRetries:  envInt("HTTP_RETRIES", 4),
		HTTPBackoff:  envSeconds("HTTP_BACKOFF_SEC", 2),

		LeagueRulesPath: envStr("LEAGUE_RULES_PATH", ""),

		Report:  envStr("REPORT", "lottery-top4"),
		MaxPick: envInt("MAX_PICK", 14),

		RunsDBPath:        envStr("RUNS_DB_PATH", "data/runs.db"),
		DiscordWebhookURL: envStr("DISCORD_WEBHOOK_URL", ""),

		FanoutPort:      envInt("FANOUT_PORT", 8790),
		RefreshInterval: time.Duration(envInt("REFRESH_INTERVAL_MIN", 60)) * time.Minute,

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

// CurrentSeason names the season in progress on day t, e.g. "2025-26".
// Seasons roll over in October.
func CurrentSeason(t time.Time) string {
	t = t.UTC()
	start := t.Year()
	if t.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envSeconds(key string, fallback float64) time.Duration {
	return time.Duration(envFloat(key, fallback) * float64(time.Second))
}
