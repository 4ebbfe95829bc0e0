package stats_http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/telemetry"
)

const (
	dashPath               = "/stats/leaguedashteamstats"
	defaultRequestInterval = 2 * time.Second
)

// Options configures a Client. Zero values fall back to sensible defaults.
type Options struct {
	BaseURL         string
	Season          string
	Timeout         time.Duration
	Retries         int           // total attempts; values below 1 mean 1
	Backoff         time.Duration // attempt n waits Backoff*n before retrying
	RequestInterval time.Duration // minimum spacing between requests
	LeagueSize      int
}

// Client fetches current team standings and scoring averages from the
// stats API. Concurrent loads for the same season share one request.
type Client struct {
	baseURL    string
	season     string
	httpClient *http.Client
	limiter    *rate.Limiter
	attempts   int
	backoff    time.Duration
	interval   time.Duration
	leagueSize int
	group      singleflight.Group
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.RequestInterval <= 0 {
		opts.RequestInterval = defaultRequestInterval
	}
	if opts.LeagueSize <= 0 {
		opts.LeagueSize = league.DefaultRules().LeagueSize
	}
	return &Client{
		baseURL:    opts.BaseURL,
		season:     opts.Season,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Every(opts.RequestInterval), 1),
		attempts:   max(1, opts.Retries),
		backoff:    opts.Backoff,
		interval:   opts.RequestInterval,
		leagueSize: opts.LeagueSize,
	}
}

func (c *Client) Name() string { return "live" }

// Load implements league.Source for the configured season.
func (c *Client) Load(ctx context.Context) ([]league.TeamRecord, error) {
	return c.FetchTeams(ctx, c.season)
}

// FetchTeams returns one record per team for season (e.g. "2025-26").
//
// The shared fetch is detached from any single caller's cancellation and
// bounded by fetchBudget instead; each caller still stops waiting when its
// own ctx is done.
func (c *Client) FetchTeams(ctx context.Context, season string) ([]league.TeamRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch live standings: %w", err)
	}
	ch := c.group.DoChan(season, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchBudget())
		defer cancel()
		return c.fetchWithRetry(fctx, season)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch live standings: %w", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			telemetry.Debugf("stats_http: shared in-flight fetch for %s", season)
		}
		return slices.Clone(r.Val.([]league.TeamRecord)), nil
	}
}

// fetchBudget is the longest a full retry sequence can legitimately take:
// every attempt may use the whole timeout and rate interval, plus the
// linear backoff between attempts.
func (c *Client) fetchBudget() time.Duration {
	n := time.Duration(c.attempts)
	return n*(c.httpClient.Timeout+c.interval) + c.backoff*n*(n-1)/2
}

// statusError is a non-200 response. Like transport failures it is retried.
type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("status %d", e.code) }

func (c *Client) fetchWithRetry(ctx context.Context, season string) ([]league.TeamRecord, error) {
	var body []byte
	for attempt := 1; ; attempt++ {
		var err error
		body, err = c.fetchOnce(ctx, season)
		if err == nil {
			break
		}
		telemetry.Metrics.StatsFetchErrors.Inc()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch live standings: %w", ctx.Err())
		}
		if attempt >= c.attempts {
			return nil, fmt.Errorf("fetch live standings after %d attempts (timeout=%s): %w", c.attempts, c.httpClient.Timeout, err)
		}

		wait := c.backoff * time.Duration(attempt)
		telemetry.Warnf("stats_http: attempt %d/%d failed: %v (retrying in %s)", attempt, c.attempts, err, wait)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch live standings: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	teams, err := ParseTeams(body)
	if err != nil {
		return nil, err
	}
	if len(teams) != c.leagueSize {
		return nil, fmt.Errorf("expected %d teams from stats API, got %d", c.leagueSize, len(teams))
	}

	telemetry.Infof("stats_http: fetched %d teams for %s", len(teams), season)
	return teams, nil
}

func (c *Client) fetchOnce(ctx context.Context, season string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := NewRequest(ctx, c.baseURL, season)
	if err != nil {
		return nil, err
	}

	telemetry.Metrics.StatsFetches.Inc()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	telemetry.Metrics.FetchLatency.Since(start)

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	telemetry.Debugf("stats_http: GET %s -> %d (%s)", dashPath, resp.StatusCode, time.Since(start))
	return body, nil
}

// NewRequest builds the team-stats GET for season against baseURL.
func NewRequest(ctx context.Context, baseURL, season string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+dashPath+"?"+queryParams(season).Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	// The stats host rejects requests that do not look like they come from
	// its own web front-end.
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return req, nil
}

func queryParams(season string) url.Values {
	q := url.Values{}
	for _, k := range []string{
		"College", "Conference", "Country", "DateFrom", "DateTo", "Division",
		"DraftPick", "DraftYear", "GameScope", "GameSegment", "Height",
		"Location", "Outcome", "PlayerExperience", "PlayerPosition",
		"SeasonSegment", "ShotClockRange", "StarterBench", "VsConference",
		"VsDivision", "Weight",
	} {
		q.Set(k, "")
	}
	q.Set("LastNGames", "0")
	q.Set("LeagueID", "00")
	q.Set("MeasureType", "Base")
	q.Set("Month", "0")
	q.Set("OpponentTeamID", "0")
	q.Set("PORound", "0")
	q.Set("PaceAdjust", "N")
	q.Set("PerMode", "PerGame")
	q.Set("Period", "0")
	q.Set("PlusMinus", "N")
	q.Set("Rank", "N")
	q.Set("Season", season)
	q.Set("SeasonType", "Regular Season")
	q.Set("TeamID", "0")
	q.Set("TwoWay", "0")
	return q
}
