package main

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/draft-lottery/internal/adapters/outbound/stats_http"
	"github.com/charleschow/draft-lottery/internal/core/league"
)

func TestMock_ServesLiveClientThroughRetries(t *testing.T) {
	srv := httptest.NewServer(newHandler(mockConfig{teams: league.SampleTeams(), failFirst: 2}))
	defer srv.Close()

	c := stats_http.NewClient(stats_http.Options{
		BaseURL:         srv.URL,
		Season:          "2025-26",
		Retries:         3,
		Backoff:         time.Millisecond,
		RequestInterval: time.Millisecond,
	})
	teams, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 30)

	want := league.SampleTeams()
	for i := range teams {
		assert.Equal(t, want[i].Team, teams[i].Team)
		assert.InDelta(t, want[i].PointsAgainst, teams[i].PointsAgainst, 1e-9)
	}
}
