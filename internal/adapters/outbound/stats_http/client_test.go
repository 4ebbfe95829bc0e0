package stats_http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/draft-lottery/internal/core/league"
)

func testClient(url string, retries int) *Client {
	return NewClient(Options{
		BaseURL:         url,
		Season:          "2025-26",
		Timeout:         2 * time.Second,
		Retries:         retries,
		Backoff:         time.Millisecond,
		RequestInterval: time.Millisecond,
	})
}

func samplePayload(t *testing.T, withOpp bool) []byte {
	t.Helper()
	body, err := EncodeTeams(league.SampleTeams(), withOpp)
	require.NoError(t, err)
	return body
}

func TestFetchTeams_SetsQueryAndHeaders(t *testing.T) {
	payload := samplePayload(t, true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, dashPath, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2025-26", q.Get("Season"))
		assert.Equal(t, "Regular Season", q.Get("SeasonType"))
		assert.Equal(t, "PerGame", q.Get("PerMode"))
		assert.Equal(t, "00", q.Get("LeagueID"))
		assert.True(t, q.Has("College"))
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "https://www.nba.com/", r.Header.Get("Referer"))
		assert.Equal(t, "https://www.nba.com", r.Header.Get("Origin"))
		w.Write(payload)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 1)
	assert.Equal(t, "live", c.Name())

	teams, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, league.SampleTeams(), teams)
}

func TestFetchTeams_RetriesThenSucceeds(t *testing.T) {
	payload := samplePayload(t, false)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusInternalServerError)
			return
		}
		w.Write(payload)
	}))
	defer srv.Close()

	teams, err := testClient(srv.URL, 4).FetchTeams(context.Background(), "2025-26")
	require.NoError(t, err)
	assert.Len(t, teams, 30)
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetchTeams_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 2).FetchTeams(context.Background(), "2025-26")
	require.Error(t, err)
	var se *statusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.code)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetchTeams_ZeroRetriesStillTriesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 0).FetchTeams(context.Background(), "2025-26")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetchTeams_WrongTeamCount(t *testing.T) {
	body, err := EncodeTeams(league.SampleTeams()[:29], true)
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	_, err = testClient(srv.URL, 1).FetchTeams(context.Background(), "2025-26")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 30 teams")
}

func TestFetchTeams_CoalescesConcurrentCalls(t *testing.T) {
	payload := samplePayload(t, true)
	release := make(chan struct{})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.Write(payload)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 1)
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.FetchTeams(context.Background(), "2025-26")
		}(i)
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetchTeams_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testClient(srv.URL, 3).FetchTeams(ctx, "2025-26")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetchTeams_SharedFetchSurvivesFirstCallerCancel(t *testing.T) {
	payload := samplePayload(t, true)
	release := make(chan struct{})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.Write(payload)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 1)
	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.FetchTeams(ctx, "2025-26")
		first <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	var teams []league.TeamRecord
	second := make(chan error, 1)
	go func() {
		var err error
		teams, err = c.FetchTeams(context.Background(), "2025-26")
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	require.ErrorIs(t, <-first, context.Canceled)

	close(release)
	require.NoError(t, <-second)
	assert.Len(t, teams, 30)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetchBudget_CoversRetries(t *testing.T) {
	c := NewClient(Options{Timeout: 10 * time.Second, Retries: 3, Backoff: 2 * time.Second, RequestInterval: time.Second})
	// 3 * (10s + 1s) + 2s*1 + 2s*2
	assert.Equal(t, 39*time.Second, c.fetchBudget())
}
