// stats_mock serves team standings in the stats API response shape so the
// live source and its retry path can be exercised offline.
//
// Usage:
//
//	go run ./cmd/stats_mock -port 8791 -fail 2
//	STATS_BASE_URL=http://localhost:8791 go run ./cmd -source live
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/charleschow/draft-lottery/internal/adapters/inbound/teams_csv"
	"github.com/charleschow/draft-lottery/internal/adapters/outbound/stats_http"
	"github.com/charleschow/draft-lottery/internal/core/league"
)

type mockConfig struct {
	teams      []league.TeamRecord
	withOppPts bool
	failFirst  int64 // respond 500 to this many requests first
	delay      time.Duration
}

func main() {
	port := flag.Int("port", 8791, "listen port")
	csvPath := flag.String("csv", "", "serve teams from this CSV instead of the bundled sample")
	fail := flag.Int64("fail", 0, "answer the first N requests with HTTP 500")
	opp := flag.Bool("opp-pts", false, "include OPP_PTS (otherwise clients derive it from PLUS_MINUS)")
	delay := flag.Duration("delay", 0, "artificial latency per request")
	flag.Parse()

	teams := league.SampleTeams()
	if *csvPath != "" {
		var err error
		if teams, err = teams_csv.Load(*csvPath); err != nil {
			fmt.Fprintf(os.Stderr, "load csv: %v\n", err)
			os.Exit(1)
		}
	}

	h := newHandler(mockConfig{teams: teams, withOppPts: *opp, failFirst: *fail, delay: *delay})

	fmt.Println("=== Stats API Mock ===")
	fmt.Printf("Serving %d teams on http://localhost:%d/stats/leaguedashteamstats\n", len(teams), *port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", *port), h); err != nil {
		fmt.Fprintf(os.Stderr, "listen: %v\n", err)
		os.Exit(1)
	}
}

func newHandler(cfg mockConfig) http.Handler {
	body, err := stats_http.EncodeTeams(cfg.teams, cfg.withOppPts)
	if err != nil {
		panic(err)
	}

	var served atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/stats/leaguedashteamstats", func(w http.ResponseWriter, r *http.Request) {
		n := served.Add(1)
		season := r.URL.Query().Get("Season")
		if cfg.delay > 0 {
			time.Sleep(cfg.delay)
		}
		if n <= cfg.failFirst {
			fmt.Printf("  #%d season=%s -> 500 (forced)\n", n, season)
			http.Error(w, "mock failure", http.StatusInternalServerError)
			return
		}
		if season == "" {
			http.Error(w, "Season is required", http.StatusBadRequest)
			return
		}
		fmt.Printf("  #%d season=%s -> 200 (%d teams)\n", n, season, len(cfg.teams))
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	})
	return mux
}
