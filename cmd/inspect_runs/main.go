// inspect_runs prints recent simulation runs from the run history store,
// one run's full table, or one team's odds across runs.
//
// Usage:
//
//	go run ./cmd/inspect_runs -n 20
//	go run ./cmd/inspect_runs -run 12
//	go run ./cmd/inspect_runs -team "Utah Jazz"
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charleschow/draft-lottery/internal/config"
	"github.com/charleschow/draft-lottery/internal/core/tracking"
)

func main() {
	cfg := config.Load()
	n := flag.Int("n", 10, "number of recent rows to display")
	dbPath := flag.String("db", cfg.RunsDBPath, "run history database")
	runID := flag.Int64("run", 0, "show every team of one run")
	team := flag.String("team", "", "show one team's history (any alias, e.g. UTA)")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "cannot open %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	store, err := tracking.OpenStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *runID > 0:
		err = printRun(os.Stdout, store, *runID)
	case *team != "":
		err = printTeam(os.Stdout, store, *team, *n)
	default:
		err = printRecent(os.Stdout, store, *n)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func printRecent(out io.Writer, store *tracking.Store, n int) error {
	runs, err := store.RecentRuns(n)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "=== Runs ===\nStored: %d  |  Showing last %d:\n", store.RunCount(), len(runs))
	if len(runs) == 0 {
		fmt.Fprintln(out, "(no data)")
		return nil
	}

	w := newTable(out, "id", "created", "season", "source", "trials", "seed", "shards", "exponent", "teams")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%g\t%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Season, r.Source,
			r.Trials, r.Seed, r.Shards, r.Exponent, r.TeamCount)
	}
	return w.Flush()
}

func printRun(out io.Writer, store *tracking.Store, id int64) error {
	r, err := store.Run(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "=== Run %d ===\n%s  season=%s  source=%s  trials=%d  seed=%d\n",
		r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Season, r.Source, r.Trials, r.Seed)

	w := newTable(out, "team", "now", "pyth", "avg_w", "exp_pick", "p1", fmt.Sprintf("top%d", r.Rules.TopPicks))
	for _, t := range r.Teams {
		p1 := 0.0
		if len(t.PickProbabilities) > 0 {
			p1 = t.PickProbabilities[0]
		}
		fmt.Fprintf(w, "%s\t%d-%d\t%.3f\t%.2f\t%.2f\t%.1f%%\t%.1f%%\n",
			t.Team, t.Wins, t.Losses, t.WinProbability, t.AverageWins, t.ExpectedPick, 100*p1, 100*t.TopOdds)
	}
	return w.Flush()
}

func printTeam(out io.Writer, store *tracking.Store, team string, n int) error {
	hist, err := store.TeamHistory(team, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "=== %s ===\n", team)
	if len(hist) == 0 {
		fmt.Fprintln(out, "(no data)")
		return nil
	}

	w := newTable(out, "run", "created", "season", "now", "avg_w", "exp_pick", "p1", "top")
	for _, p := range hist {
		p1 := 0.0
		if len(p.PickProbabilities) > 0 {
			p1 = p.PickProbabilities[0]
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d-%d\t%.2f\t%.2f\t%.1f%%\t%.1f%%\n",
			p.RunID, p.CreatedAt.Format("2006-01-02 15:04"), p.Season, p.Wins, p.Losses,
			p.AverageWins, p.ExpectedPick, 100*p1, 100*p.TopOdds)
	}
	return w.Flush()
}

func newTable(out io.Writer, cols ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(cols, "\t"))
	fmt.Fprintln(w, strings.Repeat("----\t", len(cols)))
	return w
}
