// calibrate fits the Pythagorean exponent to the current standings: it
// scores the win estimator against each team's actual win rate over a
// grid of exponents and prints the best fit.
//
// Usage:
//
//	go run ./cmd/calibrate
//	go run ./cmd/calibrate -source live -lo 10 -hi 18 -curve
//	go run ./cmd/calibrate -source csv -csv standings.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charleschow/draft-lottery/internal/config"
	"github.com/charleschow/draft-lottery/internal/core/league"
	"github.com/charleschow/draft-lottery/internal/core/model"
	"github.com/charleschow/draft-lottery/internal/process"
)

func main() {
	cfg := config.Load()
	flag.StringVar(&cfg.TeamSource, "source", cfg.TeamSource, "team source: sample, live or csv")
	flag.StringVar(&cfg.CSVPath, "csv", cfg.CSVPath, "standings CSV for -source csv")
	flag.StringVar(&cfg.Season, "season", cfg.Season, "season for -source live")
	lo := flag.Float64("lo", 8, "lowest exponent to try")
	hi := flag.Float64("hi", 20, "highest exponent to try")
	points := flag.Int("points", 121, "grid points between -lo and -hi")
	curve := flag.Bool("curve", false, "print the error at every grid point")
	flag.Parse()

	rules, err := config.LoadLeagueRules(cfg.LeagueRulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	source, err := process.NewSource(cfg, rules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	teams, err := source.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load teams: %v\n", err)
		os.Exit(1)
	}

	if err := report(os.Stdout, teams, cfg.Exponent, *lo, *hi, *points, *curve); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// report prints the best fit, the configured exponent for comparison and,
// optionally, the whole error curve.
func report(out io.Writer, teams []league.TeamRecord, current, lo, hi float64, n int, showCurve bool) error {
	best, curve, err := model.FitExponent(teams, lo, hi, n)
	if err != nil {
		return err
	}
	now, err := model.Evaluate(teams, current)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "── %d teams, exponent grid %.1f..%.1f (%d points) ──\n", len(teams), lo, hi, n)
	fmt.Fprintf(out, "  %-12s %8s %8s %8s %8s\n", "", "Exponent", "RMSE", "MAE", "Bias")
	printFit(out, "Best fit", best)
	printFit(out, "Configured", now)
	if best.RMSE > 0 {
		fmt.Fprintf(out, "  RMSE change if adopted: %+.1f%%\n", (best.RMSE-now.RMSE)/now.RMSE*100)
	}

	if showCurve {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %8s %8s %8s %8s\n", "Exponent", "RMSE", "MAE", "Bias")
		for _, f := range curve {
			fmt.Fprintf(out, "  %8.2f %8.4f %8.4f %+8.4f\n", f.Exponent, f.RMSE, f.MAE, f.Bias)
		}
	}
	return nil
}

func printFit(out io.Writer, label string, f model.Fit) {
	fmt.Fprintf(out, "  %-12s %8.2f %8.4f %8.4f %+8.4f\n", label, f.Exponent, f.RMSE, f.MAE, f.Bias)
}
