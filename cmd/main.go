// Command lottery projects the rest of the season for every team, simulates
// the draft lottery and prints each team's odds of landing each pick.
//
// Usage:
//
//	go run ./cmd -source live -simulations 50000
//	go run ./cmd -serve
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/draft-lottery/internal/adapters/outbound/discord"
	"github.com/charleschow/draft-lottery/internal/config"
	"github.com/charleschow/draft-lottery/internal/core/report"
	"github.com/charleschow/draft-lottery/internal/core/tracking"
	"github.com/charleschow/draft-lottery/internal/events"
	"github.com/charleschow/draft-lottery/internal/process"
	"github.com/charleschow/draft-lottery/internal/telemetry"
)

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		telemetry.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("lottery", flag.ContinueOnError)
	fs.IntVar(&cfg.Simulations, "simulations", cfg.Simulations, "number of season + lottery simulations")
	fs.Float64Var(&cfg.Exponent, "exponent", cfg.Exponent, "Pythagorean exponent")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (negative: fresh seed every run)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel simulation shards")
	fs.StringVar(&cfg.TeamSource, "source", cfg.TeamSource, "team data source: sample, live or csv")
	fs.StringVar(&cfg.CSVPath, "csv-path", cfg.CSVPath, "path to CSV when -source=csv")
	fs.StringVar(&cfg.Season, "season", cfg.Season, "season for the live source, e.g. 2025-26")
	fs.StringVar(&cfg.Report, "report", cfg.Report, "output: lottery-top4, all-picks or json")
	fs.IntVar(&cfg.MaxPick, "max-pick", cfg.MaxPick, "max pick column to print (all-picks)")
	fs.StringVar(&cfg.LeagueRulesPath, "rules", cfg.LeagueRulesPath, "league rules YAML (default: embedded)")
	fs.StringVar(&cfg.RunsDBPath, "runs-db", cfg.RunsDBPath, "SQLite run history path (empty disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	serve := fs.Bool("serve", false, "keep running: refresh on an interval and fan out results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	if *serve {
		return process.Serve(cfg)
	}

	render, err := renderer(cfg.Report, cfg.MaxPick)
	if err != nil {
		return err
	}
	rules, err := config.LoadLeagueRules(cfg.LeagueRulesPath)
	if err != nil {
		return err
	}
	source, err := process.NewSource(cfg, rules)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bus := events.NewBus()

	if cfg.RunsDBPath != "" {
		store, err := tracking.OpenStore(cfg.RunsDBPath)
		if err != nil {
			telemetry.Warnf("Run history disabled: %v", err)
		} else {
			defer store.Close()
			tracking.NewTracker(store).Attach(bus)
		}
	}
	discord.NewNotifier(cfg.DiscordWebhookURL).Attach(ctx, bus)

	refresher := process.NewRefresher(source, process.NewParams(cfg, rules), cfg.Workers, cfg.Season, bus)
	doc, err := refresher.RunOnce(ctx)
	if err != nil {
		return err
	}

	if err := render(stdout, doc); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	telemetry.Debugf("%s", telemetry.Summary())
	return nil
}

func renderer(kind string, maxPick int) (func(io.Writer, *report.Document) error, error) {
	switch kind {
	case "lottery-top4", "":
		return report.LotteryTop4, nil
	case "all-picks":
		return func(w io.Writer, doc *report.Document) error {
			return report.AllPicks(w, doc, maxPick)
		}, nil
	case "json":
		return report.JSON, nil
	default:
		return nil, fmt.Errorf("unknown report %q (want lottery-top4, all-picks or json)", kind)
	}
}
