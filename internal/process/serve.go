package process

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/draft-lottery/internal/adapters/outbound/discord"
	"github.com/charleschow/draft-lottery/internal/config"
	"github.com/charleschow/draft-lottery/internal/core/tracking"
	"github.com/charleschow/draft-lottery/internal/events"
	"github.com/charleschow/draft-lottery/internal/fanout"
	"github.com/charleschow/draft-lottery/internal/telemetry"
)

// Serve runs the long-lived refresh process: periodic simulations
// persisted to the run store, posted to Discord and fanned out to
// WebSocket watchers. Blocks until SIGINT/SIGTERM.
func Serve(cfg *config.Config) error {
	rules, err := config.LoadLeagueRules(cfg.LeagueRulesPath)
	if err != nil {
		return err
	}
	source, err := NewSource(cfg, rules)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bus := events.NewBus()

	// ── Run store ──────────────────────────────────────────────
	if cfg.RunsDBPath != "" {
		store, err := tracking.OpenStore(cfg.RunsDBPath)
		if err != nil {
			return fmt.Errorf("run store: %w", err)
		}
		defer store.Close()
		tracking.NewTracker(store).Attach(bus)
	}

	// ── Notifications ──────────────────────────────────────────
	discord.NewNotifier(cfg.DiscordWebhookURL).Attach(ctx, bus)

	// ── Fanout ─────────────────────────────────────────────────
	server := fanout.NewServer(bus)
	go func() {
		if err := server.ListenAndServe(ctx, cfg.FanoutPort); err != nil {
			telemetry.Errorf("fanout server: %v", err)
			cancel()
		}
	}()

	// ── Refresh loop ───────────────────────────────────────────
	refresher := NewRefresher(source, NewParams(cfg, rules), cfg.Workers, cfg.Season, bus)
	telemetry.Infof("Serving %s lottery odds from %s every %s on :%d", cfg.Season, source.Name(), cfg.RefreshInterval, cfg.FanoutPort)
	refresher.Loop(ctx, cfg.RefreshInterval)

	telemetry.Infof("Shutdown complete  %s", telemetry.Summary())
	return nil
}
