// watch connects to a running lottery server (lottery -serve) and prints
// every refreshed odds table as it arrives.
//
// Usage:
//
//	go run ./cmd/watch -addr localhost:8790 -refresh
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charleschow/draft-lottery/internal/config"
	"github.com/charleschow/draft-lottery/internal/core/report"
	"github.com/charleschow/draft-lottery/internal/events"
	"github.com/charleschow/draft-lottery/internal/fanout"
	"github.com/charleschow/draft-lottery/internal/telemetry"
)

func main() {
	cfg := config.Load()
	addr := flag.String("addr", fmt.Sprintf("localhost:%d", cfg.FanoutPort), "fanout server host:port")
	refresh := flag.Bool("refresh", false, "ask the server for an immediate re-run on connect")
	all := flag.Bool("all", false, "print every pick column instead of the lottery table")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bus := events.NewBus()
	subscribe(bus, os.Stdout, *all, cfg.MaxPick)

	if *refresh {
		go func() {
			// Give the socket a moment so the watcher sees the result.
			time.Sleep(time.Second)
			if err := requestRefresh(ctx, *addr); err != nil {
				telemetry.Warnf("refresh request: %v", err)
			}
		}()
	}

	telemetry.Infof("Watching %s (Ctrl-C to stop)", *addr)
	fanout.NewClient(*addr, bus).ConnectWithRetry(ctx)
}

func subscribe(bus *events.Bus, out io.Writer, all bool, maxPick int) {
	bus.Subscribe(events.EventRunCompleted, func(evt events.Event) error {
		rc, ok := evt.Payload.(events.RunCompletedEvent)
		if !ok || rc.Document == nil {
			return nil
		}
		fmt.Fprintf(out, "\n[%s] run from %s in %dms\n", evt.Timestamp.Local().Format("3:04:05 PM"), evt.Source, rc.DurationMS)
		if all {
			return report.AllPicks(out, rc.Document, maxPick)
		}
		return report.LotteryTop4(out, rc.Document)
	})
	bus.Subscribe(events.EventRunFailed, func(evt events.Event) error {
		rf, ok := evt.Payload.(events.RunFailedEvent)
		if !ok {
			return nil
		}
		fmt.Fprintf(out, "\n[%s] refresh failed during %s: %s\n", evt.Timestamp.Local().Format("3:04:05 PM"), rf.Stage, rf.Error)
		return nil
	})
}

func requestRefresh(ctx context.Context, addr string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+addr+"/refresh", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
