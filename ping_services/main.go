// Ping the stats API (and optionally a running fanout server) to measure
// network latency before relying on the live source.
//
// The stats host is slow and sometimes stalls for tens of seconds, which is
// why the live client defaults to a 60s timeout with retries.
//
// Usage:
//
//	go run ./ping_services                  # default: 10 requests
//	go run ./ping_services -n 20
//	go run ./ping_services -ws              # also ping the local fanout socket
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/stat"

	"github.com/charleschow/draft-lottery/internal/adapters/outbound/stats_http"
	"github.com/charleschow/draft-lottery/internal/config"
)

func main() {
	cfg := config.Load()
	n := flag.Int("n", 10, "Number of requests per endpoint")
	base := flag.String("base", cfg.StatsBaseURL, "stats API base URL")
	season := flag.String("season", cfg.Season, "season to request")
	ws := flag.Bool("ws", false, "Also measure fanout WebSocket ping/pong latency")
	fanoutAddr := flag.String("fanout", fmt.Sprintf("localhost:%d", cfg.FanoutPort), "fanout server host:port")
	flag.Parse()

	timeout := cfg.HTTPTimeout
	pingStats(*base, *season, *n, timeout)
	if *ws {
		pingFanout(*fanoutAddr, *n)
	}
	fmt.Println()
}

func pingStats(base, season string, n int, timeout time.Duration) {
	fmt.Printf("\n%s\n", strings.Repeat("=", 55))
	fmt.Printf("  STATS API: %s (season %s)\n", base, season)
	fmt.Printf("%s\n", strings.Repeat("=", 55))

	fmt.Println("\n  Cold-start request (DNS + TLS + HTTP):")
	ms, code, size, err := measureHTTP(base, season, &http.Client{Timeout: timeout})
	if err != nil {
		fmt.Printf("    FAILED: %v\n", err)
		return
	}
	fmt.Printf("    %.1f ms  (HTTP %d, %d bytes)\n", ms, code, size)

	fmt.Printf("\n  Warm HTTP latency (%d requests, keep-alive):\n", n)
	client := &http.Client{Timeout: timeout}
	latencies := make([]float64, 0, n)
	pad := len(fmt.Sprintf("%d", n))
	for i := 1; i <= n; i++ {
		ms, code, _, err := measureHTTP(base, season, client)
		if err != nil {
			fmt.Printf("  [%*d/%d]  FAILED: %v\n", pad, i, n, err)
			continue
		}
		latencies = append(latencies, ms)
		fmt.Printf("  [%*d/%d]  %7.1f ms  (HTTP %d)\n", pad, i, n, ms, code)
	}
	printStats(latencies, "Stats HTTP")
}

func measureHTTP(base, season string, client *http.Client) (ms float64, statusCode int, size int64, err error) {
	req, err := stats_http.NewRequest(context.Background(), base, season)
	if err != nil {
		return 0, 0, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, 0, err
	}
	defer resp.Body.Close()
	size, _ = io.Copy(io.Discard, resp.Body)
	elapsed := time.Since(start)
	return float64(elapsed.Microseconds()) / 1000, resp.StatusCode, size, nil
}

func pingFanout(addr string, n int) {
	fmt.Printf("\n%s\n", strings.Repeat("=", 55))
	fmt.Printf("  FANOUT: ws://%s/ws\n", addr)
	fmt.Printf("%s\n", strings.Repeat("=", 55))

	latencies := measureWSLatency("ws://"+addr+"/ws", n)
	pad := len(fmt.Sprintf("%d", n))
	for i, ms := range latencies {
		fmt.Printf("  [%*d/%d]  %7.1f ms  (WS ping/pong)\n", pad, i+1, n, ms)
	}
	printStats(latencies, "Fanout WebSocket")
}

func measureWSLatency(wsURL string, n int) []float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		fmt.Printf("  [!] WebSocket dial failed: %v\n", err)
		return nil
	}
	defer conn.Close()

	pongCh := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pongCh <- struct{}{}:
		default:
		}
		return nil
	})

	// Run read loop so pong frames get processed (control frames are handled during read)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	latencies := make([]float64, 0, n)
	for range n {
		start := time.Now()
		if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(5*time.Second)); err != nil {
			fmt.Printf("  [!] WS ping failed: %v\n", err)
			break
		}
		select {
		case <-pongCh:
			latencies = append(latencies, float64(time.Since(start).Microseconds())/1000)
		case <-time.After(5 * time.Second):
			fmt.Printf("  [!] WS pong timeout\n")
			return latencies
		}
	}
	return latencies
}

func printStats(latencies []float64, label string) {
	if len(latencies) < 2 {
		fmt.Printf("\n  Not enough %s samples for statistics.\n", label)
		return
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)
	mean, stdev := stat.MeanStdDev(latencies, nil)

	fmt.Printf("\n  --- %s Stats (%d requests) ---\n", label, len(latencies))
	fmt.Printf("  Min:    %7.1f ms\n", sorted[0])
	fmt.Printf("  Max:    %7.1f ms\n", sorted[len(sorted)-1])
	fmt.Printf("  Mean:   %7.1f ms\n", mean)
	fmt.Printf("  Median: %7.1f ms\n", stat.Quantile(0.5, stat.Empirical, sorted, nil))
	fmt.Printf("  Stdev:  %7.1f ms\n", stdev)
	fmt.Printf("  p95:    %7.1f ms\n", stat.Quantile(0.95, stat.Empirical, sorted, nil))
	fmt.Printf("  p99:    %7.1f ms\n", stat.Quantile(0.99, stat.Empirical, sorted, nil))
}
