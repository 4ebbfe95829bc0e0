package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charleschow/draft-lottery/internal/core/report"
	"github.com/charleschow/draft-lottery/internal/events"
	"github.com/charleschow/draft-lottery/internal/telemetry"
)

type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Embeds []Embed `json:"embeds,omitempty"`
}

func (n *Notifier) SendEmbed(ctx context.Context, embed Embed) error {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return n.send(ctx, webhookPayload{Embeds: []Embed{embed}})
}

func (n *Notifier) send(ctx context.Context, payload webhookPayload) error {
	if !n.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		telemetry.Warnf("discord: rate limited")
		return fmt.Errorf("discord rate limited")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook: status=%d", resp.StatusCode)
	}

	return nil
}

// --- Convenience methods for common alert types ---

const (
	ColorGreen = 0x2ECC71
	ColorRed   = 0xE74C3C
)

// summaryRows is how many of the worst teams a run summary lists.
const summaryRows = 5

// RunSummary posts the lottery odds of the teams with the fewest projected
// wins.
func (n *Notifier) RunSummary(ctx context.Context, doc *report.Document) error {
	top := doc.Rules.TopPicks
	var b strings.Builder
	for i, s := range report.Worst(doc.Teams, summaryRows) {
		fmt.Fprintf(&b, "%d. **%s** %d-%d  proj %.1f W  P1 %.1f%%  Top%d %.1f%%\n",
			i+1, s.Team, s.Wins, s.Losses, s.AverageWins,
			100*s.PickProbabilities[0], top, 100*s.TopOdds)
	}

	return n.SendEmbed(ctx, Embed{
		Title:       fmt.Sprintf("Draft Lottery Odds: %s", doc.Season),
		Description: b.String(),
		Color:       ColorGreen,
		Timestamp:   doc.Generated.UTC().Format(time.RFC3339),
		Fields: []Field{
			{Name: "Source", Value: doc.Source, Inline: true},
			{Name: "Simulations", Value: fmt.Sprintf("%d", doc.Trials), Inline: true},
			{Name: "Seed", Value: fmt.Sprintf("%d", doc.Seed), Inline: true},
		},
	})
}

// RunFailed posts a failed refresh.
func (n *Notifier) RunFailed(ctx context.Context, stage, msg string) error {
	return n.SendEmbed(ctx, Embed{
		Title:       fmt.Sprintf("Lottery Refresh Failed (%s)", stage),
		Description: msg,
		Color:       ColorRed,
	})
}

// Attach posts summaries and failures published on bus. Delivery errors
// are logged by the bus.
func (n *Notifier) Attach(ctx context.Context, bus *events.Bus) {
	if !n.Enabled() {
		return
	}
	bus.Subscribe(events.EventRunCompleted, func(evt events.Event) error {
		rc, ok := evt.Payload.(events.RunCompletedEvent)
		if !ok || rc.Document == nil {
			return nil
		}
		return n.RunSummary(ctx, rc.Document)
	})
	bus.Subscribe(events.EventRunFailed, func(evt events.Event) error {
		rf, ok := evt.Payload.(events.RunFailedEvent)
		if !ok {
			return nil
		}
		return n.RunFailed(ctx, rf.Stage, rf.Error)
	})
}
