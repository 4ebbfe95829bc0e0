package events

import "github.com/charleschow/draft-lottery/internal/core/report"

// RunCompletedEvent is published after a simulation finishes and its
// summary has been built.
type RunCompletedEvent struct {
	DurationMS int64            `json:"duration_ms"`
	Document   *report.Document `json:"document"`
}

// RunFailedEvent is published when loading teams or simulating fails.
type RunFailedEvent struct {
	Stage string `json:"stage"` // "load" or "simulate"
	Error string `json:"error"`
}

// RefreshRequest asks the serve loop to run now instead of waiting for
// the next tick.
type RefreshRequest struct {
	Reason string `json:"reason,omitempty"`
}
