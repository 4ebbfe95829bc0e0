package events

import "time"

// Event is the envelope that flows through the event bus.
// Every run outcome and refresh request is wrapped in one.
type Event struct {
	ID        string
	Type      EventType
	Season    string
	Source    string
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// Simulation outcomes
	EventRunCompleted EventType = "run_completed"
	EventRunFailed    EventType = "run_failed"
	// Asks the serve loop for an immediate re-run
	EventRefreshRequested EventType = "refresh_requested"
)
