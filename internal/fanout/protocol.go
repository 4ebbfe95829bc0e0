package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/draft-lottery/internal/events"
)

// Envelope is the wire format for events sent over the fanout WebSocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Season    string          `json:"season,omitempty"`
	Source    string          `json:"source,omitempty"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalEvent serializes an Event into a JSON-encoded Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		Season:    evt.Season,
		Source:    evt.Source,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	}
	return json.Marshal(env)
}

// UnmarshalEvent deserializes a JSON Envelope back into a typed Event.
func UnmarshalEvent(data []byte) (events.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		Season:    env.Season,
		Source:    env.Source,
		Timestamp: env.Timestamp,
	}

	switch evt.Type {
	case events.EventRunCompleted:
		var rc events.RunCompletedEvent
		if err := json.Unmarshal(env.Payload, &rc); err != nil {
			return evt, fmt.Errorf("unmarshal run_completed: %w", err)
		}
		evt.Payload = rc
	case events.EventRunFailed:
		var rf events.RunFailedEvent
		if err := json.Unmarshal(env.Payload, &rf); err != nil {
			return evt, fmt.Errorf("unmarshal run_failed: %w", err)
		}
		evt.Payload = rf
	case events.EventRefreshRequested:
		var rr events.RefreshRequest
		if err := json.Unmarshal(env.Payload, &rr); err != nil {
			return evt, fmt.Errorf("unmarshal refresh_requested: %w", err)
		}
		evt.Payload = rr
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}

	return evt, nil
}
