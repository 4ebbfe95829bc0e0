package tracking

import (
	"fmt"

	"github.com/charleschow/draft-lottery/internal/events"
	"github.com/charleschow/draft-lottery/internal/telemetry"
)

// Tracker persists every completed run published on the bus and remembers
// the ID of the latest one.
type Tracker struct {
	store  *Store
	lastID int64
}

func NewTracker(store *Store) *Tracker {
	return &Tracker{store: store}
}

// Attach subscribes the tracker to run completions.
func (t *Tracker) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventRunCompleted, t.onRunCompleted)
}

func (t *Tracker) onRunCompleted(evt events.Event) error {
	if t == nil || t.store == nil {
		return nil
	}
	rc, ok := evt.Payload.(events.RunCompletedEvent)
	if !ok || rc.Document == nil {
		return fmt.Errorf("tracking: unexpected payload %T", evt.Payload)
	}

	id, err := t.store.InsertRun(RecordFromDocument(rc.Document))
	if err != nil {
		return fmt.Errorf("tracking: %w", err)
	}
	t.lastID = id
	telemetry.Debugf("tracking: stored run %d (%d teams, seed=%d)", id, len(rc.Document.Teams), rc.Document.Seed)
	return nil
}

// LastRunID is the ID of the most recently stored run, or 0.
func (t *Tracker) LastRunID() int64 { return t.lastID }
