package engine

import "time"

// EventType defines the type of engine event.
type EventType string

const (
	// EventSnapshot carries a fresh render snapshot.
	EventSnapshot EventType = "state_updated"

	// EventError carries a human-readable recoverable failure.
	EventError EventType = "error"
)

// Event represents an engine update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Message  string
	At       time.Time
}
