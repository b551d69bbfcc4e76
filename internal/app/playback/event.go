package playback

import "github.com/osa030/wavedeck/internal/domain/library"

// EventType represents a player event type.
type EventType int

const (
	EventTrackStarted EventType = iota // A new current track was set
	EventStateChanged                  // Transport state changed (pause/resume/seek)
	EventQueueChanged                  // Queue contents changed
	EventIdle                          // Player transitioned to idle
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventStateChanged:
		return "state_changed"
	case EventQueueChanged:
		return "queue_changed"
	case EventIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Event represents a player event delivered to subscribers.
type Event struct {
	Type  EventType
	Track *library.Track // Current track (nil when idle)
	State State
}
