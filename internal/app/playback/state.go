// Package playback provides the player session state machine: the current
// track, the ordered pending queue, and transport state, persisted through an
// injected store on every mutation.
package playback

import "github.com/osa030/wavedeck/internal/domain/library"

// State represents the player state. Playing is an orthogonal sub-state of
// StateLoaded, carried on the session itself.
type State int

const (
	StateIdle   State = iota // No current track
	StateLoaded              // Current track set (playing or paused)
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Session is the full player session state. Tracks are embedded by value, so
// a session survives snapshot replacement (at the cost of possibly stale
// metadata). The whole struct is what the store serializes.
type Session struct {
	ID        string          `json:"id"`
	Current   *library.Track  `json:"currentTrack"`
	Queue     []library.Track `json:"queue"`
	Playing   bool            `json:"playing"`
	Progress  float64         `json:"progress"` // fraction of current track elapsed, in [0,1]
	StreamURL string          `json:"streamUrl,omitempty"`
}

// State derives the player state from the session.
func (s Session) State() State {
	if s.Current == nil {
		return StateIdle
	}
	return StateLoaded
}

// clone returns a deep copy safe to hand outside the controller's lock.
func (s *Session) clone() Session {
	out := *s
	if s.Current != nil {
		current := *s.Current
		out.Current = &current
	}
	out.Queue = make([]library.Track, len(s.Queue))
	copy(out.Queue, s.Queue)
	return out
}
