package playback

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/wavedeck/internal/domain/library"
)

// Controller manages the player session with an internal queue. All
// transitions are applied atomically under one lock and persisted through the
// injected store; no transition fails on bad input, malformed values are
// treated as no-ops.
type Controller struct {
	mu      sync.Mutex
	session Session
	store   Store
	eventCh chan Event
}

// NewController creates a controller with a fresh idle session.
func NewController(store Store) *Controller {
	return &Controller{
		session: Session{
			ID:    uuid.NewString(),
			Queue: make([]library.Track, 0),
		},
		store:   store,
		eventCh: make(chan Event, 16),
	}
}

// Restore loads a previously persisted session, if any. The resolved stream
// URL is dropped: signed URLs expire, callers re-resolve on demand.
func (c *Controller) Restore(ctx context.Context) error {
	stored, found, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if stored.ID == "" {
		stored.ID = c.session.ID
	}
	if stored.Queue == nil {
		stored.Queue = make([]library.Track, 0)
	}
	stored.StreamURL = ""
	c.session = stored

	zlog.Info().Msgf("playback: restored session: id=%s state=%s queue=%d",
		stored.ID, stored.State(), len(stored.Queue))

	return nil
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Session returns a copy of the current session state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.clone()
}

// Play sets the current track and starts playback. The queue is untouched.
// Valid from any state.
func (c *Controller) Play(ctx context.Context, track library.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setCurrentLocked(track)
	c.persistLocked(ctx)
	c.sendEventLocked(Event{Type: EventTrackStarted, Track: c.session.Current, State: c.session.State()})
}

// PlayFromList plays the track and replaces the queue with the tracks that
// come after it in the given list, preserving their relative order. When the
// track is not in the list, the whole list becomes the queue.
func (c *Controller) PlayFromList(ctx context.Context, track library.Track, list []library.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := 0
	for i, t := range list {
		if t.ID == track.ID {
			start = i + 1
			break
		}
	}

	queue := make([]library.Track, len(list)-start)
	copy(queue, list[start:])

	c.setCurrentLocked(track)
	c.session.Queue = queue
	c.persistLocked(ctx)
	c.sendEventLocked(Event{Type: EventTrackStarted, Track: c.session.Current, State: c.session.State()})
}

// Pause pauses playback without altering the current track, queue, or
// progress. No-op when idle.
func (c *Controller) Pause(ctx context.Context) {
	c.setPlaying(ctx, false)
}

// Resume resumes playback. No-op when idle.
func (c *Controller) Resume(ctx context.Context) {
	c.setPlaying(ctx, true)
}

func (c *Controller) setPlaying(ctx context.Context, playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Current == nil || c.session.Playing == playing {
		return
	}
	c.session.Playing = playing
	c.persistLocked(ctx)
	c.sendEventLocked(Event{Type: EventStateChanged, Track: c.session.Current, State: c.session.State()})
}

// Seek sets the progress fraction. Out-of-range values are clamped;
// non-finite values are ignored.
func (c *Controller) Seek(ctx context.Context, fraction float64) {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Current == nil {
		return
	}
	c.session.Progress = math.Min(math.Max(fraction, 0), 1)
	c.persistLocked(ctx)
	c.sendEventLocked(Event{Type: EventStateChanged, Track: c.session.Current, State: c.session.State()})
}

// Advance moves to the head of the queue and cycles the finished track to
// the tail, so a fully played queue loops instead of draining. An empty
// queue transitions to idle.
func (c *Controller) Advance(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.session.Queue) == 0 {
		c.session.Current = nil
		c.session.Playing = false
		c.session.Progress = 0
		c.session.StreamURL = ""
		c.persistLocked(ctx)
		c.sendEventLocked(Event{Type: EventIdle, State: StateIdle})
		return
	}

	previous := c.session.Current
	next := c.session.Queue[0]
	rest := make([]library.Track, 0, len(c.session.Queue))
	rest = append(rest, c.session.Queue[1:]...)
	if previous != nil {
		rest = append(rest, *previous)
	}
	c.session.Queue = rest

	playing := c.session.Playing
	c.setCurrentLocked(next)
	c.session.Playing = playing

	c.persistLocked(ctx)
	c.sendEventLocked(Event{Type: EventTrackStarted, Track: c.session.Current, State: c.session.State()})
}

// Enqueue appends a track to the queue.
func (c *Controller) Enqueue(ctx context.Context, track library.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.Queue = append(c.session.Queue, track)
	c.persistLocked(ctx)
	c.sendEventLocked(Event{Type: EventQueueChanged, Track: c.session.Current, State: c.session.State()})
}

// RemoveFromQueue removes all occurrences of a track id from the queue.
// No-op when the id is absent.
func (c *Controller) RemoveFromQueue(ctx context.Context, trackID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.session.Queue[:0]
	for _, t := range c.session.Queue {
		if t.ID != trackID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(c.session.Queue) {
		return
	}
	c.session.Queue = kept
	c.persistLocked(ctx)
	c.sendEventLocked(Event{Type: EventQueueChanged, Track: c.session.Current, State: c.session.State()})
}

// ClearQueue empties the queue. Idempotent.
func (c *Controller) ClearQueue(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.session.Queue) == 0 {
		return
	}
	c.session.Queue = make([]library.Track, 0)
	c.persistLocked(ctx)
	c.sendEventLocked(Event{Type: EventQueueChanged, Track: c.session.Current, State: c.session.State()})
}

// SetResolvedStreamURL records the signed URL for a track. A resolution that
// completes for a track no longer current is discarded.
func (c *Controller) SetResolvedStreamURL(ctx context.Context, trackID, url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Current == nil || c.session.Current.ID != trackID {
		zlog.Debug().Msgf("playback: discarding stale stream url: track=%s", trackID)
		return false
	}
	c.session.StreamURL = url
	c.persistLocked(ctx)
	return true
}

// setCurrentLocked sets the current track and resets transport state.
// Must be called with the lock held.
func (c *Controller) setCurrentLocked(track library.Track) {
	t := track
	c.session.Current = &t
	c.session.Playing = true
	c.session.Progress = 0
	c.session.StreamURL = ""
}

// persistLocked writes the session through the store. Persistence failures
// are logged, never surfaced; the in-memory transition already happened.
func (c *Controller) persistLocked(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, c.session.clone()); err != nil {
		zlog.Error().Err(err).Msg("playback: failed to persist session")
	}
}

// sendEventLocked sends an event without blocking.
// Must be called with the lock held.
func (c *Controller) sendEventLocked(e Event) {
	select {
	case c.eventCh <- e:
	default:
		// Channel full, drop event.
	}
}
