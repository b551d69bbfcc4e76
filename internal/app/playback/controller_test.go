package playback

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/wavedeck/internal/domain/library"
)

// recordingStore captures every persisted session in memory.
type recordingStore struct {
	saved   []Session
	initial *Session
	loadErr error
}

func (s *recordingStore) Save(_ context.Context, session Session) error {
	s.saved = append(s.saved, session)
	return nil
}

func (s *recordingStore) Load(_ context.Context) (Session, bool, error) {
	if s.loadErr != nil {
		return Session{}, false, s.loadErr
	}
	if s.initial == nil {
		return Session{}, false, nil
	}
	return *s.initial, true, nil
}

func (s *recordingStore) Clear(_ context.Context) error {
	s.initial = nil
	return nil
}

func track(id, title string) library.Track {
	return library.Track{ID: id, Title: title, Duration: 180, AlbumID: "a1", Path: "/audio/" + id}
}

func TestController_Play(t *testing.T) {
	store := &recordingStore{}
	c := NewController(store)
	ctx := context.Background()

	c.Play(ctx, track("A", "Alpha"))

	session := c.Session()
	require.NotNil(t, session.Current)
	assert.Equal(t, "A", session.Current.ID)
	assert.True(t, session.Playing)
	assert.Equal(t, 0.0, session.Progress)
	assert.Empty(t, session.StreamURL)
	assert.Equal(t, StateLoaded, session.State())

	// Every mutation persists.
	require.Len(t, store.saved, 1)
	assert.Equal(t, "A", store.saved[0].Current.ID)
}

func TestController_PlayFromList(t *testing.T) {
	tracks := []library.Track{track("A", "Alpha"), track("B", "Beta"), track("C", "Gamma"), track("D", "Delta")}

	tests := []struct {
		name      string
		play      library.Track
		wantQueue []string
	}{
		{name: "middle of list", play: tracks[1], wantQueue: []string{"C", "D"}},
		{name: "last of list", play: tracks[3], wantQueue: []string{}},
		{name: "not in list", play: track("X", "Other"), wantQueue: []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(&recordingStore{})
			c.PlayFromList(context.Background(), tt.play, tracks)

			session := c.Session()
			assert.Equal(t, tt.play.ID, session.Current.ID)
			ids := make([]string, len(session.Queue))
			for i, qt := range session.Queue {
				ids[i] = qt.ID
			}
			assert.Equal(t, tt.wantQueue, ids)
		})
	}
}

func TestController_PauseResume(t *testing.T) {
	c := NewController(&recordingStore{})
	ctx := context.Background()

	// Pause while idle is a no-op.
	c.Pause(ctx)
	assert.Equal(t, StateIdle, c.Session().State())

	c.Play(ctx, track("A", "Alpha"))
	c.Seek(ctx, 0.5)

	c.Pause(ctx)
	session := c.Session()
	assert.False(t, session.Playing)
	assert.Equal(t, "A", session.Current.ID)
	assert.Equal(t, 0.5, session.Progress)

	c.Resume(ctx)
	assert.True(t, c.Session().Playing)
}

func TestController_Seek(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		expected float64
	}{
		{name: "in range", fraction: 0.25, expected: 0.25},
		{name: "clamped high", fraction: 1.5, expected: 1},
		{name: "clamped low", fraction: -0.5, expected: 0},
		{name: "NaN ignored", fraction: math.NaN(), expected: 0},
		{name: "Inf ignored", fraction: math.Inf(1), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(&recordingStore{})
			ctx := context.Background()
			c.Play(ctx, track("A", "Alpha"))

			c.Seek(ctx, tt.fraction)
			assert.Equal(t, tt.expected, c.Session().Progress)
		})
	}
}

func TestController_Advance_RoundRobin(t *testing.T) {
	c := NewController(&recordingStore{})
	ctx := context.Background()

	// currentTrack = A, queue = [B, C].
	c.Play(ctx, track("A", "Alpha"))
	c.Enqueue(ctx, track("B", "Beta"))
	c.Enqueue(ctx, track("C", "Gamma"))

	// Advance: B current, finished A cycles to the tail.
	c.Advance(ctx)
	session := c.Session()
	assert.Equal(t, "B", session.Current.ID)
	require.Len(t, session.Queue, 2)
	assert.Equal(t, "C", session.Queue[0].ID)
	assert.Equal(t, "A", session.Queue[1].ID)
	assert.True(t, session.Playing)
	assert.Equal(t, 0.0, session.Progress)
}

func TestController_Advance_EmptyQueue(t *testing.T) {
	c := NewController(&recordingStore{})
	ctx := context.Background()

	c.Play(ctx, track("A", "Alpha"))
	c.Advance(ctx)

	session := c.Session()
	assert.Nil(t, session.Current)
	assert.False(t, session.Playing)
	assert.Equal(t, StateIdle, session.State())

	// Advancing while idle stays idle.
	c.Advance(ctx)
	assert.Equal(t, StateIdle, c.Session().State())
}

func TestController_Advance_PreservesPaused(t *testing.T) {
	c := NewController(&recordingStore{})
	ctx := context.Background()

	c.Play(ctx, track("A", "Alpha"))
	c.Enqueue(ctx, track("B", "Beta"))
	c.Pause(ctx)

	c.Advance(ctx)
	session := c.Session()
	assert.Equal(t, "B", session.Current.ID)
	assert.False(t, session.Playing)
}

func TestController_RemoveFromQueue(t *testing.T) {
	c := NewController(&recordingStore{})
	ctx := context.Background()

	c.Enqueue(ctx, track("A", "Alpha"))
	c.Enqueue(ctx, track("B", "Beta"))
	c.Enqueue(ctx, track("A", "Alpha"))

	// All occurrences removed.
	c.RemoveFromQueue(ctx, "A")
	session := c.Session()
	require.Len(t, session.Queue, 1)
	assert.Equal(t, "B", session.Queue[0].ID)

	// Second removal is a no-op.
	c.RemoveFromQueue(ctx, "A")
	assert.Len(t, c.Session().Queue, 1)
}

func TestController_ClearQueue(t *testing.T) {
	c := NewController(&recordingStore{})
	ctx := context.Background()

	c.Enqueue(ctx, track("A", "Alpha"))
	c.ClearQueue(ctx)
	assert.Empty(t, c.Session().Queue)

	// Idempotent.
	c.ClearQueue(ctx)
	assert.Empty(t, c.Session().Queue)
}

func TestController_SetResolvedStreamURL(t *testing.T) {
	c := NewController(&recordingStore{})
	ctx := context.Background()

	c.Play(ctx, track("A", "Alpha"))

	// Resolution for the current track is applied.
	assert.True(t, c.SetResolvedStreamURL(ctx, "A", "https://stream.example.com/a"))
	assert.Equal(t, "https://stream.example.com/a", c.Session().StreamURL)

	// A resolution completing for a track no longer current is discarded.
	c.Play(ctx, track("B", "Beta"))
	assert.False(t, c.SetResolvedStreamURL(ctx, "A", "https://stream.example.com/a"))
	assert.Empty(t, c.Session().StreamURL)
}

func TestController_Restore(t *testing.T) {
	current := track("A", "Alpha")
	store := &recordingStore{initial: &Session{
		ID:        "session-1",
		Current:   &current,
		Queue:     []library.Track{track("B", "Beta")},
		Playing:   true,
		Progress:  0.42,
		StreamURL: "https://stream.example.com/expired",
	}}

	c := NewController(store)
	require.NoError(t, c.Restore(context.Background()))

	session := c.Session()
	assert.Equal(t, "session-1", session.ID)
	assert.Equal(t, "A", session.Current.ID)
	assert.Equal(t, "B", session.Queue[0].ID)
	assert.True(t, session.Playing)
	assert.Equal(t, 0.42, session.Progress)
	// Signed URLs expire; the restored session must re-resolve.
	assert.Empty(t, session.StreamURL)
}

func TestController_Restore_Empty(t *testing.T) {
	c := NewController(&recordingStore{})
	require.NoError(t, c.Restore(context.Background()))
	assert.Equal(t, StateIdle, c.Session().State())
	assert.NotEmpty(t, c.Session().ID)
}

func TestController_Events(t *testing.T) {
	c := NewController(&recordingStore{})
	ctx := context.Background()

	c.Play(ctx, track("A", "Alpha"))

	select {
	case e := <-c.Events():
		assert.Equal(t, EventTrackStarted, e.Type)
		assert.Equal(t, "A", e.Track.ID)
	default:
		t.Fatal("expected a track started event")
	}
}
