// Package snapshot provides the cached, time-bounded library snapshot: a
// miss performs one full fetch-and-replace, repeated calls inside the cache
// window return the same snapshot without touching the upstream.
package snapshot

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/wavedeck/internal/domain/library"
)

const defaultCacheWindow = 30 * time.Minute

// Fetcher performs the full library fetch.
type Fetcher interface {
	FetchLibrary(ctx context.Context) (*library.Snapshot, error)
}

// Service memoizes library snapshots. A snapshot is replaced atomically; a
// failed refresh leaves the previous snapshot in place.
type Service struct {
	fetcher Fetcher
	window  time.Duration
	now     func() time.Time

	mu      sync.Mutex
	current *library.Snapshot
}

// NewService creates a snapshot service. A non-positive window falls back to
// the default.
func NewService(fetcher Fetcher, window time.Duration) *Service {
	if window <= 0 {
		window = defaultCacheWindow
	}
	return &Service{
		fetcher: fetcher,
		window:  window,
		now:     time.Now,
	}
}

// Get returns the memoized snapshot while it is inside the cache window,
// fetching a fresh one otherwise. On fetch failure the previous snapshot, if
// any, stays in place and the error propagates to the caller.
func (s *Service) Get(ctx context.Context) (*library.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.now().Before(s.current.FetchedAt.Add(s.window)) {
		return s.current, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh forces a full fetch-and-replace regardless of the cache window.
func (s *Service) Refresh(ctx context.Context) (*library.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// Current returns the last good snapshot without fetching. May be nil.
func (s *Service) Current() *library.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// refreshLocked performs the fetch. Must be called with the lock held.
func (s *Service) refreshLocked(ctx context.Context) (*library.Snapshot, error) {
	fresh, err := s.fetcher.FetchLibrary(ctx)
	if err != nil {
		zlog.Warn().Err(err).Msg("snapshot: refresh failed, keeping previous snapshot")
		return nil, err
	}

	s.current = fresh
	zlog.Info().Msgf("snapshot: refreshed: tracks=%d albums=%d playlists=%d",
		len(fresh.Tracks), len(fresh.Albums), len(fresh.Playlists))
	return s.current, nil
}
