// Package library provides the library domain entities: tracks, albums,
// playlists, and the immutable snapshot that aggregates them.
package library

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrNotFound indicates a referenced track, album, or playlist id is absent
// from the snapshot.
var ErrNotFound = errors.New("not found in library")

// UnknownAlbumName is the display fallback for tracks whose album id does
// not resolve.
const UnknownAlbumName = "Unknown Album"

// Track represents a single track in the library.
// Immutable once produced by the fetcher; owned by the snapshot.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"` // seconds, non-negative
	AlbumID  string `json:"albumId"`  // empty when the album is unknown
	Path     string `json:"path"`     // opaque locator used to build a signed stream URL
}

// Album represents an album in the library.
// TrackIDs preserves the source order, which is not necessarily chronological.
type Album struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	TrackIDs   []string `json:"tracks"`
	ArtistID   string   `json:"artistId"`
	ArtworkURL string   `json:"artwork_url,omitempty"`
}

// Playlist represents a user playlist in the library.
type Playlist struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	TrackIDs []string `json:"tracks"`
}

// Snapshot is an immutable in-memory copy of the remote library, valid for a
// bounded time window. A snapshot is replaced atomically, never mutated in
// place.
type Snapshot struct {
	Tracks    map[string]Track
	Albums    map[string]Album
	Playlists map[string]Playlist

	// Expires is the upstream signing expiry (unix seconds). It is stamped
	// into signed stream URLs.
	Expires int64
	// StreamingServer is the base URL for audio, as reported by the upstream.
	StreamingServer string
	// UserID is the owning user id, as reported by the upstream.
	UserID string

	FetchedAt time.Time
}

// Track returns the track with the given id.
func (s *Snapshot) Track(id string) (Track, error) {
	t, ok := s.Tracks[id]
	if !ok {
		return Track{}, errors.Wrapf(ErrNotFound, "track %s", id)
	}
	return t, nil
}

// Album returns the album with the given id.
func (s *Snapshot) Album(id string) (Album, error) {
	a, ok := s.Albums[id]
	if !ok {
		return Album{}, errors.Wrapf(ErrNotFound, "album %s", id)
	}
	return a, nil
}

// Playlist returns the playlist with the given id.
func (s *Snapshot) Playlist(id string) (Playlist, error) {
	p, ok := s.Playlists[id]
	if !ok {
		return Playlist{}, errors.Wrapf(ErrNotFound, "playlist %s", id)
	}
	return p, nil
}

// AlbumName returns the display name for an album id. A missing or empty id
// resolves to UnknownAlbumName rather than an error.
func (s *Snapshot) AlbumName(id string) string {
	if id == "" {
		return UnknownAlbumName
	}
	a, ok := s.Albums[id]
	if !ok {
		return UnknownAlbumName
	}
	return a.Name
}

// ResolveTracks maps an ordered list of track ids to tracks, skipping ids
// that do not resolve. Order is preserved.
func (s *Snapshot) ResolveTracks(ids []string) []Track {
	tracks := make([]Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.Tracks[id]; ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// TotalDuration returns the summed duration in seconds of the given tracks.
func TotalDuration(tracks []Track) int64 {
	var total int64
	for _, t := range tracks {
		total += int64(t.Duration)
	}
	return total
}

// FormatDuration renders a duration in seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
