// Package rest exposes the player and library over a JSON HTTP API.
package rest

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/osa030/wavedeck/internal/app/playback"
	"github.com/osa030/wavedeck/internal/app/search"
	"github.com/osa030/wavedeck/internal/domain/library"
)

// LibraryProvider hands out library snapshots.
type LibraryProvider interface {
	Get(ctx context.Context) (*library.Snapshot, error)
	Refresh(ctx context.Context) (*library.Snapshot, error)
}

// StreamResolver resolves a signed streaming URL for one track.
type StreamResolver interface {
	StreamURL(ctx context.Context, snapshot *library.Snapshot, track library.Track) (string, error)
}

// Handler carries the API dependencies and builds the router.
type Handler struct {
	libraries  LibraryProvider
	streams    StreamResolver
	controller *playback.Controller

	mu      sync.Mutex
	indexed *library.Snapshot
	index   *search.Index
}

// NewHandler creates the API handler.
func NewHandler(libraries LibraryProvider, streams StreamResolver, controller *playback.Controller) *Handler {
	return &Handler{
		libraries:  libraries,
		streams:    streams,
		controller: controller,
	}
}

// Router builds the full route table.
func (h *Handler) Router(allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/library", h.getLibrary).Methods(http.MethodGet)
	r.HandleFunc("/api/library/refresh", h.refreshLibrary).Methods(http.MethodPost)
	r.HandleFunc("/api/tracks", h.listTracks).Methods(http.MethodGet)
	r.HandleFunc("/api/albums", h.listAlbums).Methods(http.MethodGet)
	r.HandleFunc("/api/albums/{id}", h.getAlbum).Methods(http.MethodGet)
	r.HandleFunc("/api/playlists", h.listPlaylists).Methods(http.MethodGet)
	r.HandleFunc("/api/playlists/{id}", h.getPlaylist).Methods(http.MethodGet)
	r.HandleFunc("/api/search", h.searchLibrary).Methods(http.MethodGet)

	r.HandleFunc("/api/player", h.getPlayer).Methods(http.MethodGet)
	r.HandleFunc("/api/player/play", h.play).Methods(http.MethodPost)
	r.HandleFunc("/api/player/pause", h.pause).Methods(http.MethodPost)
	r.HandleFunc("/api/player/resume", h.resume).Methods(http.MethodPost)
	r.HandleFunc("/api/player/seek", h.seek).Methods(http.MethodPost)
	r.HandleFunc("/api/player/advance", h.advance).Methods(http.MethodPost)
	r.HandleFunc("/api/player/queue", h.enqueue).Methods(http.MethodPost)
	r.HandleFunc("/api/player/queue", h.clearQueue).Methods(http.MethodDelete)
	r.HandleFunc("/api/player/queue/{track_id}", h.removeFromQueue).Methods(http.MethodDelete)
	r.HandleFunc("/api/player/stream-url", h.streamURL).Methods(http.MethodGet)

	// Wrapping outside the router lets CORS answer preflight requests that
	// no route matches by method.
	return corsMiddleware(allowedOrigins)(loggingMiddleware(r))
}

// searchIndex returns the fuzzy index for the given snapshot, rebuilding it
// only when the snapshot was replaced.
func (h *Handler) searchIndex(snapshot *library.Snapshot) *search.Index {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.indexed != snapshot {
		h.index = search.NewIndex(snapshot)
		h.indexed = snapshot
	}
	return h.index
}
