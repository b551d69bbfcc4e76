package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handler) getPlayer(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.controller.Session())
}

type playRequest struct {
	TrackID     string `json:"track_id"`
	ContextKind string `json:"context_kind,omitempty"`
	ContextID   string `json:"context_id,omitempty"`
}

// play starts the given track. When a context album or playlist is named,
// the rest of that list becomes the queue in round-robin order.
func (h *Handler) play(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.TrackID == "" {
		writeBadRequest(w, "track_id is required")
		return
	}

	snapshot, err := h.libraries.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	track, err := snapshot.Track(req.TrackID)
	if err != nil {
		writeError(w, err)
		return
	}

	switch req.ContextKind {
	case "":
		h.controller.Play(r.Context(), track)
	case "album":
		album, err := snapshot.Album(req.ContextID)
		if err != nil {
			writeError(w, err)
			return
		}
		h.controller.PlayFromList(r.Context(), track, snapshot.ResolveTracks(album.TrackIDs))
	case "playlist":
		playlist, err := snapshot.Playlist(req.ContextID)
		if err != nil {
			writeError(w, err)
			return
		}
		h.controller.PlayFromList(r.Context(), track, snapshot.ResolveTracks(playlist.TrackIDs))
	default:
		writeBadRequest(w, "context_kind must be album or playlist")
		return
	}

	writeJSON(w, http.StatusOK, h.controller.Session())
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request) {
	h.controller.Pause(r.Context())
	writeJSON(w, http.StatusOK, h.controller.Session())
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) {
	h.controller.Resume(r.Context())
	writeJSON(w, http.StatusOK, h.controller.Session())
}

type seekRequest struct {
	Fraction float64 `json:"fraction"`
}

func (h *Handler) seek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	h.controller.Seek(r.Context(), req.Fraction)
	writeJSON(w, http.StatusOK, h.controller.Session())
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	h.controller.Advance(r.Context())
	writeJSON(w, http.StatusOK, h.controller.Session())
}

type enqueueRequest struct {
	TrackID string `json:"track_id"`
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.TrackID == "" {
		writeBadRequest(w, "track_id is required")
		return
	}

	snapshot, err := h.libraries.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	track, err := snapshot.Track(req.TrackID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.controller.Enqueue(r.Context(), track)
	writeJSON(w, http.StatusOK, h.controller.Session())
}

func (h *Handler) removeFromQueue(w http.ResponseWriter, r *http.Request) {
	h.controller.RemoveFromQueue(r.Context(), mux.Vars(r)["track_id"])
	writeJSON(w, http.StatusOK, h.controller.Session())
}

func (h *Handler) clearQueue(w http.ResponseWriter, r *http.Request) {
	h.controller.ClearQueue(r.Context())
	writeJSON(w, http.StatusOK, h.controller.Session())
}

type streamURLResponse struct {
	TrackID   string `json:"track_id"`
	StreamURL string `json:"stream_url"`
}

// streamURL resolves a signed URL for the current track. The result is only
// stored on the session while that track is still current.
func (h *Handler) streamURL(w http.ResponseWriter, r *http.Request) {
	session := h.controller.Session()
	if session.Current == nil {
		writeBadRequest(w, "no current track")
		return
	}

	snapshot, err := h.libraries.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	track, err := snapshot.Track(session.Current.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	url, err := h.streams.StreamURL(r.Context(), snapshot, track)
	if err != nil {
		writeError(w, err)
		return
	}

	h.controller.SetResolvedStreamURL(r.Context(), track.ID, url)
	writeJSON(w, http.StatusOK, streamURLResponse{TrackID: track.ID, StreamURL: url})
}
