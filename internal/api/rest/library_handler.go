package rest

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/osa030/wavedeck/internal/domain/library"
)

type librarySummary struct {
	Tracks    int       `json:"tracks"`
	Albums    int       `json:"albums"`
	Playlists int       `json:"playlists"`
	UserID    string    `json:"user_id"`
	Expires   int64     `json:"expires"`
	FetchedAt time.Time `json:"fetched_at"`
}

func summarize(s *library.Snapshot) librarySummary {
	return librarySummary{
		Tracks:    len(s.Tracks),
		Albums:    len(s.Albums),
		Playlists: len(s.Playlists),
		UserID:    s.UserID,
		Expires:   s.Expires,
		FetchedAt: s.FetchedAt,
	}
}

func (h *Handler) getLibrary(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.libraries.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(snapshot))
}

func (h *Handler) refreshLibrary(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.libraries.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(snapshot))
}

type trackPage struct {
	Tracks []library.Track `json:"tracks"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
}

func (h *Handler) listTracks(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.libraries.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		writeBadRequest(w, "offset must be a non-negative integer")
		return
	}
	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		writeBadRequest(w, "limit must be a non-negative integer")
		return
	}

	tracks := make([]library.Track, 0, len(snapshot.Tracks))
	for _, t := range snapshot.Tracks {
		tracks = append(tracks, t)
	}
	sort.Slice(tracks, func(i, j int) bool {
		if tracks[i].Title != tracks[j].Title {
			return tracks[i].Title < tracks[j].Title
		}
		return tracks[i].ID < tracks[j].ID
	})

	total := len(tracks)
	if offset > total {
		offset = total
	}
	tracks = tracks[offset:]
	if limit > 0 && limit < len(tracks) {
		tracks = tracks[:limit]
	}

	writeJSON(w, http.StatusOK, trackPage{Tracks: tracks, Total: total, Offset: offset})
}

func (h *Handler) listAlbums(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.libraries.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	albums := make([]library.Album, 0, len(snapshot.Albums))
	for _, a := range snapshot.Albums {
		albums = append(albums, a)
	}
	sort.Slice(albums, func(i, j int) bool {
		if albums[i].Name != albums[j].Name {
			return albums[i].Name < albums[j].Name
		}
		return albums[i].ID < albums[j].ID
	})

	writeJSON(w, http.StatusOK, albums)
}

type albumDetail struct {
	library.Album
	Tracks []library.Track `json:"resolved_tracks"`
}

func (h *Handler) getAlbum(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.libraries.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	album, err := snapshot.Album(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, albumDetail{
		Album:  album,
		Tracks: snapshot.ResolveTracks(album.TrackIDs),
	})
}

func (h *Handler) listPlaylists(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.libraries.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	playlists := make([]library.Playlist, 0, len(snapshot.Playlists))
	for _, p := range snapshot.Playlists {
		playlists = append(playlists, p)
	}
	sort.Slice(playlists, func(i, j int) bool {
		if playlists[i].Name != playlists[j].Name {
			return playlists[i].Name < playlists[j].Name
		}
		return playlists[i].ID < playlists[j].ID
	})

	writeJSON(w, http.StatusOK, playlists)
}

type playlistDetail struct {
	library.Playlist
	Tracks []library.Track `json:"resolved_tracks"`
}

func (h *Handler) getPlaylist(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.libraries.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	playlist, err := snapshot.Playlist(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playlistDetail{
		Playlist: playlist,
		Tracks:   snapshot.ResolveTracks(playlist.TrackIDs),
	})
}

func (h *Handler) searchLibrary(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.libraries.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		writeBadRequest(w, "limit must be a non-negative integer")
		return
	}

	result := h.searchIndex(snapshot).Query(r.URL.Query().Get("q"), limit)
	writeJSON(w, http.StatusOK, result)
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
