package ibroadcast

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/osa030/wavedeck/internal/domain/library"
)

// The library endpoint encodes each track, album, and playlist record as a
// fixed-position array. The index meanings below are dictated by the upstream
// service; the rest of the system only ever sees the named library types.
const (
	trackFieldTitle     = 2
	trackFieldDuration  = 4
	trackFieldAlbumID   = 5
	trackFieldArtworkID = 6
	trackFieldPath      = 16

	albumFieldName     = 0
	albumFieldTrackIDs = 1
	albumFieldArtistID = 2

	playlistFieldName     = 0
	playlistFieldTrackIDs = 1
)

// libraryResponse is the top-level shape of the library endpoint response.
type libraryResponse struct {
	Library  *libraryPayload `json:"library"`
	Settings struct {
		StreamingServer string `json:"streaming_server"`
	} `json:"settings"`
	User struct {
		ID json.Number `json:"id"`
	} `json:"user"`
}

// libraryPayload holds the id-keyed positional records.
type libraryPayload struct {
	Tracks    map[string]json.RawMessage `json:"tracks"`
	Albums    map[string]json.RawMessage `json:"albums"`
	Playlists map[string]json.RawMessage `json:"playlists"`
	Expires   int64                      `json:"expires"`
}

// row is one positional record. Non-array values (the upstream mixes a few
// metadata entries into the same maps) fail to decode and are skipped.
type row []json.RawMessage

func decodeRow(raw json.RawMessage) (row, bool) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return row(fields), true
}

// fieldString returns the field at idx decoded as a JSON string, or "" when
// the index is out of range or the value is not a string.
func (r row) fieldString(idx int) string {
	if idx >= len(r) {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(r[idx]), &s); err != nil {
		return ""
	}
	return s
}

// fieldInt returns the field at idx as an integer, or 0 when absent or
// non-numeric.
func (r row) fieldInt(idx int) int {
	if idx >= len(r) {
		return 0
	}
	var n float64
	if err := json.Unmarshal([]byte(r[idx]), &n); err != nil {
		return 0
	}
	return int(n)
}

// fieldID returns the field at idx as an id string. The upstream emits ids as
// numbers, strings, or null; null and absent values yield "".
func (r row) fieldID(idx int) string {
	if idx >= len(r) {
		return ""
	}
	raw := []byte(r[idx])
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// fieldIDList returns the field at idx as a list of id strings.
func (r row) fieldIDList(idx int) []string {
	if idx >= len(r) {
		return nil
	}
	var nums []json.Number
	if err := json.Unmarshal([]byte(r[idx]), &nums); err == nil {
		ids := make([]string, len(nums))
		for i, n := range nums {
			ids[i] = n.String()
		}
		return ids
	}
	var strs []string
	if err := json.Unmarshal([]byte(r[idx]), &strs); err == nil {
		return strs
	}
	return nil
}

// decodeSnapshot reshapes a raw library response into a Snapshot. Album
// artwork is derived from the artwork id of the first track in each album's
// list, when present.
func decodeSnapshot(body []byte, artworkBaseURL, fallbackUserID string) (*library.Snapshot, error) {
	var resp libraryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(ErrFetch, err.Error())
	}
	if resp.Library == nil {
		return nil, errors.Wrap(ErrFetch, "response has no library object")
	}

	trackRows := make(map[string]row, len(resp.Library.Tracks))
	tracks := make(map[string]library.Track, len(resp.Library.Tracks))
	for id, raw := range resp.Library.Tracks {
		r, ok := decodeRow(raw)
		if !ok {
			continue
		}
		trackRows[id] = r
		duration := r.fieldInt(trackFieldDuration)
		if duration < 0 {
			duration = 0
		}
		tracks[id] = library.Track{
			ID:       id,
			Title:    r.fieldString(trackFieldTitle),
			Duration: duration,
			AlbumID:  r.fieldID(trackFieldAlbumID),
			Path:     r.fieldString(trackFieldPath),
		}
	}

	albums := make(map[string]library.Album, len(resp.Library.Albums))
	for id, raw := range resp.Library.Albums {
		r, ok := decodeRow(raw)
		if !ok {
			continue
		}
		album := library.Album{
			ID:       id,
			Name:     r.fieldString(albumFieldName),
			TrackIDs: r.fieldIDList(albumFieldTrackIDs),
			ArtistID: r.fieldID(albumFieldArtistID),
		}
		album.ArtworkURL = albumArtworkURL(album, trackRows, artworkBaseURL)
		albums[id] = album
	}

	playlists := make(map[string]library.Playlist, len(resp.Library.Playlists))
	for id, raw := range resp.Library.Playlists {
		r, ok := decodeRow(raw)
		if !ok {
			continue
		}
		playlists[id] = library.Playlist{
			ID:       id,
			Name:     r.fieldString(playlistFieldName),
			TrackIDs: r.fieldIDList(playlistFieldTrackIDs),
		}
	}

	userID := resp.User.ID.String()
	if userID == "" || userID == "0" {
		userID = fallbackUserID
	}

	return &library.Snapshot{
		Tracks:          tracks,
		Albums:          albums,
		Playlists:       playlists,
		Expires:         resp.Library.Expires,
		StreamingServer: resp.Settings.StreamingServer,
		UserID:          userID,
	}, nil
}

// albumArtworkURL resolves artwork for an album by reading the artwork id of
// the first track in its list. Returns "" when no artwork id is present.
func albumArtworkURL(album library.Album, trackRows map[string]row, baseURL string) string {
	if len(album.TrackIDs) == 0 {
		return ""
	}
	r, ok := trackRows[album.TrackIDs[0]]
	if !ok {
		return ""
	}
	artworkID := r.fieldID(trackFieldArtworkID)
	if artworkID == "" || artworkID == "0" {
		return ""
	}
	return baseURL + "/artwork/" + artworkID + "-300"
}
