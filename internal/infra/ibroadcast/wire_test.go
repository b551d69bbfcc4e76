package ibroadcast

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleLibraryBody mirrors the upstream positional-array layout: track
// index 2 = title, 4 = duration, 5 = album id, 6 = artwork id, 16 = path.
const sampleLibraryBody = `{
	"library": {
		"tracks": {
			"101": [1, "one", "Ocean Waves", 0, 183, 900, 555, 0, 0, 0, 0, 0, 0, 0, 0, 0, "/audio/101.mp3"],
			"102": [2, "two", "Thunder", 0, 240, null, null, 0, 0, 0, 0, 0, 0, 0, 0, 0, "/audio/102.mp3"],
			"103": [3, "three", "Drift", 0, -7, 901, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, "/audio/103.mp3"],
			"map": {"title": 2}
		},
		"albums": {
			"900": ["Calm", [101], 42],
			"901": ["Night", [103, 101], 43]
		},
		"playlists": {
			"700": ["Favorites", [102, 101]]
		},
		"expires": 1760000000
	},
	"settings": {"streaming_server": "https://streaming.example.com"},
	"user": {"id": 2222979}
}`

func TestDecodeSnapshot(t *testing.T) {
	snapshot, err := decodeSnapshot([]byte(sampleLibraryBody), "https://artwork.example.com", "")
	require.NoError(t, err)

	// Positional track fields mapped to named ones; the non-array "map"
	// entry is skipped.
	require.Len(t, snapshot.Tracks, 3)
	track := snapshot.Tracks["101"]
	assert.Equal(t, "Ocean Waves", track.Title)
	assert.Equal(t, 183, track.Duration)
	assert.Equal(t, "900", track.AlbumID)
	assert.Equal(t, "/audio/101.mp3", track.Path)

	// Null album id becomes empty string.
	assert.Equal(t, "", snapshot.Tracks["102"].AlbumID)

	// Negative durations are clamped.
	assert.Equal(t, 0, snapshot.Tracks["103"].Duration)

	// Album track lists preserve source order.
	require.Len(t, snapshot.Albums, 2)
	night := snapshot.Albums["901"]
	assert.Equal(t, "Night", night.Name)
	assert.Equal(t, []string{"103", "101"}, night.TrackIDs)
	assert.Equal(t, "43", night.ArtistID)

	// Artwork comes from the first listed track's artwork id; a zero
	// artwork id leaves it unset.
	assert.Equal(t, "https://artwork.example.com/artwork/555-300", snapshot.Albums["900"].ArtworkURL)
	assert.Equal(t, "", night.ArtworkURL)

	require.Len(t, snapshot.Playlists, 1)
	assert.Equal(t, []string{"102", "101"}, snapshot.Playlists["700"].TrackIDs)

	assert.Equal(t, int64(1760000000), snapshot.Expires)
	assert.Equal(t, "https://streaming.example.com", snapshot.StreamingServer)
	assert.Equal(t, "2222979", snapshot.UserID)
}

func TestDecodeSnapshot_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>down for maintenance</html>`},
		{name: "missing library object", body: `{"settings": {"streaming_server": "x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeSnapshot([]byte(tt.body), "https://artwork.example.com", "")
			assert.True(t, errors.Is(err, ErrFetch))
		})
	}
}

func TestDecodeSnapshot_FallbackUserID(t *testing.T) {
	body := `{"library": {"tracks": {}, "albums": {}, "playlists": {}, "expires": 0}}`
	snapshot, err := decodeSnapshot([]byte(body), "https://artwork.example.com", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", snapshot.UserID)
}
