package ibroadcast

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/wavedeck/internal/domain/library"
)

// staticTokens is a TokenProvider that always returns the same token.
type staticTokens string

func (s staticTokens) AccessToken(_ context.Context) (string, error) {
	return string(s), nil
}

func TestClient_FetchLibrary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleLibraryBody)
	}))
	defer server.Close()

	client, err := NewClient(Config{LibraryURL: server.URL, ArtworkURL: "https://artwork.example.com"}, staticTokens("test-token"))
	require.NoError(t, err)

	snapshot, err := client.FetchLibrary(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Tracks, 3)
	assert.Equal(t, "https://streaming.example.com", snapshot.StreamingServer)
	assert.False(t, snapshot.FetchedAt.IsZero())
}

func TestClient_FetchLibrary_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantAuth bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, wantAuth: true},
		{name: "forbidden", status: http.StatusForbidden, body: `{}`, wantAuth: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, wantAuth: false},
		{name: "malformed payload", status: http.StatusOK, body: `{"no_library": true}`, wantAuth: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client, err := NewClient(Config{LibraryURL: server.URL}, staticTokens("t"))
			require.NoError(t, err)

			_, err = client.FetchLibrary(context.Background())
			require.Error(t, err)
			if tt.wantAuth {
				assert.True(t, errors.Is(err, ErrAuth))
			} else {
				assert.True(t, errors.Is(err, ErrFetch))
			}
		})
	}
}

func TestClient_StreamURL(t *testing.T) {
	client, err := NewClient(Config{Platform: "wavedeck", Version: "1.0.0"}, staticTokens("sig-token"))
	require.NoError(t, err)

	snapshot := &library.Snapshot{
		StreamingServer: "https://streaming.example.com",
		Expires:         1760000000,
		UserID:          "2222979",
	}
	track := library.Track{ID: "101", Path: "/audio/101.mp3"}

	url, err := client.StreamURL(context.Background(), snapshot, track)
	require.NoError(t, err)
	assert.Equal(t,
		"https://streaming.example.com/audio/101.mp3?Expires=1760000000&Signature=sig-token&file_id=101&platform=wavedeck&user_id=2222979&version=1.0.0",
		url)
}

func TestClient_StreamURL_NoStreamingServer(t *testing.T) {
	client, err := NewClient(Config{}, staticTokens("t"))
	require.NoError(t, err)

	_, err = client.StreamURL(context.Background(), &library.Snapshot{}, library.Track{ID: "1"})
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestNewClient_RequiresTokenProvider(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.Error(t, err)
}
