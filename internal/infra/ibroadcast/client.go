// Package ibroadcast provides a client for the iBroadcast streaming service:
// the library metadata endpoint, the OAuth token endpoint, and signed stream
// URL construction.
package ibroadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/osa030/wavedeck/internal/domain/library"
)

const (
	defaultLibraryURL = "https://library.ibroadcast.com"
	defaultArtworkURL = "https://artwork.ibroadcast.com"
)

// TokenProvider supplies a valid bearer credential for library calls.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client is an iBroadcast library API client.
type Client struct {
	libraryURL string
	artworkURL string
	userID     string
	platform   string
	version    string

	tokens     TokenProvider
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Config represents iBroadcast client configuration.
type Config struct {
	LibraryURL string // defaults to the public library endpoint
	ArtworkURL string // defaults to the public artwork host
	UserID     string // owning user id, used when the response omits one
	Platform   string // platform name stamped into stream URLs
	Version    string // client version stamped into stream URLs
}

// NewClient creates a new library client. The token provider is required;
// library calls are bearer-authenticated.
func NewClient(cfg Config, tokens TokenProvider) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("token provider is required")
	}

	libraryURL := cfg.LibraryURL
	if libraryURL == "" {
		libraryURL = defaultLibraryURL
	}
	artworkURL := cfg.ArtworkURL
	if artworkURL == "" {
		artworkURL = defaultArtworkURL
	}

	return &Client{
		libraryURL: libraryURL,
		artworkURL: artworkURL,
		userID:     cfg.UserID,
		platform:   cfg.Platform,
		version:    cfg.Version,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		// The library payload is the whole collection; there is no reason to
		// hit the endpoint more than a few times a minute.
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 2),
	}, nil
}

// libraryRequest is the JSON body of the library fetch.
type libraryRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// FetchLibrary performs one POST to the library endpoint and reshapes the
// positional-array records into a Snapshot.
func (c *Client) FetchLibrary(ctx context.Context) (*library.Snapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(ErrFetch, err.Error())
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(libraryRequest{UserID: c.userID})
	if err != nil {
		return nil, errors.Wrap(ErrFetch, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.libraryURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(ErrFetch, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrFetch, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Wrapf(ErrAuth, "library endpoint returned %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, errors.Wrapf(ErrFetch, "library endpoint returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(ErrFetch, err.Error())
	}

	snapshot, err := decodeSnapshot(raw, c.artworkURL, c.userID)
	if err != nil {
		return nil, err
	}
	snapshot.FetchedAt = time.Now()

	zlog.Debug().Msgf("ibroadcast: fetched library: tracks=%d albums=%d playlists=%d elapsed=%v",
		len(snapshot.Tracks), len(snapshot.Albums), len(snapshot.Playlists), time.Since(start))

	return snapshot, nil
}

// StreamURL builds the signed, time-bounded URL for a track. The snapshot
// supplies the streaming server, expiry, and user id; the access token is the
// signature.
func (c *Client) StreamURL(ctx context.Context, snapshot *library.Snapshot, track library.Track) (string, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if snapshot.StreamingServer == "" {
		return "", errors.Wrap(ErrFetch, "snapshot has no streaming server")
	}

	params := url.Values{}
	params.Set("Expires", strconv.FormatInt(snapshot.Expires, 10))
	params.Set("Signature", token)
	params.Set("file_id", track.ID)
	params.Set("user_id", snapshot.UserID)
	params.Set("platform", c.platform)
	params.Set("version", c.version)

	return fmt.Sprintf("%s%s?%s", snapshot.StreamingServer, track.Path, params.Encode()), nil
}
