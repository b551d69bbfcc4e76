package ibroadcast

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	defaultOAuthURL = "https://oauth.ibroadcast.com"

	// defaultSafetyMargin avoids handing out a token that expires mid-flight.
	defaultSafetyMargin = 60 * time.Second
)

// TokenCache is a single-slot in-memory cache of a bearer credential,
// refreshed through the OAuth refresh-token exchange when expired or absent.
// The slot is replaced wholesale on refresh and is not persisted across
// process restarts.
type TokenCache struct {
	oauth        oauth2.Config
	refreshToken string
	margin       time.Duration
	now          func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// TokenConfig represents token cache configuration.
type TokenConfig struct {
	ClientID     string
	RefreshToken string
	OAuthURL     string        // defaults to the public OAuth endpoint
	SafetyMargin time.Duration // defaults to 60s
}

// NewTokenCache creates a token cache. Missing credentials fail fast.
func NewTokenCache(cfg TokenConfig) (*TokenCache, error) {
	if cfg.ClientID == "" {
		return nil, errors.Wrap(ErrAuth, "client id is not configured")
	}
	if cfg.RefreshToken == "" {
		return nil, errors.Wrap(ErrAuth, "refresh token is not configured")
	}

	oauthURL := cfg.OAuthURL
	if oauthURL == "" {
		oauthURL = defaultOAuthURL
	}
	margin := cfg.SafetyMargin
	if margin <= 0 {
		margin = defaultSafetyMargin
	}

	return &TokenCache{
		oauth: oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: oauth2.Endpoint{
				TokenURL: oauthURL + "/token",
				// The token endpoint takes client_id form-encoded in the
				// body, alongside grant_type and refresh_token.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		refreshToken: cfg.RefreshToken,
		margin:       margin,
		now:          time.Now,
	}, nil
}

// AccessToken returns the cached token, refreshing it first when it is
// absent or within the safety margin of its expiry. Callers are serialized;
// a refresh in flight blocks other callers rather than racing them.
func (c *TokenCache) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiry.Add(-c.margin)) {
		return c.token, nil
	}

	zlog.Debug().Msg("ibroadcast: refreshing access token")

	src := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: c.refreshToken})
	tok, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", errors.Wrapf(ErrAuth, "token exchange rejected: %v", retrieveErr)
		}
		return "", errors.Wrap(ErrFetch, err.Error())
	}

	c.token = tok.AccessToken
	c.expiry = tok.Expiry

	return c.token, nil
}
