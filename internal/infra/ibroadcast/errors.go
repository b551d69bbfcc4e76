package ibroadcast

import "github.com/cockroachdb/errors"

// Error classes for upstream failures. Callers distinguish them with
// errors.Is; everything else wraps one of these.
var (
	// ErrAuth indicates missing or rejected credentials, either at the token
	// endpoint or at the library endpoint.
	ErrAuth = errors.New("ibroadcast: authentication failed")

	// ErrFetch indicates a network failure, a non-success response, or a
	// malformed upstream payload.
	ErrFetch = errors.New("ibroadcast: fetch failed")
)
