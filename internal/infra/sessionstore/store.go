// Package sessionstore provides persistence adapters for the player session
// state: a redis-backed store, a local file store, and an in-memory store
// for tests. The adapter is selected by configuration.
package sessionstore

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/wavedeck/internal/app/playback"
)

// Config selects and configures a store adapter.
type Config struct {
	Type     string         `yaml:"type" default:"file"`
	Settings map[string]any `yaml:"settings"`
}

// New creates the store adapter named by cfg.Type.
func New(cfg Config) (playback.Store, error) {
	switch cfg.Type {
	case "redis":
		return newRedisStore(cfg.Settings)
	case "file", "":
		return newFileStore(cfg.Settings)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, errors.Newf("unknown session store type: %s", cfg.Type)
	}
}
