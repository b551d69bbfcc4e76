package sessionstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/wavedeck/internal/app/playback"
)

// FileStoreConfig holds settings for the file adapter.
type FileStoreConfig struct {
	Path string `yaml:"path" mapstructure:"path" default:"data/session.json"`
}

// FileStore persists the session as one JSON file, written atomically via a
// temp file and rename.
type FileStore struct {
	path string
}

// newFileStore creates a file store from a settings map.
func newFileStore(settings map[string]any) (*FileStore, error) {
	var config FileStoreConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode file store settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create session store directory")
	}

	return &FileStore{path: config.Path}, nil
}

// NewFileStore creates a file store at the given path.
func NewFileStore(path string) (*FileStore, error) {
	return newFileStore(map[string]any{"path": path})
}

// Save replaces the stored session wholesale.
func (s *FileStore) Save(_ context.Context, session playback.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write session file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "failed to replace session file")
	}
	return nil
}

// Load returns the stored session, or found=false when the file is absent.
func (s *FileStore) Load(_ context.Context) (playback.Session, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return playback.Session{}, false, nil
		}
		return playback.Session{}, false, errors.Wrap(err, "failed to read session file")
	}

	var session playback.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return playback.Session{}, false, errors.Wrap(err, "failed to unmarshal session")
	}
	return session, true, nil
}

// Clear removes the stored session.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove session file")
	}
	return nil
}
