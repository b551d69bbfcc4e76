package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				IBroadcast: IBroadcastConfig{
					ClientID:     "test-client-id",
					RefreshToken: "test-refresh-token",
				},
			},
			wantErr: false,
		},
		{
			name: "missing client id",
			config: Config{
				IBroadcast: IBroadcastConfig{
					RefreshToken: "test-refresh-token",
				},
			},
			wantErr: true,
			errMsg:  "ClientID",
		},
		{
			name: "missing refresh token",
			config: Config{
				IBroadcast: IBroadcastConfig{
					ClientID: "test-client-id",
				},
			},
			wantErr: true,
			errMsg:  "RefreshToken",
		},
		{
			name: "invalid library url",
			config: Config{
				IBroadcast: IBroadcastConfig{
					ClientID:     "test-client-id",
					RefreshToken: "test-refresh-token",
					LibraryURL:   "not a url",
				},
			},
			wantErr: true,
			errMsg:  "LibraryURL",
		},
		{
			name: "cache window out of range",
			config: Config{
				IBroadcast: IBroadcastConfig{
					ClientID:     "test-client-id",
					RefreshToken: "test-refresh-token",
				},
				Library: LibraryConfig{CacheWindowMin: 2000},
			},
			wantErr: true,
			errMsg:  "CacheWindowMin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, defaults.Set(&tt.config))
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  addr: ":9090"
ibroadcast:
  client_id: file-client-id
  refresh_token: file-refresh-token
library:
  cache_window_min: 10
session_store:
  type: memory
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "file-client-id", cfg.IBroadcast.ClientID)
	assert.Equal(t, 10, cfg.Library.CacheWindowMin)
	assert.Equal(t, "memory", cfg.Store.Type)
	// Defaults fill the fields the file leaves out.
	assert.Equal(t, "https://library.ibroadcast.com", cfg.IBroadcast.LibraryURL)
	assert.Equal(t, "wavedeck", cfg.IBroadcast.Platform)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
ibroadcast:
  client_id: file-client-id
  refresh_token: file-refresh-token
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("IBROADCAST_CLIENT_ID", "env-client-id")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-client-id", cfg.IBroadcast.ClientID)
	assert.Equal(t, "file-refresh-token", cfg.IBroadcast.RefreshToken)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
