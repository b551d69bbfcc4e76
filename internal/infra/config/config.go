// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/wavedeck/internal/infra/sessionstore"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig        `yaml:"server"`
	IBroadcast IBroadcastConfig    `yaml:"ibroadcast"`
	Library    LibraryConfig       `yaml:"library"`
	Store      sessionstore.Config `yaml:"session_store"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr           string   `yaml:"addr" default:":8080"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// IBroadcastConfig represents upstream API configuration. Credentials can
// come from the environment instead of the file.
type IBroadcastConfig struct {
	ClientID     string `yaml:"client_id" validate:"required"`
	RefreshToken string `yaml:"refresh_token" validate:"required"`
	UserID       string `yaml:"user_id"`
	Platform     string `yaml:"platform" default:"wavedeck"`
	Version      string `yaml:"version" default:"1.0.0"`
	LibraryURL   string `yaml:"library_url" default:"https://library.ibroadcast.com" validate:"url"`
	OAuthURL     string `yaml:"oauth_url" default:"https://oauth.ibroadcast.com" validate:"url"`
	ArtworkURL   string `yaml:"artwork_url" default:"https://artwork.ibroadcast.com" validate:"url"`
}

// LibraryConfig represents library snapshot caching configuration.
type LibraryConfig struct {
	CacheWindowMin int `yaml:"cache_window_min" default:"30" validate:"gte=1,lte=1440"`
}

// CacheWindow returns the snapshot cache window as a duration.
func (c LibraryConfig) CacheWindow() time.Duration {
	return time.Duration(c.CacheWindowMin) * time.Minute
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("IBROADCAST_CLIENT_ID"); v != "" {
		c.IBroadcast.ClientID = v
	}
	if v := os.Getenv("IBROADCAST_REFRESH_TOKEN"); v != "" {
		c.IBroadcast.RefreshToken = v
	}
	if v := os.Getenv("IBROADCAST_USER_ID"); v != "" {
		c.IBroadcast.UserID = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" && c.Store.Type == "redis" {
		if c.Store.Settings == nil {
			c.Store.Settings = map[string]any{}
		}
		c.Store.Settings["addr"] = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
