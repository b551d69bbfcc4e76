package sessionstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"

	"github.com/osa030/wavedeck/internal/app/playback"
)

// RedisStoreConfig holds settings for the redis adapter.
type RedisStoreConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr" validate:"required"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	Key      string `yaml:"key" mapstructure:"key" default:"wavedeck:session"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours" validate:"gte=0"`
}

// RedisStore persists the session as a single JSON blob under one key.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// newRedisStore creates a redis store from a settings map.
func newRedisStore(settings map[string]any) (*RedisStore, error) {
	var config RedisStoreConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode redis store settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "redis store validation failed")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to redis")
	}

	return &RedisStore{
		client: client,
		key:    config.Key,
		ttl:    time.Duration(config.TTLHours) * time.Hour,
	}, nil
}

// Save replaces the stored session wholesale.
func (s *RedisStore) Save(ctx context.Context, session playback.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to write session to redis")
	}
	return nil
}

// Load returns the stored session, or found=false when the key is absent.
func (s *RedisStore) Load(ctx context.Context) (playback.Session, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return playback.Session{}, false, nil
		}
		return playback.Session{}, false, errors.Wrap(err, "failed to read session from redis")
	}

	var session playback.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return playback.Session{}, false, errors.Wrap(err, "failed to unmarshal session")
	}
	return session, true, nil
}

// Clear removes the stored session.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
