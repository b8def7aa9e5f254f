package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the well-known key the snapshot is stored under.
const DefaultKey = "vidshelf:collection"

// RedisOptions maps the mirror configuration onto client options.
func RedisOptions(cfg shared.MirrorConfig) *redis.Options {
	return &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Protocol: 2,
	}
}

// RedisMirror stores the snapshot as a single Redis string.
type RedisMirror struct {
	client *redis.Client
	key    string
}

// NewRedisMirror connects lazily; the first command dials.
func NewRedisMirror(opts *redis.Options, key string) *RedisMirror {
	if key == "" {
		key = DefaultKey
	}
	return &RedisMirror{client: redis.NewClient(opts), key: key}
}

// Ping checks connectivity.
func (m *RedisMirror) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// Load fetches and decodes the snapshot.
func (m *RedisMirror) Load(ctx context.Context) (models.Snapshot, error) {
	data, err := m.client.Get(ctx, m.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Snapshot{}, shared.ErrMirrorNotFound
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("redis get %s: %w", m.key, err)
	}
	return decode(data)
}

// Save overwrites the key with the encoded snapshot, without expiry.
func (m *RedisMirror) Save(ctx context.Context, s models.Snapshot) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	if err := m.client.Set(ctx, m.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", m.key, err)
	}
	return nil
}

// Clear deletes the key.
func (m *RedisMirror) Clear(ctx context.Context) error {
	if err := m.client.Del(ctx, m.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", m.key, err)
	}
	return nil
}

// Close releases the client connections.
func (m *RedisMirror) Close() error {
	return m.client.Close()
}
