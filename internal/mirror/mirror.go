// Package mirror keeps a local copy of the whole collection so the client can start without the remote store.
//
// The mirror holds one serialized blob {videos, playlists, updatedAt} under a well-known key.
// Two backends exist:
//   - [FileMirror] : JSON file written atomically (temp file + rename)
//   - [RedisMirror] : a single Redis string key
package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Mirror persists and restores a full [models.Snapshot].
//
// Load returns [shared.ErrMirrorNotFound] when nothing has been saved yet.
type Mirror interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snapshot models.Snapshot) error
	Clear(ctx context.Context) error
}

// New builds the backend selected by cfg.
func New(cfg shared.MirrorConfig) (Mirror, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileMirror(cfg.Path), nil
	case BackendRedis:
		return NewRedisMirror(RedisOptions(cfg), cfg.Key), nil
	default:
		return nil, fmt.Errorf("%w: unknown mirror backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}

func encode(s models.Snapshot) ([]byte, error) {
	c := s.Clone()
	c.Normalize()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode mirror: %w", err)
	}
	return data, nil
}

func decode(data []byte) (models.Snapshot, error) {
	var s models.Snapshot
	if len(data) == 0 {
		return s, shared.ErrMirrorNotFound
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%w: decode mirror: %v", shared.ErrMalformedPayload, err)
	}
	s.Normalize()
	return s, nil
}
