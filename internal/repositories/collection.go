package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// CollectionStore is the tabular remote store: it loads the whole collection and applies
// replace and merge writes, each inside a single transaction.
type CollectionStore struct {
	db     *sql.DB
	logger *log.Logger
}

// NewCollectionStore creates a store over db. A nil logger falls back to stderr.
func NewCollectionStore(db *sql.DB, logger *log.Logger) *CollectionStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CollectionStore{db: db, logger: logger}
}

// Load reads every video and playlist as a [models.Snapshot].
func (s *CollectionStore) Load(ctx context.Context) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, err
	}

	videos, err := NewVideoRepository(s.db).List(map[string]any{})
	if err != nil {
		return models.Snapshot{}, err
	}

	playlists, err := NewPlaylistRepository(s.db).List(map[string]any{})
	if err != nil {
		return models.Snapshot{}, err
	}

	snapshot := models.Snapshot{
		Videos:    make([]models.Video, 0, len(videos)),
		Playlists: make([]models.Playlist, 0, len(playlists)),
	}
	for _, v := range videos {
		snapshot.Videos = append(snapshot.Videos, *v)
	}
	for _, p := range playlists {
		snapshot.Playlists = append(snapshot.Playlists, *p)
		if p.UpdatedAt.After(snapshot.UpdatedAt) {
			snapshot.UpdatedAt = p.UpdatedAt
		}
	}

	return snapshot, nil
}

// Count returns the number of stored videos and playlists.
func (s *CollectionStore) Count(ctx context.Context) (videos, playlists int, err error) {
	query := "SELECT (SELECT COUNT(*) FROM videos), (SELECT COUNT(*) FROM playlists)"
	if err := s.db.QueryRowContext(ctx, query).Scan(&videos, &playlists); err != nil {
		return 0, 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return videos, playlists, nil
}

// Apply dispatches a decoded write to [CollectionStore.Replace] or [CollectionStore.Merge].
func (s *CollectionStore) Apply(ctx context.Context, req models.WriteRequest) (models.WriteResult, error) {
	switch r := req.(type) {
	case models.FullReplace:
		return s.Replace(ctx, r)
	case models.PartialMerge:
		return s.Merge(ctx, r)
	default:
		return models.WriteResult{}, fmt.Errorf("%w: unknown write request %T", shared.ErrInvalidInput, req)
	}
}

// Replace deletes every row and inserts exactly the payload.
//
// An implicit replace carrying no videos and no playlists is skipped when the store already holds
// rows, so a client that lost its state cannot wipe the store by accident. An explicit replace
// with the same empty payload clears everything.
func (s *CollectionStore) Replace(ctx context.Context, req models.FullReplace) (models.WriteResult, error) {
	result := models.WriteResult{OK: true, Mode: models.ModeReplace}

	if req.Implicit && req.Empty() {
		videos, playlists, err := s.Count(ctx)
		if err != nil {
			return models.WriteResult{}, err
		}
		if videos+playlists > 0 {
			s.logger.Warn("skipping implicit empty replace", "videos", videos, "playlists", playlists)
			result.Skipped = true
			return result, nil
		}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{"DELETE FROM playlist_videos", "DELETE FROM playlists", "DELETE FROM videos"} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to clear collection: %w", err)
			}
		}

		videoRepo := NewVideoRepository(s.db).WithTx(tx)
		for i := range req.Videos {
			if err := videoRepo.Upsert(&req.Videos[i]); err != nil {
				return err
			}
			result.Videos++
		}

		playlistRepo := NewPlaylistRepository(s.db).WithTx(tx)
		seen := make(map[string]bool, len(req.Playlists))
		for i := range req.Playlists {
			if seen[req.Playlists[i].ID] {
				continue
			}
			seen[req.Playlists[i].ID] = true
			if err := playlistRepo.Create(&req.Playlists[i]); err != nil {
				return err
			}
			result.Playlists++
		}
		return nil
	})
	if err != nil {
		return models.WriteResult{}, err
	}

	s.logger.Info("collection replaced", "videos", result.Videos, "playlists", result.Playlists)
	return result, nil
}

// Merge upserts the named videos and playlists. Rows the payload does not name are untouched.
func (s *CollectionStore) Merge(ctx context.Context, req models.PartialMerge) (models.WriteResult, error) {
	result := models.WriteResult{OK: true, Mode: models.ModeMerge}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		videoRepo := NewVideoRepository(s.db).WithTx(tx)
		for i := range req.Videos {
			if err := videoRepo.Upsert(&req.Videos[i]); err != nil {
				return err
			}
			result.Videos++
		}

		playlistRepo := NewPlaylistRepository(s.db).WithTx(tx)
		for _, patch := range req.Playlists {
			if err := playlistRepo.Upsert(patch); err != nil {
				return err
			}
			result.Playlists++
		}
		return nil
	})
	if err != nil {
		return models.WriteResult{}, err
	}

	s.logger.Debug("collection merged", "videos", result.Videos, "playlists", result.Playlists)
	return result, nil
}

// DeletePlaylist removes one playlist and its ordering rows. Deleting a missing playlist is not an error.
func (s *CollectionStore) DeletePlaylist(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := NewPlaylistRepository(s.db).WithTx(tx).Delete(id)
		switch {
		case err == nil:
			deleted = true
			return nil
		case errors.Is(err, shared.ErrPlaylistNotFound):
			return nil
		default:
			return err
		}
	})
	return deleted, err
}

func (s *CollectionStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
