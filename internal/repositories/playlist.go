package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// PlaylistRepository implements models.Repository[*models.Playlist] for playlists and their ordering rows.
//
// Ordering rows only reference videos that exist; unknown ids are skipped and positions stay contiguous.
type PlaylistRepository struct {
	db querier
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *PlaylistRepository) WithTx(tx *sql.Tx) *PlaylistRepository {
	return &PlaylistRepository{db: tx}
}

// Create inserts a new playlist and its ordering rows.
//
// The playlist keeps its own ID when set; otherwise one is generated. Zero timestamps default to now.
func (r *PlaylistRepository) Create(playlist *models.Playlist) error {
	if playlist.ID == "" {
		playlist.ID = shared.GenerateID()
	}

	now := time.Now().UTC()
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = now
	}
	if playlist.UpdatedAt.IsZero() {
		playlist.UpdatedAt = playlist.CreatedAt
	}

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: validation failed: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO playlists (id, sequence, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		playlist.ID,
		sequence,
		playlist.Name,
		playlist.Description,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	order, err := r.SetOrder(playlist.ID, playlist.VideoIDs)
	if err != nil {
		return err
	}
	playlist.VideoIDs = order

	return nil
}

// Get retrieves a playlist with its ordered video ids
func (r *PlaylistRepository) Get(id string) (*models.Playlist, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM playlists
		WHERE id = ?
	`

	playlist, err := r.scanOne(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	if playlist.VideoIDs, err = r.Order(id); err != nil {
		return nil, err
	}

	return playlist, nil
}

// Update modifies the name and description of an existing playlist and rewrites its order.
func (r *PlaylistRepository) Update(playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: validation failed: %v", shared.ErrInvalidInput, err)
	}

	if playlist.UpdatedAt.IsZero() {
		playlist.UpdatedAt = time.Now().UTC()
	}

	query := `
		UPDATE playlists
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, playlist.Name, playlist.Description, playlist.UpdatedAt, playlist.ID)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID)
	}

	order, err := r.SetOrder(playlist.ID, playlist.VideoIDs)
	if err != nil {
		return err
	}
	playlist.VideoIDs = order

	return nil
}

// Upsert applies a merge patch: absent fields keep their stored values and the order is
// rewritten only when the patch replaces it. A playlist that does not exist yet is created.
func (r *PlaylistRepository) Upsert(patch models.PlaylistPatch) error {
	if patch.ID == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrInvalidInput)
	}

	var exists bool
	if err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM playlists WHERE id = ?)", patch.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check playlist: %w", err)
	}

	if !exists {
		playlist := patch.Playlist()
		if playlist.Name == "" {
			return fmt.Errorf("%w: new playlist %s needs a name", shared.ErrInvalidInput, patch.ID)
		}
		return r.Create(&playlist)
	}

	sets := []string{}
	args := []any{}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.CreatedAt != nil {
		sets = append(sets, "created_at = ?")
		args = append(args, *patch.CreatedAt)
	}

	updatedAt := time.Now().UTC()
	if patch.UpdatedAt != nil {
		updatedAt = *patch.UpdatedAt
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, updatedAt, patch.ID)

	query := "UPDATE playlists SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	if patch.ReplaceOrder {
		if _, err := r.SetOrder(patch.ID, patch.Order); err != nil {
			return err
		}
	}

	return nil
}

// SetOrder replaces the ordering rows of a playlist and returns the order actually stored.
func (r *PlaylistRepository) SetOrder(playlistID string, videoIDs []string) ([]string, error) {
	if _, err := r.db.Exec("DELETE FROM playlist_videos WHERE playlist_id = ?", playlistID); err != nil {
		return nil, fmt.Errorf("failed to clear playlist order: %w", err)
	}

	query := `
		INSERT INTO playlist_videos (playlist_id, video_id, position)
		SELECT ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM videos WHERE id = ?)
	`

	stored := []string{}
	for _, videoID := range models.FilterIDs(videoIDs, nil) {
		result, err := r.db.Exec(query, playlistID, videoID, len(stored), videoID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert playlist video: %w", err)
		}

		if n, err := result.RowsAffected(); err == nil && n == 1 {
			stored = append(stored, videoID)
		}
	}

	return stored, nil
}

// Order returns the video ids of a playlist by position
func (r *PlaylistRepository) Order(playlistID string) ([]string, error) {
	rows, err := r.db.Query("SELECT video_id FROM playlist_videos WHERE playlist_id = ? ORDER BY position ASC", playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist order: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan playlist video: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Delete removes a playlist; its ordering rows cascade
func (r *PlaylistRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	return nil
}

// List retrieves all playlists with their orders, in creation sequence.
//
// Supported criteria: "name" (case-insensitive match).
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.Playlist, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM playlists
		WHERE 1 = 1
	`

	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ? COLLATE NOCASE"
		args = append(args, name)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}

	playlists := []*models.Playlist{}
	for rows.Next() {
		playlist, err := r.scanRow(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	// Orders are read after the cursor closes; the database runs on a single connection.
	for _, playlist := range playlists {
		if playlist.VideoIDs, err = r.Order(playlist.ID); err != nil {
			return nil, err
		}
	}

	return playlists, nil
}

// scanOne scans a single row into a [models.Playlist]
func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return &p, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Playlist]
func (r *PlaylistRepository) scanRow(rows *sql.Rows) (*models.Playlist, error) {
	var p models.Playlist
	if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return &p, nil
}
