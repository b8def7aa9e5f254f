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

const videoColumns = "id, title, thumbnail_url, duration, channel_title, published_at, source_url"

// VideoRepository implements models.Repository[*models.Video] for the master video list.
type VideoRepository struct {
	db querier
}

// NewVideoRepository creates a new VideoRepository with the given database connection
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *VideoRepository) WithTx(tx *sql.Tx) *VideoRepository {
	return &VideoRepository{db: tx}
}

// Create inserts a new video with the next sequence number
func (r *VideoRepository) Create(video *models.Video) error {
	if err := video.Validate(); err != nil {
		return fmt.Errorf("%w: validation failed: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "videos")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO videos (id, sequence, title, thumbnail_url, duration, channel_title, published_at, source_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	_, err = r.db.Exec(query,
		video.ID,
		sequence,
		video.Title,
		video.ThumbnailURL,
		video.Duration,
		video.ChannelTitle,
		video.PublishedAt,
		video.SourceURL,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}

	return nil
}

// Upsert inserts the video or overwrites the metadata of an existing row, keeping its sequence.
func (r *VideoRepository) Upsert(video *models.Video) error {
	if err := video.Validate(); err != nil {
		return fmt.Errorf("%w: validation failed: %v", shared.ErrInvalidInput, err)
	}

	var exists bool
	if err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM videos WHERE id = ?)", video.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check video: %w", err)
	}

	if !exists {
		return r.Create(video)
	}
	return r.Update(video)
}

// Get retrieves a video by ID
func (r *VideoRepository) Get(id string) (*models.Video, error) {
	query := "SELECT " + videoColumns + " FROM videos WHERE id = ?"
	return r.scanOne(r.db.QueryRow(query, id))
}

// Update overwrites the metadata of an existing video
func (r *VideoRepository) Update(video *models.Video) error {
	if err := video.Validate(); err != nil {
		return fmt.Errorf("%w: validation failed: %v", shared.ErrInvalidInput, err)
	}

	query := `
		UPDATE videos
		SET title = ?, thumbnail_url = ?, duration = ?, channel_title = ?, published_at = ?, source_url = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		video.Title,
		video.ThumbnailURL,
		video.Duration,
		video.ChannelTitle,
		video.PublishedAt,
		video.SourceURL,
		time.Now().UTC(),
		video.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrVideoNotFound, video.ID)
	}

	return nil
}

// Delete removes a video; its ordering rows cascade
func (r *VideoRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM videos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
	}

	return nil
}

// List retrieves videos in insertion order.
//
// Supported criteria: "channel_title" (exact match) and "ids" ([]string).
func (r *VideoRepository) List(criteria map[string]any) ([]*models.Video, error) {
	query := "SELECT " + videoColumns + " FROM videos WHERE 1 = 1"
	args := []any{}

	if channel, ok := criteria["channel_title"].(string); ok && channel != "" {
		query += " AND channel_title = ?"
		args = append(args, channel)
	}

	if ids, ok := criteria["ids"].([]string); ok {
		if len(ids) == 0 {
			return []*models.Video{}, nil
		}
		query += " AND id IN (" + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	videos := []*models.Video{}
	for rows.Next() {
		video, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return videos, nil
}

// scanOne scans a single row into a [models.Video]
func (r *VideoRepository) scanOne(row *sql.Row) (*models.Video, error) {
	var v models.Video
	err := row.Scan(&v.ID, &v.Title, &v.ThumbnailURL, &v.Duration, &v.ChannelTitle, &v.PublishedAt, &v.SourceURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}
	return &v, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Video]
func (r *VideoRepository) scanRow(rows *sql.Rows) (*models.Video, error) {
	var v models.Video
	if err := rows.Scan(&v.ID, &v.Title, &v.ThumbnailURL, &v.Duration, &v.ChannelTitle, &v.PublishedAt, &v.SourceURL); err != nil {
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}
	return &v, nil
}
