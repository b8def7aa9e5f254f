package services

import (
	"context"

	"github.com/desertthunder/vidshelf/internal/models"
)

// RemoteStore is the remote tabular store holding the authoritative collection.
type RemoteStore interface {
	// Fetch retrieves the whole collection.
	// A body missing either top-level array is [shared.ErrMalformedPayload].
	Fetch(ctx context.Context) (models.Snapshot, error)

	// Write sends a replace or merge request.
	Write(ctx context.Context, req models.WriteRequest) (models.WriteResult, error)

	// DeletePlaylist removes one playlist and its ordering rows.
	DeletePlaylist(ctx context.Context, id string) error
}

// MetadataFetcher resolves a video link to metadata.
//
// Implementations never fail on lookup errors: they degrade to [Placeholder] metadata.
// An error is returned only when the link does not name a video.
type MetadataFetcher interface {
	Fetch(ctx context.Context, link string) (models.Video, error)
}
