// Package repositories implements SQLite persistence for the video collection.
//
// Key Implementations:
//   - [VideoRepository] : Master list of videos keyed by external video id
//   - [PlaylistRepository] : Playlists and their ordering rows (playlist_videos)
//   - [CollectionStore] : Whole-collection load plus transactional replace and merge writes
//
// Sequence numbers provide stable listing order independent of ids and timestamps.
// The [NextSequence] function increments per-table sequence counters in dedicated sequence tables.
package repositories
