// package models defines the data model for the video collection
package models

import (
	"fmt"
	"slices"
	"time"
)

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T any] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Video is the metadata of a single video. Identity is ID and the record is immutable once fetched.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Duration     string `json:"duration"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	SourceURL    string `json:"sourceUrl"`
}

// Validate checks that the video carries an id
func (v Video) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("video id is required")
	}
	return nil
}

// Playlist is a named, ordered list of video ids without duplicates.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks required playlist fields
func (p Playlist) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("playlist id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("playlist name is required")
	}
	return nil
}

// IndexOf returns the position of videoID in the playlist or -1.
func (p Playlist) IndexOf(videoID string) int {
	return slices.Index(p.VideoIDs, videoID)
}

// Contains reports whether videoID is part of the playlist.
func (p Playlist) Contains(videoID string) bool {
	return p.IndexOf(videoID) >= 0
}

// Clone returns a copy that does not share the VideoIDs backing array.
func (p Playlist) Clone() Playlist {
	p.VideoIDs = slices.Clone(p.VideoIDs)
	if p.VideoIDs == nil {
		p.VideoIDs = []string{}
	}
	return p
}

// Snapshot is the full collection state: the master list of videos and every playlist.
type Snapshot struct {
	Videos    []Video    `json:"videos"`
	Playlists []Playlist `json:"playlists"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Empty reports whether the snapshot has neither videos nor playlists.
func (s Snapshot) Empty() bool {
	return len(s.Videos) == 0 && len(s.Playlists) == 0
}

// Video looks up a video by id.
func (s Snapshot) Video(id string) (Video, bool) {
	for _, v := range s.Videos {
		if v.ID == id {
			return v, true
		}
	}
	return Video{}, false
}

// Playlist looks up a playlist by id.
func (s Snapshot) Playlist(id string) (Playlist, bool) {
	for _, p := range s.Playlists {
		if p.ID == id {
			return p, true
		}
	}
	return Playlist{}, false
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Videos:    slices.Clone(s.Videos),
		Playlists: make([]Playlist, len(s.Playlists)),
		UpdatedAt: s.UpdatedAt,
	}
	if out.Videos == nil {
		out.Videos = []Video{}
	}
	for i, p := range s.Playlists {
		out.Playlists[i] = p.Clone()
	}
	return out
}

// Normalize enforces the collection invariants in place.
//
// Videos without an id and repeated videos are dropped (first wins). Playlist entries that
// reference unknown videos or repeat an earlier entry are removed, preserving order.
func (s *Snapshot) Normalize() {
	known := make(map[string]bool, len(s.Videos))
	videos := make([]Video, 0, len(s.Videos))
	for _, v := range s.Videos {
		if v.ID == "" || known[v.ID] {
			continue
		}
		known[v.ID] = true
		videos = append(videos, v)
	}
	s.Videos = videos

	if s.Playlists == nil {
		s.Playlists = []Playlist{}
	}
	for i := range s.Playlists {
		s.Playlists[i].VideoIDs = FilterIDs(s.Playlists[i].VideoIDs, known)
	}
}

// FilterIDs keeps ids present in known, dropping repeats while preserving order.
// A nil known map accepts every non-empty id.
func FilterIDs(ids []string, known map[string]bool) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		if known != nil && !known[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// PlaylistExport is a playlist with its videos resolved in order.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Videos   []Video  `json:"videos"`
}
