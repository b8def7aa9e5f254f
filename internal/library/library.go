// Package library holds the in-memory collection: the master list of videos, the playlists, the
// current selection and the playback sequencer.
//
// Every mutation keeps the collection invariants (playlist entries reference existing videos, no
// duplicates within a playlist, names unique ignoring case) and hands the new state to a
// [Persister]. Operations are serialized by a mutex.
package library

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/playback"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// Persister receives state changes. tasks.Synchronizer implements it.
type Persister interface {
	// Schedule saves the mirror and arms a debounced full push.
	Schedule(snapshot models.Snapshot)
	// SaveLocal saves the mirror and folds snapshot into any full push not yet settled.
	SaveLocal(snapshot models.Snapshot)
	// PushPlaylist sends a best-effort merge of one playlist.
	PushPlaylist(playlist models.Playlist, videos []models.Video)
	// DeletePlaylist removes a playlist remotely and reports failure.
	DeletePlaylist(ctx context.Context, id string) error
}

// Library is the collection state and the playlist ordering engine.
type Library struct {
	mu        sync.Mutex
	videos    []models.Video
	playlists []models.Playlist
	selection []string
	updatedAt time.Time

	seq       *playback.Sequencer
	persister Persister
	logger    *log.Logger
	now       func() time.Time
}

// New creates an empty library.
func New(persister Persister, player playback.Player, logger *log.Logger) *Library {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if player == nil {
		player = playback.NopPlayer{}
	}
	return &Library{
		videos:    []models.Video{},
		playlists: []models.Playlist{},
		selection: []string{},
		seq:       playback.NewSequencer(player, logger),
		persister: persister,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Restore replaces the whole state with s without persisting it. Playback and selection reset.
func (l *Library) Restore(s models.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := s.Clone()
	c.Normalize()
	l.videos = c.Videos
	l.playlists = c.Playlists
	l.selection = []string{}
	l.updatedAt = c.UpdatedAt
	_ = l.seq.Close()
}

// Snapshot returns a deep copy of the collection.
func (l *Library) Snapshot() models.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Library) snapshot() models.Snapshot {
	return models.Snapshot{Videos: l.videos, Playlists: l.playlists, UpdatedAt: l.updatedAt}.Clone()
}

// Videos returns the master list in insertion order.
func (l *Library) Videos() []models.Video {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.videos)
}

// Playlists returns every playlist.
func (l *Library) Playlists() []models.Playlist {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Playlist, 0, len(l.playlists))
	for _, p := range l.playlists {
		out = append(out, p.Clone())
	}
	return out
}

// Video looks up a video by id.
func (l *Library) Video(id string) (models.Video, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.videoIndex(id); i >= 0 {
		return l.videos[i], nil
	}
	return models.Video{}, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
}

// Playlist looks up a playlist by id, or by name ignoring case.
func (l *Library) Playlist(ref string) (models.Playlist, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, err := l.findPlaylist(ref)
	if err != nil {
		return models.Playlist{}, err
	}
	return l.playlists[i].Clone(), nil
}

// PlaylistVideos returns the videos of a playlist in order.
func (l *Library) PlaylistVideos(ref string) (models.Playlist, []models.Video, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, err := l.findPlaylist(ref)
	if err != nil {
		return models.Playlist{}, nil, err
	}
	return l.playlists[i].Clone(), l.resolve(l.playlists[i].VideoIDs), nil
}

// AddVideo inserts v into the master list. It returns false when a video with the same id exists.
func (l *Library) AddVideo(v models.Video) (bool, error) {
	if err := v.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.videoIndex(v.ID) >= 0 {
		return false, nil
	}
	l.videos = append(l.videos, v)
	l.touch()
	l.schedule()
	return true, nil
}

// AddVideos inserts every new video and persists once. It returns how many were added.
func (l *Library) AddVideos(videos []models.Video) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	added := 0
	for _, v := range videos {
		if v.Validate() != nil || l.videoIndex(v.ID) >= 0 {
			continue
		}
		l.videos = append(l.videos, v)
		added++
	}
	if added > 0 {
		l.touch()
		l.schedule()
	}
	return added
}

// DeleteVideoGlobally removes a video from the master list, the selection and every playlist.
// If it is playing, playback advances to the next video or stops.
func (l *Library) DeleteVideoGlobally(videoID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.videoIndex(videoID)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrVideoNotFound, videoID)
	}

	l.videos = slices.Delete(l.videos, i, i+1)
	l.selection = slices.DeleteFunc(l.selection, func(id string) bool { return id == videoID })

	now := l.now()
	for pi := range l.playlists {
		p := &l.playlists[pi]
		if idx := p.IndexOf(videoID); idx >= 0 {
			p.VideoIDs = slices.Delete(p.VideoIDs, idx, idx+1)
			p.UpdatedAt = now
		}
	}

	if err := l.seq.Remove(videoID); err != nil {
		l.logger.Warn("playback did not follow deletion", "error", err)
	}

	l.touch()
	l.schedule()
	return nil
}

// Select adds a video to the selection. Selecting twice is a no-op.
func (l *Library) Select(videoID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.videoIndex(videoID) < 0 {
		return fmt.Errorf("%w: %s", shared.ErrVideoNotFound, videoID)
	}
	if !slices.Contains(l.selection, videoID) {
		l.selection = append(l.selection, videoID)
	}
	return nil
}

// Deselect removes a video from the selection. Deselecting an unselected video is a no-op.
func (l *Library) Deselect(videoID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selection = slices.DeleteFunc(l.selection, func(id string) bool { return id == videoID })
}

// ToggleSelection flips membership and reports whether the video is now selected.
func (l *Library) ToggleSelection(videoID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if idx := slices.Index(l.selection, videoID); idx >= 0 {
		l.selection = slices.Delete(l.selection, idx, idx+1)
		return false, nil
	}
	if l.videoIndex(videoID) < 0 {
		return false, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, videoID)
	}
	l.selection = append(l.selection, videoID)
	return true, nil
}

// SetSelection replaces the selection, keeping known ids in the given order.
func (l *Library) SetSelection(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selection = models.FilterIDs(ids, l.knownVideos())
}

// Selection returns the selected ids in the order they were selected.
func (l *Library) Selection() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.selection)
}

// ClearSelection empties the selection.
func (l *Library) ClearSelection() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selection = []string{}
}

func (l *Library) videoIndex(id string) int {
	return slices.IndexFunc(l.videos, func(v models.Video) bool { return v.ID == id })
}

func (l *Library) knownVideos() map[string]bool {
	known := make(map[string]bool, len(l.videos))
	for _, v := range l.videos {
		known[v.ID] = true
	}
	return known
}

func (l *Library) resolve(ids []string) []models.Video {
	out := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		if i := l.videoIndex(id); i >= 0 {
			out = append(out, l.videos[i])
		}
	}
	return out
}

// findPlaylist matches by id first, then by name ignoring case.
func (l *Library) findPlaylist(ref string) (int, error) {
	if i := slices.IndexFunc(l.playlists, func(p models.Playlist) bool { return p.ID == ref }); i >= 0 {
		return i, nil
	}
	name := shared.NormalizeName(ref)
	if name != "" {
		if i := slices.IndexFunc(l.playlists, func(p models.Playlist) bool { return shared.NormalizeName(p.Name) == name }); i >= 0 {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, ref)
}

// checkName validates a playlist name; skipID excludes the playlist being renamed.
func (l *Library) checkName(name, skipID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}
	folded := shared.NormalizeName(name)
	for _, p := range l.playlists {
		if p.ID != skipID && shared.NormalizeName(p.Name) == folded {
			return "", fmt.Errorf("%w: %s", shared.ErrDuplicateName, name)
		}
	}
	return name, nil
}

func (l *Library) touch() {
	l.updatedAt = l.now()
}

func (l *Library) schedule() {
	if l.persister != nil {
		l.persister.Schedule(l.snapshot())
	}
}

func (l *Library) pushPlaylist(i int) {
	if l.persister == nil {
		return
	}
	l.persister.SaveLocal(l.snapshot())
	p := l.playlists[i].Clone()
	l.persister.PushPlaylist(p, l.resolve(p.VideoIDs))
}
