package library

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// CreatePlaylist creates a playlist holding videoIDs in the given order.
//
// Unknown and repeated ids are dropped; if nothing remains the call fails with
// [shared.ErrInvalidInput] and nothing changes.
func (l *Library) CreatePlaylist(name, description string, videoIDs []string) (models.Playlist, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.createPlaylist(name, description, videoIDs)
}

// CreatePlaylistFromSelection creates a playlist from the selection and clears the selection.
func (l *Library) CreatePlaylistFromSelection(name, description string) (models.Playlist, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.createPlaylist(name, description, l.selection)
	if err != nil {
		return models.Playlist{}, err
	}
	l.selection = []string{}
	return p, nil
}

func (l *Library) createPlaylist(name, description string, videoIDs []string) (models.Playlist, error) {
	if len(videoIDs) == 0 {
		return models.Playlist{}, fmt.Errorf("%w: no videos selected", shared.ErrInvalidInput)
	}

	name, err := l.checkName(name, "")
	if err != nil {
		return models.Playlist{}, err
	}

	order := models.FilterIDs(videoIDs, l.knownVideos())
	if len(order) == 0 {
		return models.Playlist{}, fmt.Errorf("%w: none of the selected videos exist", shared.ErrInvalidInput)
	}

	now := l.now()
	p := models.Playlist{
		ID:          shared.GenerateID(),
		Name:        name,
		Description: description,
		VideoIDs:    order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.playlists = append(l.playlists, p)
	l.touch()
	l.schedule()

	l.logger.Info("playlist created", "id", p.ID, "name", p.Name, "videos", len(p.VideoIDs))
	return p.Clone(), nil
}

// UpdatePlaylist renames a playlist and replaces its description.
func (l *Library) UpdatePlaylist(ref, name, description string) (models.Playlist, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.findPlaylist(ref)
	if err != nil {
		return models.Playlist{}, err
	}

	name, err = l.checkName(name, l.playlists[i].ID)
	if err != nil {
		return models.Playlist{}, err
	}

	p := &l.playlists[i]
	p.Name = name
	p.Description = description
	p.UpdatedAt = l.now()
	l.touch()
	l.schedule()
	return p.Clone(), nil
}

// Reorder replaces the order of a playlist with newOrder.
//
// Unknown and repeated ids are dropped. If the playlist is playing, playback follows the current
// video to its new position.
func (l *Library) Reorder(ref string, newOrder []string) (models.Playlist, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.findPlaylist(ref)
	if err != nil {
		return models.Playlist{}, err
	}

	p := &l.playlists[i]
	p.VideoIDs = models.FilterIDs(newOrder, l.knownVideos())
	p.UpdatedAt = l.now()

	if err := l.seq.Resync(p.ID, l.resolve(p.VideoIDs)); err != nil {
		l.logger.Warn("playback did not follow reorder", "error", err)
	}

	l.touch()
	l.schedule()
	return p.Clone(), nil
}

// AppendDistinct appends the ids not already in the playlist, in the given order, and pushes only
// this playlist. It returns how many were appended.
func (l *Library) AppendDistinct(ref string, videoIDs []string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendDistinct(ref, videoIDs)
}

// AppendSelection appends the selection to a playlist.
func (l *Library) AppendSelection(ref string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendDistinct(ref, l.selection)
}

func (l *Library) appendDistinct(ref string, videoIDs []string) (int, error) {
	i, err := l.findPlaylist(ref)
	if err != nil {
		return 0, err
	}

	p := &l.playlists[i]
	added := 0
	for _, id := range models.FilterIDs(videoIDs, l.knownVideos()) {
		if !p.Contains(id) {
			p.VideoIDs = append(p.VideoIDs, id)
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}

	p.UpdatedAt = l.now()
	if l.seq.Playing(p.ID) {
		if err := l.seq.Resync(p.ID, l.resolve(p.VideoIDs)); err != nil {
			l.logger.Warn("playback did not follow append", "error", err)
		}
	}

	l.touch()
	l.pushPlaylist(i)
	return added, nil
}

// RemoveVideo takes one video out of a playlist, keeping the order of the rest. It reports whether
// the video was present; an absent video leaves the playlist untouched.
func (l *Library) RemoveVideo(ref, videoID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.findPlaylist(ref)
	if err != nil {
		return false, err
	}

	p := &l.playlists[i]
	idx := p.IndexOf(videoID)
	if idx < 0 {
		return false, nil
	}

	p.VideoIDs = slices.Delete(p.VideoIDs, idx, idx+1)
	p.UpdatedAt = l.now()

	if l.seq.Playing(p.ID) {
		if err := l.seq.Remove(videoID); err != nil {
			l.logger.Warn("playback did not follow removal", "error", err)
		}
	}

	l.touch()
	l.pushPlaylist(i)
	return true, nil
}

// DeletePlaylist deletes a playlist remotely first. If the remote delete fails the playlist is
// kept and the error returned. On success the playlist is removed locally and stops playing.
func (l *Library) DeletePlaylist(ctx context.Context, ref string) error {
	l.mu.Lock()
	i, err := l.findPlaylist(ref)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	id := l.playlists[i].ID
	l.mu.Unlock()

	if l.persister != nil {
		if err := l.persister.DeletePlaylist(ctx, id); err != nil {
			return fmt.Errorf("playlist kept, remote delete failed: %w", err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.playlists = slices.DeleteFunc(l.playlists, func(p models.Playlist) bool { return p.ID == id })
	if l.seq.Playing(id) {
		if err := l.seq.Close(); err != nil {
			l.logger.Warn("failed to stop playback", "error", err)
		}
	}

	l.touch()
	l.schedule()
	l.logger.Info("playlist deleted", "id", id)
	return nil
}
