package library

import (
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/playback"
)

// PlayPlaylist starts playing a playlist from its first video.
func (l *Library) PlayPlaylist(ref string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.findPlaylist(ref)
	if err != nil {
		return err
	}
	p := l.playlists[i]
	return l.seq.Play(playback.Queue{PlaylistID: p.ID, Name: p.Name, Videos: l.resolve(p.VideoIDs)})
}

// PlayVideo plays one video on its own.
func (l *Library) PlayVideo(videoID string) error {
	v, err := l.Video(videoID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq.Play(playback.Single(v))
}

// Next moves playback forward; it reports false at the end of the queue.
func (l *Library) Next() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq.Next()
}

// Previous moves playback back; it reports false at the start of the queue.
func (l *Library) Previous() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq.Previous()
}

// OnEnded is called when the current video finishes.
func (l *Library) OnEnded() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq.OnEnded()
}

// ClosePlayer stops playback.
func (l *Library) ClosePlayer() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq.Close()
}

// PlaybackState returns a copy of the sequencer state.
func (l *Library) PlaybackState() playback.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq.State()
}

// NowPlaying returns the current video, if any.
func (l *Library) NowPlaying() (models.Video, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq.Current()
}
