// Package playback sequences the videos of one playlist through an external player.
//
// Playing a single video uses a one-item queue built by [Single]; there is no separate mode.
// Next and Previous are no-ops at the ends of the queue. When the last video ends, playback stops.
package playback

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// SinglePrefix marks the id of a synthetic one-video queue.
const SinglePrefix = "single:"

// Player is the external collaborator that actually renders a video.
type Player interface {
	Load(video models.Video) error
	Stop() error
}

// Queue is what the sequencer plays: the videos of one playlist in order.
type Queue struct {
	PlaylistID string
	Name       string
	Videos     []models.Video
}

// Single builds a one-item queue for playing video on its own.
func Single(video models.Video) Queue {
	return Queue{PlaylistID: SinglePrefix + video.ID, Name: video.Title, Videos: []models.Video{video}}
}

// State is a copy of the sequencer position.
type State struct {
	PlaylistID string
	Name       string
	Queue      []models.Video
	Index      int
	Open       bool
}

// Sequencer tracks the position within the playing queue. It is not safe for concurrent use.
type Sequencer struct {
	player Player
	logger *log.Logger
	state  State
}

// NewSequencer creates a closed sequencer driving player.
func NewSequencer(player Player, logger *log.Logger) *Sequencer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Sequencer{player: player, logger: logger}
}

// Play starts q from its first video.
func (s *Sequencer) Play(q Queue) error {
	if len(q.Videos) == 0 {
		return fmt.Errorf("%w: %s", shared.ErrEmptyPlaylist, q.Name)
	}

	s.state = State{
		PlaylistID: q.PlaylistID,
		Name:       q.Name,
		Queue:      slices.Clone(q.Videos),
		Index:      0,
		Open:       true,
	}
	return s.load()
}

// Next moves to the following video. At the last video it does nothing and returns false.
func (s *Sequencer) Next() (bool, error) {
	if !s.state.Open || s.state.Index >= len(s.state.Queue)-1 {
		return false, nil
	}
	s.state.Index++
	return true, s.load()
}

// Previous moves to the preceding video. At the first video it does nothing and returns false.
func (s *Sequencer) Previous() (bool, error) {
	if !s.state.Open || s.state.Index == 0 {
		return false, nil
	}
	s.state.Index--
	return true, s.load()
}

// OnEnded advances after the current video finishes, closing playback after the last one.
func (s *Sequencer) OnEnded() error {
	if !s.state.Open {
		return nil
	}
	if s.state.Index >= len(s.state.Queue)-1 {
		return s.Close()
	}
	_, err := s.Next()
	return err
}

// Close stops playback and releases the player.
func (s *Sequencer) Close() error {
	if !s.state.Open {
		return nil
	}
	s.state = State{}
	if err := s.player.Stop(); err != nil {
		return fmt.Errorf("failed to stop player: %w", err)
	}
	return nil
}

// Playing reports whether playlistID is the open queue.
func (s *Sequencer) Playing(playlistID string) bool {
	return s.state.Open && s.state.PlaylistID == playlistID
}

// Resync applies a new order of the playing playlist.
//
// The current video keeps playing at its new index. If it is gone, playback restarts at the first
// video, or stops when the playlist is now empty.
func (s *Sequencer) Resync(playlistID string, videos []models.Video) error {
	if !s.Playing(playlistID) {
		return nil
	}

	current := s.state.Queue[s.state.Index].ID
	s.state.Queue = slices.Clone(videos)

	if idx := slices.IndexFunc(videos, func(v models.Video) bool { return v.ID == current }); idx >= 0 {
		s.state.Index = idx
		return nil
	}

	if len(videos) == 0 {
		return s.Close()
	}

	s.state.Index = 0
	return s.load()
}

// Remove drops videoID from the open queue.
//
// Removing the current video advances to the next one, or stops if none remain after it.
func (s *Sequencer) Remove(videoID string) error {
	if !s.state.Open {
		return nil
	}

	idx := slices.IndexFunc(s.state.Queue, func(v models.Video) bool { return v.ID == videoID })
	if idx < 0 {
		return nil
	}

	s.state.Queue = slices.Delete(s.state.Queue, idx, idx+1)

	switch {
	case idx < s.state.Index:
		s.state.Index--
		return nil
	case idx > s.state.Index:
		return nil
	case s.state.Index < len(s.state.Queue):
		return s.load()
	default:
		return s.Close()
	}
}

// State returns a copy of the current position.
func (s *Sequencer) State() State {
	st := s.state
	st.Queue = slices.Clone(s.state.Queue)
	return st
}

// Current returns the video being played.
func (s *Sequencer) Current() (models.Video, bool) {
	if !s.state.Open || s.state.Index >= len(s.state.Queue) {
		return models.Video{}, false
	}
	return s.state.Queue[s.state.Index], true
}

func (s *Sequencer) load() error {
	v := s.state.Queue[s.state.Index]
	s.logger.Debug("loading video", "playlist", s.state.PlaylistID, "index", s.state.Index, "id", v.ID)
	if err := s.player.Load(v); err != nil {
		s.logger.Warn("player failed to load video", "id", v.ID, "error", err)
		return fmt.Errorf("failed to load video %s: %w", v.ID, err)
	}
	return nil
}
