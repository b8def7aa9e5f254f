package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/vidshelf/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = videoItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
	playing  bool
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string {
	if i.playing {
		return "▶ " + i.playlist.Name
	}
	return i.playlist.Name
}
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d videos", len(i.playlist.VideoIDs))
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

// videoItem wraps [models.Video] to implement [list.Item].
type videoItem struct {
	video    models.Video
	selected bool
	current  bool
}

func (i videoItem) FilterValue() string { return i.video.Title }
func (i videoItem) Title() string {
	mark := "[ ] "
	if i.selected {
		mark = "[x] "
	}
	if i.current {
		mark += "▶ "
	}
	return mark + i.video.Title
}
func (i videoItem) Description() string {
	desc := i.video.ChannelTitle
	if i.video.Duration != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.video.Duration)
	}
	return desc
}
