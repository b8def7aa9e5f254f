package formatter

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/vidshelf/internal/models"
)

const maxTitleWidth = 48

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// VideoTable renders the master list. Selected videos are marked with an asterisk.
func VideoTable(videos []models.Video, selection []string) string {
	t := newTable("", "#", "ID", "Title", "Channel", "Duration")
	for i, v := range videos {
		mark := ""
		if slices.Contains(selection, v.ID) {
			mark = "*"
		}
		t.Row(mark, fmt.Sprint(i+1), v.ID, truncate(v.Title, maxTitleWidth), v.ChannelTitle, v.Duration)
	}
	return t.String()
}

// PlaylistTable renders playlists with their size and last update.
func PlaylistTable(playlists []models.Playlist) string {
	t := newTable("ID", "Name", "Videos", "Updated")
	for _, p := range playlists {
		t.Row(p.ID, truncate(p.Name, maxTitleWidth), fmt.Sprint(len(p.VideoIDs)), formatTime(p.UpdatedAt))
	}
	return t.String()
}

// PlaylistVideoTable renders one playlist in order, marking the video at current with an arrow.
// A negative current marks nothing.
func PlaylistVideoTable(videos []models.Video, current int) string {
	t := newTable("", "#", "ID", "Title", "Channel")
	for i, v := range videos {
		mark := ""
		if i == current {
			mark = ">"
		}
		t.Row(mark, fmt.Sprint(i+1), v.ID, truncate(v.Title, maxTitleWidth), v.ChannelTitle)
	}
	return t.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
