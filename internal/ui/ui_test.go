package ui

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidshelf/internal/library"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/desertthunder/vidshelf/internal/tasks"
	tu "github.com/desertthunder/vidshelf/internal/testing"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (*Model, *library.Library, *tu.FakePlayer) {
	t.Helper()

	player := &tu.FakePlayer{}
	lib := library.New(nil, player, shared.NewLogger(io.Discard))
	lib.Restore(models.Snapshot{
		Videos: []models.Video{
			{ID: "v1", Title: "One"},
			{ID: "v2", Title: "Two"},
			{ID: "v3", Title: "Three"},
		},
		Playlists: []models.Playlist{
			{ID: "p1", Name: "Mix", VideoIDs: []string{"v1", "v2", "v3"}},
		},
	})

	m := NewModel(context.Background(), lib, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, lib, player
}

func send(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func TestPlaylistListView(t *testing.T) {
	t.Run("play opens player", func(t *testing.T) {
		m, lib, player := newTestModel(t)

		send(m, runes("p"))

		if m.view != PlayerView {
			t.Fatalf("expected PlayerView, got %v", m.view)
		}
		if player.Last() != "v1" || !lib.PlaybackState().Open {
			t.Errorf("expected v1 to play, got %q", player.Last())
		}
		if !strings.Contains(m.View(), "Now playing: Mix (1/3)") {
			t.Errorf("unexpected player view:\n%s", m.View())
		}
	})

	t.Run("enter opens playlist", func(t *testing.T) {
		m, _, _ := newTestModel(t)

		send(m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.view != VideoListView || m.playlistID != "p1" {
			t.Fatalf("expected playlist videos, got view %v id %q", m.view, m.playlistID)
		}
		if n := len(m.videoList.Items()); n != 3 {
			t.Errorf("expected 3 items, got %d", n)
		}
	})

	t.Run("v opens master list", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		send(m, runes("v"))
		if m.view != VideoListView || m.playlistID != "" {
			t.Errorf("expected master list, got view %v id %q", m.view, m.playlistID)
		}
	})

	t.Run("delete runs in a command", func(t *testing.T) {
		m, lib, _ := newTestModel(t)

		_, cmd := m.Update(runes("D"))
		if cmd == nil {
			t.Fatal("expected delete command")
		}
		send(m, cmd())

		if _, err := lib.Playlist("p1"); err == nil {
			t.Error("expected playlist to be deleted")
		}
		if len(m.playlistList.Items()) != 0 {
			t.Error("expected list to refresh")
		}
	})

	t.Run("quit", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		_, cmd := m.Update(runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestVideoListView(t *testing.T) {
	t.Run("selection and create", func(t *testing.T) {
		m, lib, _ := newTestModel(t)
		send(m, runes("v"))

		send(m, tea.KeyMsg{Type: tea.KeySpace}, runes("j"), tea.KeyMsg{Type: tea.KeySpace})
		if got := lib.Selection(); !slices.Equal(got, []string{"v1", "v2"}) {
			t.Fatalf("expected [v1 v2], got %v", got)
		}

		send(m, runes("c"))
		if m.view != NameInputView {
			t.Fatalf("expected NameInputView, got %v", m.view)
		}
		send(m, runes("Picks"), tea.KeyMsg{Type: tea.KeyEnter})

		p, err := lib.Playlist("Picks")
		if err != nil {
			t.Fatalf("expected playlist to exist: %v", err)
		}
		if !slices.Equal(p.VideoIDs, []string{"v1", "v2"}) {
			t.Errorf("expected [v1 v2], got %v", p.VideoIDs)
		}
		if m.view != VideoListView || m.playlistID != p.ID {
			t.Error("expected new playlist to open")
		}
		if len(lib.Selection()) != 0 {
			t.Error("expected selection to be cleared")
		}
	})

	t.Run("create without selection", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		send(m, runes("v"), runes("c"))
		if m.view != VideoListView || m.status == "" {
			t.Error("expected a hint and no input view")
		}
	})

	t.Run("move down reorders", func(t *testing.T) {
		m, lib, _ := newTestModel(t)
		send(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("J"))

		p, _ := lib.Playlist("p1")
		if !slices.Equal(p.VideoIDs, []string{"v2", "v1", "v3"}) {
			t.Errorf("unexpected order %v", p.VideoIDs)
		}
		if m.videoList.Index() != 1 {
			t.Errorf("cursor should follow the video, got %d", m.videoList.Index())
		}
	})

	t.Run("remove", func(t *testing.T) {
		m, lib, _ := newTestModel(t)
		send(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("x"))

		p, _ := lib.Playlist("p1")
		if !slices.Equal(p.VideoIDs, []string{"v2", "v3"}) {
			t.Errorf("unexpected order %v", p.VideoIDs)
		}
	})

	t.Run("enter plays a single video", func(t *testing.T) {
		m, lib, player := newTestModel(t)
		send(m, runes("v"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter})

		if player.Last() != "v2" || m.view != PlayerView {
			t.Errorf("expected v2 in player, got %q view %v", player.Last(), m.view)
		}
		if lib.PlaybackState().PlaylistID == "p1" {
			t.Error("single video should not play the playlist")
		}
	})

	t.Run("esc goes back", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		send(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != PlaylistListView {
			t.Errorf("expected PlaylistListView, got %v", m.view)
		}
	})
}

func TestPlayerView(t *testing.T) {
	t.Run("next and previous", func(t *testing.T) {
		m, _, player := newTestModel(t)
		send(m, runes("p"), runes("n"), runes("n"))
		if player.Last() != "v3" {
			t.Fatalf("expected v3, got %q", player.Last())
		}

		send(m, runes("n"))
		if m.status != "end of queue" {
			t.Errorf("expected end of queue status, got %q", m.status)
		}

		send(m, runes("p"))
		if player.Last() != "v2" {
			t.Errorf("expected v2, got %q", player.Last())
		}
	})

	t.Run("ended on last closes", func(t *testing.T) {
		m, lib, player := newTestModel(t)
		send(m, runes("p"), runes("n"), runes("n"), runes("e"))

		if lib.PlaybackState().Open || player.Stops != 1 {
			t.Error("expected playback to close")
		}
		if m.view != PlaylistListView {
			t.Errorf("expected PlaylistListView, got %v", m.view)
		}
	})

	t.Run("player errors show in status", func(t *testing.T) {
		m, _, player := newTestModel(t)
		send(m, runes("p"))
		player.LoadErr = errors.New("no browser")
		send(m, runes("n"))
		if !m.statusErr || !strings.Contains(m.status, "no browser") {
			t.Errorf("expected error status, got %q", m.status)
		}
	})
}

func TestSyncEvents(t *testing.T) {
	player := &tu.FakePlayer{}
	lib := library.New(nil, player, shared.NewLogger(io.Discard))
	events := make(chan tasks.SyncEvent, 2)
	m := NewModel(context.Background(), lib, events)

	events <- tasks.SyncEvent{Phase: tasks.PushReplace, Err: shared.ErrAPIRequest}
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected event listener")
	}
	m.Update(cmd())
	if !m.statusErr || !strings.Contains(m.status, "push_replace") {
		t.Errorf("expected sync failure status, got %q", m.status)
	}

	close(events)
	_, cmd = m.Update(syncEventMsg(tasks.SyncEvent{Phase: tasks.SaveMirror}))
	if m.statusErr {
		t.Error("expected success status")
	}
	m.Update(cmd())
	if m.events != nil {
		t.Error("expected closed channel to stop listening")
	}
}
