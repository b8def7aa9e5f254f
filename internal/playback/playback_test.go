package playback

import (
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/services"
	"github.com/desertthunder/vidshelf/internal/shared"
	tu "github.com/desertthunder/vidshelf/internal/testing"
)

func videos(ids ...string) []models.Video {
	out := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Video{ID: id})
	}
	return out
}

func newTestSequencer() (*Sequencer, *tu.FakePlayer) {
	player := &tu.FakePlayer{}
	return NewSequencer(player, shared.NewLogger(io.Discard)), player
}

func TestSequencer(t *testing.T) {
	t.Run("Play empty playlist", func(t *testing.T) {
		s, player := newTestSequencer()

		if err := s.Play(Queue{PlaylistID: "p"}); !errors.Is(err, shared.ErrEmptyPlaylist) {
			t.Errorf("expected ErrEmptyPlaylist, got %v", err)
		}
		if s.State().Open || len(player.Loaded) != 0 {
			t.Error("empty playlist should not open playback")
		}
	})

	t.Run("Play starts at first video", func(t *testing.T) {
		s, player := newTestSequencer()

		if err := s.Play(Queue{PlaylistID: "p", Videos: videos("a", "b", "c")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		st := s.State()
		if !st.Open || st.Index != 0 || player.Last() != "a" {
			t.Errorf("unexpected state %+v, loaded %s", st, player.Last())
		}
	})

	t.Run("Next at the last video stays put", func(t *testing.T) {
		s, player := newTestSequencer()
		s.Play(Queue{PlaylistID: "p", Videos: videos("a", "b", "c")})
		s.Next()
		s.Next()

		moved, err := s.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if moved {
			t.Error("Next at the end should not move")
		}
		if s.State().Index != 2 || !s.State().Open {
			t.Errorf("expected index 2 and open, got %+v", s.State())
		}
		if len(player.Loaded) != 3 {
			t.Errorf("expected no extra load, got %d", len(player.Loaded))
		}
	})

	t.Run("Previous at the first video stays put", func(t *testing.T) {
		s, _ := newTestSequencer()
		s.Play(Queue{PlaylistID: "p", Videos: videos("a", "b")})

		if moved, _ := s.Previous(); moved {
			t.Error("Previous at the start should not move")
		}

		s.Next()
		if moved, _ := s.Previous(); !moved || s.State().Index != 0 {
			t.Errorf("expected to move back to 0, got %+v", s.State())
		}
	})

	t.Run("OnEnded advances then stops", func(t *testing.T) {
		s, player := newTestSequencer()
		s.Play(Queue{PlaylistID: "p", Videos: videos("a", "b")})

		if err := s.OnEnded(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.State().Index != 1 || player.Last() != "b" {
			t.Errorf("expected to advance to b, got %+v", s.State())
		}

		if err := s.OnEnded(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.State().Open {
			t.Error("expected playback to stop after the last video")
		}
		if player.Stops != 1 {
			t.Errorf("expected player to be stopped once, got %d", player.Stops)
		}
	})

	t.Run("Close releases the player", func(t *testing.T) {
		s, player := newTestSequencer()
		s.Play(Single(models.Video{ID: "a", Title: "A"}))

		if !s.Playing(SinglePrefix + "a") {
			t.Error("expected single queue to be playing")
		}

		s.Close()
		s.Close()
		if player.Stops != 1 {
			t.Errorf("expected one stop, got %d", player.Stops)
		}
		if _, ok := s.Current(); ok {
			t.Error("expected no current video after close")
		}
		if moved, _ := s.Next(); moved {
			t.Error("Next on closed sequencer should be a no-op")
		}
	})

	t.Run("Player load failure is reported", func(t *testing.T) {
		player := &tu.FakePlayer{LoadErr: errors.New("no display")}
		s := NewSequencer(player, shared.NewLogger(io.Discard))

		if err := s.Play(Queue{PlaylistID: "p", Videos: videos("a")}); err == nil {
			t.Error("expected load error")
		}
	})
}

func TestSequencerResync(t *testing.T) {
	t.Run("current video keeps playing at its new index", func(t *testing.T) {
		s, player := newTestSequencer()
		s.Play(Queue{PlaylistID: "p", Videos: videos("w", "x", "y")})
		s.Next()

		if err := s.Resync("p", videos("x", "w", "y")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		current, _ := s.Current()
		if s.State().Index != 0 || current.ID != "x" {
			t.Errorf("expected x at index 0, got %+v", s.State())
		}
		if len(player.Loaded) != 2 {
			t.Errorf("the same video should not be reloaded, got %d loads", len(player.Loaded))
		}
	})

	t.Run("missing current restarts at the beginning", func(t *testing.T) {
		s, player := newTestSequencer()
		s.Play(Queue{PlaylistID: "p", Videos: videos("a", "b")})
		s.Next()

		s.Resync("p", videos("c", "a"))
		if s.State().Index != 0 || player.Last() != "c" {
			t.Errorf("expected restart at c, got %+v", s.State())
		}
	})

	t.Run("empty order stops", func(t *testing.T) {
		s, _ := newTestSequencer()
		s.Play(Queue{PlaylistID: "p", Videos: videos("a")})

		s.Resync("p", nil)
		if s.State().Open {
			t.Error("expected playback to stop")
		}
	})

	t.Run("other playlist is ignored", func(t *testing.T) {
		s, _ := newTestSequencer()
		s.Play(Queue{PlaylistID: "p", Videos: videos("a", "b")})

		s.Resync("other", nil)
		if len(s.State().Queue) != 2 {
			t.Error("resync of another playlist should not touch the queue")
		}
	})
}

func TestSequencerRemove(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		remove    string
		wantOpen  bool
		wantIndex int
		wantID    string
	}{
		{name: "before current", start: 2, remove: "a", wantOpen: true, wantIndex: 1, wantID: "c"},
		{name: "after current", start: 0, remove: "c", wantOpen: true, wantIndex: 0, wantID: "a"},
		{name: "current advances", start: 1, remove: "b", wantOpen: true, wantIndex: 1, wantID: "c"},
		{name: "current last stops", start: 2, remove: "c", wantOpen: false},
		{name: "absent", start: 1, remove: "z", wantOpen: true, wantIndex: 1, wantID: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSequencer()
			s.Play(Queue{PlaylistID: "p", Videos: videos("a", "b", "c")})
			for i := 0; i < tt.start; i++ {
				s.Next()
			}

			if err := s.Remove(tt.remove); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			st := s.State()
			if st.Open != tt.wantOpen {
				t.Fatalf("Open = %v, want %v", st.Open, tt.wantOpen)
			}
			if !tt.wantOpen {
				return
			}
			current, _ := s.Current()
			if st.Index != tt.wantIndex || current.ID != tt.wantID {
				t.Errorf("got index %d (%s), want %d (%s)", st.Index, current.ID, tt.wantIndex, tt.wantID)
			}
		})
	}
}

func TestBrowserPlayer(t *testing.T) {
	t.Run("opens the source link or the watch page", func(t *testing.T) {
		var opened [][]string
		p := &BrowserPlayer{goos: "linux", start: func(name string, args ...string) error {
			opened = append(opened, append([]string{name}, args...))
			return nil
		}}

		if err := p.Load(models.Video{ID: "a", SourceURL: "https://youtu.be/a"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := p.Load(models.Video{ID: "b"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(opened) != 2 {
			t.Fatalf("expected two launches, got %v", opened)
		}
		if opened[0][0] != "xdg-open" || opened[0][1] != "https://youtu.be/a" {
			t.Errorf("unexpected launch %v", opened[0])
		}
		if opened[1][1] != services.WatchURL("b") {
			t.Errorf("expected watch page, got %v", opened[1])
		}
		if err := p.Stop(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("launch failure is wrapped", func(t *testing.T) {
		p := &BrowserPlayer{goos: "darwin", start: func(string, ...string) error { return errors.New("boom") }}
		if err := p.Load(models.Video{ID: "a"}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("openCommand per platform", func(t *testing.T) {
		tests := []struct {
			goos    string
			want    string
			wantErr bool
		}{
			{"darwin", "open", false},
			{"linux", "xdg-open", false},
			{"windows", "rundll32", false},
			{"plan9", "", true},
		}

		for _, tt := range tests {
			name, args, err := openCommand(tt.goos, "https://example.com")
			if (err != nil) != tt.wantErr {
				t.Errorf("%s: error = %v, wantErr %v", tt.goos, err, tt.wantErr)
				continue
			}
			if name != tt.want {
				t.Errorf("%s: command = %q, want %q", tt.goos, name, tt.want)
			}
			if !tt.wantErr && args[len(args)-1] != "https://example.com" {
				t.Errorf("%s: link not passed last: %v", tt.goos, args)
			}
		}
	})

	if p := NewBrowserPlayer(); p.start == nil || p.goos == "" {
		t.Error("expected default launcher")
	}
}
