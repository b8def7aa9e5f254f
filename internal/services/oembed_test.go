package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/vidshelf/internal/shared"
	tu "github.com/desertthunder/vidshelf/internal/testing"
)

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		want    string
		wantErr bool
	}{
		{name: "bare id", link: "dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "watch", link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", want: "dQw4w9WgXcQ"},
		{name: "mobile watch", link: "https://m.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "short link", link: "https://youtu.be/dQw4w9WgXcQ?si=abc", want: "dQw4w9WgXcQ"},
		{name: "no scheme", link: "youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "embed", link: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "shorts", link: "https://youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "live", link: "https://www.youtube.com/live/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "surrounding space", link: "  dQw4w9WgXcQ\n", want: "dQw4w9WgXcQ"},
		{name: "other host", link: "https://vimeo.com/12345678901", wantErr: true},
		{name: "channel page", link: "https://www.youtube.com/@someone", wantErr: true},
		{name: "short id", link: "https://youtu.be/abc", wantErr: true},
		{name: "empty", link: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVideoID(tt.link)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %q, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseVideoID(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestOEmbedFetcher(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	t.Run("Uses oEmbed metadata", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("url"); got != WatchURL("dQw4w9WgXcQ") {
				t.Errorf("unexpected url param %s", got)
			}
			w.Write([]byte(`{"title":"Never Gonna","author_name":"Rick","thumbnail_url":"https://img/x.jpg"}`))
		}))
		defer server.Close()

		video, err := NewOEmbedFetcher(server.URL, nil, logger).Fetch(ctx, "https://youtu.be/dQw4w9WgXcQ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if video.Title != "Never Gonna" || video.ChannelTitle != "Rick" || video.ThumbnailURL != "https://img/x.jpg" {
			t.Errorf("unexpected video %+v", video)
		}
		if video.SourceURL != WatchURL("dQw4w9WgXcQ") {
			t.Errorf("SourceURL = %s", video.SourceURL)
		}
	})

	t.Run("Falls back to placeholder", func(t *testing.T) {
		tests := []struct {
			name    string
			handler http.HandlerFunc
		}{
			{name: "not found", handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }},
			{name: "bad json", handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>")) }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(tt.handler)
				defer server.Close()

				video, err := NewOEmbedFetcher(server.URL, nil, logger).Fetch(ctx, "dQw4w9WgXcQ")
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if video != Placeholder("dQw4w9WgXcQ") {
					t.Errorf("expected placeholder, got %+v", video)
				}
			})
		}

		t.Run("unreachable", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("offline"))}
			video, err := NewOEmbedFetcher("", client, logger).Fetch(ctx, "dQw4w9WgXcQ")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if video.Title != "Video dQw4w9WgXcQ" || video.ChannelTitle != UnknownChannel {
				t.Errorf("unexpected placeholder %+v", video)
			}
		})
	})

	t.Run("Rejects links without a video", func(t *testing.T) {
		if _, err := NewOEmbedFetcher("", nil, logger).Fetch(ctx, "not a link"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
