package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

const (
	DefaultOEmbedURL = "https://www.youtube.com/oembed"
	UnknownChannel   = "Unknown channel"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoID extracts the video id from a watch, short, embed, shorts or live link, or accepts a bare id.
func ParseVideoID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if videoIDPattern.MatchString(link) {
		return link, nil
	}

	if !strings.Contains(link, "://") {
		link = "https://" + link
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	var id string
	switch {
	case host == "youtu.be":
		if len(parts) > 0 {
			id = parts[0]
		}
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") || host == "youtube-nocookie.com":
		if u.Path == "/watch" {
			id = u.Query().Get("v")
			break
		}
		if len(parts) >= 2 {
			switch parts[0] {
			case "embed", "shorts", "live", "v":
				id = parts[1]
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: no video id in %q", shared.ErrInvalidInput, link)
	}
	return id, nil
}

// WatchURL returns the canonical link for a video id
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// ThumbnailURL returns the static thumbnail location for a video id
func ThumbnailURL(id string) string {
	return "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"
}

// Placeholder is the metadata used when a lookup fails.
func Placeholder(id string) models.Video {
	return models.Video{
		ID:           id,
		Title:        "Video " + id,
		ThumbnailURL: ThumbnailURL(id),
		ChannelTitle: UnknownChannel,
		SourceURL:    WatchURL(id),
	}
}

type oEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// OEmbedFetcher implements [MetadataFetcher] with the public oEmbed endpoint.
type OEmbedFetcher struct {
	api    *APIService
	logger *log.Logger
}

// NewOEmbedFetcher creates a fetcher against endpoint (defaults to [DefaultOEmbedURL]).
func NewOEmbedFetcher(endpoint string, client *http.Client, logger *log.Logger) *OEmbedFetcher {
	if endpoint == "" {
		endpoint = DefaultOEmbedURL
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &OEmbedFetcher{api: NewAPIService(endpoint, client), logger: logger}
}

// NewOEmbedFetcherFromConfig builds a fetcher with the configured endpoint and timeout.
func NewOEmbedFetcherFromConfig(cfg shared.MetadataConfig, logger *log.Logger) *OEmbedFetcher {
	return NewOEmbedFetcher(cfg.OEmbedURL, &http.Client{Timeout: cfg.Timeout()}, logger)
}

// Fetch resolves link to metadata. Lookup failures are logged and yield [Placeholder] metadata.
func (f *OEmbedFetcher) Fetch(ctx context.Context, link string) (models.Video, error) {
	id, err := ParseVideoID(link)
	if err != nil {
		return models.Video{}, err
	}

	video := Placeholder(id)

	query := url.Values{"url": {WatchURL(id)}, "format": {"json"}}
	resp, err := f.api.Get(ctx, "?"+query.Encode())
	if err != nil {
		f.logger.Warn("metadata lookup failed, using placeholder", "id", id, "error", err)
		return video, nil
	}
	if !resp.OK() {
		f.logger.Warn("metadata lookup rejected, using placeholder", "id", id, "status", resp.StatusCode)
		return video, nil
	}

	var meta oEmbedResponse
	if err := json.Unmarshal(resp.Body, &meta); err != nil {
		f.logger.Warn("metadata response unreadable, using placeholder", "id", id, "error", err)
		return video, nil
	}

	if meta.Title != "" {
		video.Title = meta.Title
	}
	if meta.AuthorName != "" {
		video.ChannelTitle = meta.AuthorName
	}
	if meta.ThumbnailURL != "" {
		video.ThumbnailURL = meta.ThumbnailURL
	}
	return video, nil
}
