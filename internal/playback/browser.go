package playback

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/services"
)

// BrowserPlayer plays videos by opening their link in the system browser.
type BrowserPlayer struct {
	goos  string
	start func(name string, args ...string) error
}

// NewBrowserPlayer creates a player for the current platform.
func NewBrowserPlayer() *BrowserPlayer {
	return &BrowserPlayer{goos: runtime.GOOS, start: startCommand}
}

// Load opens the video's source link, or its watch page when the link is missing.
func (p *BrowserPlayer) Load(v models.Video) error {
	name, args, err := openCommand(p.goos, VideoLink(v))
	if err != nil {
		return err
	}
	if err := p.start(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", v.ID, err)
	}
	return nil
}

// Stop is a no-op: a browser tab cannot be closed from here.
func (p *BrowserPlayer) Stop() error { return nil }

// VideoLink is the link a player opens for v.
func VideoLink(v models.Video) string {
	if v.SourceURL != "" {
		return v.SourceURL
	}
	return services.WatchURL(v.ID)
}

// openCommand returns the launcher for link on macOS, Linux or Windows.
func openCommand(goos, link string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{link}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{link}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", link}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// NopPlayer satisfies [Player] without side effects. Used when the browser is disabled.
type NopPlayer struct{}

func (NopPlayer) Load(models.Video) error { return nil }
func (NopPlayer) Stop() error             { return nil }
