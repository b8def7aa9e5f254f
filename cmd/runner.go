package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidshelf/internal/library"
	"github.com/desertthunder/vidshelf/internal/mirror"
	"github.com/desertthunder/vidshelf/internal/playback"
	"github.com/desertthunder/vidshelf/internal/services"
	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/desertthunder/vidshelf/internal/tasks"
	"github.com/urfave/cli/v3"
)

const selectionFile = ".vidshelf-selection.json"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	remote     services.RemoteStore
	mirror     mirror.Mirror
	fetcher    services.MetadataFetcher
	player     playback.Player
	logger     *log.Logger
	output     io.Writer
	sync       *tasks.Synchronizer
	lib        *library.Library
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Remote     services.RemoteStore
	Mirror     mirror.Mirror
	Fetcher    services.MetadataFetcher
	Player     playback.Player
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Collaborators left nil are built from the config.
func NewRunner(opts RunnerOpts) (*Runner, error) {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Remote == nil {
		opts.Remote = services.NewRemoteClientFromConfig(opts.Config.Remote)
	}
	if opts.Mirror == nil {
		m, err := mirror.New(opts.Config.Mirror)
		if err != nil {
			return nil, err
		}
		opts.Mirror = m
	}
	if opts.Fetcher == nil {
		opts.Fetcher = services.NewOEmbedFetcherFromConfig(opts.Config.Metadata, opts.Logger)
	}
	if opts.Player == nil {
		if opts.Config.Player.OpenBrowser {
			opts.Player = playback.NewBrowserPlayer()
		} else {
			opts.Player = playback.NopPlayer{}
		}
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		remote:     opts.Remote,
		mirror:     opts.Mirror,
		fetcher:    opts.Fetcher,
		player:     opts.Player,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.wire()
	return r, nil
}

// wire builds the synchronizer and library over the current logger.
func (r *Runner) wire() {
	r.sync = tasks.NewSynchronizer(r.remote, r.mirror, r.config.Remote.Debounce(), r.logger).
		WithTimeout(r.config.Remote.Timeout())
	r.lib = library.New(r.sync, r.player, r.logger)
}

// SetLogger replaces the logger and rebuilds the components that hold it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.wire()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, videoCommand, playlistCommand, selectCommand, syncCommand, playCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// open loads the collection into the library and restores the saved selection.
func (r *Runner) open(ctx context.Context) (tasks.Source, error) {
	snapshot, source, err := r.sync.Load(ctx)
	if err != nil {
		return source, fmt.Errorf("failed to load collection: %w", err)
	}

	r.lib.Restore(snapshot)
	r.lib.SetSelection(r.loadSelection())
	r.logger.Debug("collection loaded", "source", source, "videos", len(snapshot.Videos), "playlists", len(snapshot.Playlists))
	return source, nil
}

// close sends any pending write and waits for background pushes. Remote failures are logged:
// the mirror already holds the change.
func (r *Runner) close(ctx context.Context) {
	if err := r.saveSelection(r.lib.Selection()); err != nil {
		r.logger.Warn("failed to save selection", "error", err)
	}

	flushCtx, cancel := context.WithTimeout(ctx, r.config.Remote.Timeout()+r.config.Remote.Debounce())
	defer cancel()

	if err := r.sync.Flush(flushCtx); err != nil {
		r.logger.Warn("remote store not updated, local mirror kept the change", "error", err)
	}
}

func (r *Runner) selectionPath() string {
	dir := "."
	if r.config.Mirror.Path != "" {
		dir = filepath.Dir(r.config.Mirror.Path)
	}
	return filepath.Join(dir, selectionFile)
}

func (r *Runner) loadSelection() []string {
	data, err := os.ReadFile(r.selectionPath())
	if err != nil {
		return nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		r.logger.Warn("ignoring unreadable selection file", "path", r.selectionPath(), "error", err)
		return nil
	}
	return ids
}

func (r *Runner) saveSelection(ids []string) error {
	if len(ids) == 0 {
		if err := os.Remove(r.selectionPath()); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return os.WriteFile(r.selectionPath(), data, 0600)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
