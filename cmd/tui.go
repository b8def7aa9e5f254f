package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/desertthunder/vidshelf/internal/tasks"
	"github.com/desertthunder/vidshelf/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultTUILog = "./tmp/vidshelf-tui.log"

// Play launches the interactive browser and player.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	logPath := r.config.Player.LogPath
	if logPath == "" {
		logPath = defaultTUILog
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	events := make(chan tasks.SyncEvent, 16)
	r.sync.WithEvents(events)

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	if ref := cmd.Args().First(); ref != "" {
		if err := r.lib.PlayPlaylist(ref); err != nil {
			return err
		}
	}

	model := ui.NewModel(ctx, r.lib, events)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return r.lib.ClosePlayer()
}
