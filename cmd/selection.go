package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/vidshelf/internal/formatter"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/urfave/cli/v3"
)

// SelectAdd appends videos to the selection in the order given.
func (r *Runner) SelectAdd(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one video id is required", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	for _, id := range ids {
		if err := r.lib.Select(id); err != nil {
			r.logger.Warn("skipping", "video", id, "error", err)
		}
	}
	return r.writePlain("✓ %d videos selected\n", len(r.lib.Selection()))
}

// SelectRemove drops videos from the selection.
func (r *Runner) SelectRemove(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one video id is required", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	for _, id := range ids {
		r.lib.Deselect(id)
	}
	return r.writePlain("✓ %d videos selected\n", len(r.lib.Selection()))
}

// SelectList prints the selected videos in selection order.
func (r *Runner) SelectList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.open(ctx); err != nil {
		return err
	}

	ids := r.lib.Selection()
	videos := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		if v, err := r.lib.Video(id); err == nil {
			videos = append(videos, v)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(videos, cmd.Bool("pretty"))
	}
	if len(videos) == 0 {
		return r.writePlain("Nothing selected.\n")
	}
	return r.writePlain("%s\n", formatter.VideoTable(videos, nil))
}

// SelectClear empties the selection.
func (r *Runner) SelectClear(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	r.lib.ClearSelection()
	return r.writePlain("✓ Selection cleared\n")
}
