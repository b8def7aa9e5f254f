package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/vidshelf/internal/formatter"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/services"
	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/desertthunder/vidshelf/internal/tasks"
	"github.com/urfave/cli/v3"
)

// VideoAdd resolves each link and adds the video. Links naming a video already in the collection
// are not looked up again.
func (r *Runner) VideoAdd(ctx context.Context, cmd *cli.Command) error {
	links := cmd.Args().Slice()
	if len(links) == 0 {
		return fmt.Errorf("%w: at least one link is required", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	added := 0
	for _, link := range links {
		id, err := services.ParseVideoID(link)
		if err != nil {
			r.logger.Warn("skipping link", "link", link, "error", err)
			continue
		}

		if _, err := r.lib.Video(id); err == nil {
			r.writePlain("• %s already in the collection\n", id)
		} else {
			video, err := r.fetcher.Fetch(ctx, link)
			if err != nil {
				r.logger.Warn("skipping link", "link", link, "error", err)
				continue
			}
			if _, err := r.lib.AddVideo(video); err != nil {
				return err
			}
			added++
			r.writePlain("✓ %s  %s\n", video.ID, video.Title)
		}

		if cmd.Bool("select") {
			if err := r.lib.Select(id); err != nil {
				return err
			}
		}
	}

	return r.writePlainln("Added %d of %d videos", added, len(links))
}

// VideoImport reads links from a file and resolves them with the bulk importer.
func (r *Runner) VideoImport(ctx context.Context, cmd *cli.Command) error {
	links, err := readLines(cmd.String("file"))
	if err != nil {
		return err
	}

	opts := tasks.ImportOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}
	if opts.NumWorkers == 0 {
		opts.NumWorkers = r.config.Metadata.Workers
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = r.config.Metadata.RateLimit
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.logger.Info(update.Message, "step", update.Step, "total", update.Total)
		}
	}()

	importer := tasks.NewImporter(r.fetcher, r.logger)
	results, err := importer.Import(ctx, prog, links, opts)
	close(prog)
	<-done

	videos := make([]models.Video, 0, len(results))
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			r.writePlain("✗ %s: %v\n", res.Link, res.Err)
			continue
		}
		videos = append(videos, res.Video)
	}

	added := r.lib.AddVideos(videos)
	r.writePlainln("Imported %d new videos (%d resolved, %d failed)", added, len(videos), failed)
	return err
}

// VideoList prints the master list; selected videos are marked.
func (r *Runner) VideoList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.open(ctx); err != nil {
		return err
	}

	videos := r.lib.Videos()
	if cmd.Bool("json") {
		return r.writeJSON(videos, cmd.Bool("pretty"))
	}

	if len(videos) == 0 {
		return r.writePlain("No videos yet. Add one with 'vidshelf video add <link>'.\n")
	}
	return r.writePlain("%s\n", formatter.VideoTable(videos, r.lib.Selection()))
}

// VideoDelete removes a video everywhere.
func (r *Runner) VideoDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: video id is required", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	if err := r.lib.DeleteVideoGlobally(id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s from the collection and all playlists\n", id)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}
