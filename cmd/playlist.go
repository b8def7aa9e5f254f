package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/vidshelf/internal/formatter"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate creates a playlist from the given ids, or from the selection when none are given.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	name := args.First()
	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	var p models.Playlist
	var err error
	if ids := args.Tail(); len(ids) > 0 {
		p, err = r.lib.CreatePlaylist(name, cmd.String("description"), ids)
	} else {
		p, err = r.lib.CreatePlaylistFromSelection(name, cmd.String("description"))
	}
	if err != nil {
		return err
	}

	return r.writePlain("✓ Created %q (%s) with %d videos\n", p.Name, p.ID, len(p.VideoIDs))
}

// PlaylistList prints every playlist.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.open(ctx); err != nil {
		return err
	}

	playlists := r.lib.Playlists()
	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists yet.\n")
	}
	return r.writePlain("%s\n", formatter.PlaylistTable(playlists))
}

// PlaylistShow prints one playlist with its videos in order.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("playlist")
	if ref == "" {
		return fmt.Errorf("%w: playlist is required", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}

	p, videos, err := r.lib.PlaylistVideos(ref)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(models.PlaylistExport{Playlist: p, Videos: videos}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(p.Name)
	if p.Description != "" {
		r.writePlain("%s\n", p.Description)
	}
	return r.writePlain("%s\n", formatter.PlaylistVideoTable(videos, -1))
}

// PlaylistRename changes the name and optionally the description.
func (r *Runner) PlaylistRename(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 2 {
		return fmt.Errorf("%w: usage: playlist rename <playlist> <new-name>", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	current, err := r.lib.Playlist(args.Get(0))
	if err != nil {
		return err
	}

	description := current.Description
	if cmd.IsSet("description") {
		description = cmd.String("description")
	}

	p, err := r.lib.UpdatePlaylist(current.ID, strings.Join(args.Tail(), " "), description)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Renamed to %q\n", p.Name)
}

// PlaylistReorder replaces the order of a playlist.
func (r *Runner) PlaylistReorder(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 2 {
		return fmt.Errorf("%w: usage: playlist reorder <playlist> <video-id...>", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	p, err := r.lib.Reorder(args.First(), args.Tail())
	if err != nil {
		return err
	}
	return r.writePlain("✓ %q now holds %d videos: %s\n", p.Name, len(p.VideoIDs), strings.Join(p.VideoIDs, ", "))
}

// PlaylistAppend appends ids, or the selection when none are given, skipping videos already present.
func (r *Runner) PlaylistAppend(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	ref := args.First()
	if ref == "" {
		return fmt.Errorf("%w: playlist is required", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	var n int
	var err error
	if ids := args.Tail(); len(ids) > 0 {
		n, err = r.lib.AppendDistinct(ref, ids)
	} else {
		n, err = r.lib.AppendSelection(ref)
	}
	if err != nil {
		return err
	}
	return r.writePlain("✓ Appended %d videos\n", n)
}

// PlaylistRemove takes one video out of a playlist.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() != 2 {
		return fmt.Errorf("%w: usage: playlist remove <playlist> <video-id>", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	removed, err := r.lib.RemoveVideo(args.Get(0), args.Get(1))
	if err != nil {
		return err
	}
	if !removed {
		return r.writePlain("• %s is not in the playlist\n", args.Get(1))
	}
	return r.writePlain("✓ Removed %s\n", args.Get(1))
}

// PlaylistDelete deletes a playlist. The remote store is asked first; if it fails nothing changes.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("playlist")
	if ref == "" {
		return fmt.Errorf("%w: playlist is required", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}
	defer r.close(ctx)

	p, err := r.lib.Playlist(ref)
	if err != nil {
		return err
	}
	if err := r.lib.DeletePlaylist(ctx, p.ID); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %q\n", p.Name)
}

// PlaylistExport writes a playlist to disk in the chosen format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("playlist")
	if ref == "" {
		return fmt.Errorf("%w: playlist is required", shared.ErrMissingArgument)
	}

	if _, err := r.open(ctx); err != nil {
		return err
	}

	p, videos, err := r.lib.PlaylistVideos(ref)
	if err != nil {
		return err
	}
	export := &models.PlaylistExport{Playlist: p, Videos: videos}
	output := cmd.String("output")

	switch cmd.String("format") {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s and %s\n", result.VideosFile, result.MetadataFile)
	case "md", "markdown":
		coverURL := ""
		if cmd.Bool("cover") {
			coverURL = formatter.CoverURL(export)
		}
		result, err := formatter.WriteMarkdownExport(export, output, coverURL)
		if err != nil {
			return err
		}
		for _, w := range result.Warnings {
			r.logger.Warn(w)
		}
		return r.writePlain("✓ Wrote %s\n", strings.Join(result.Files, ", "))
	case "txt", "text":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s\n", path)
	default:
		return fmt.Errorf("%w: unknown format %q (csv, md, txt)", shared.ErrInvalidFlag, cmd.String("format"))
	}
}
