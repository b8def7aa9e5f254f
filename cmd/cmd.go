// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the collection store database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml with default values",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path to write",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// serveCommand runs the remote collection store.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the collection store HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// videoCommand manages the master list of videos.
func videoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "video",
		Aliases: []string{"videos", "v"},
		Usage:   "Manage the video collection",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add videos by YouTube link or id",
				ArgsUsage: "<link...>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "select",
						Aliases: []string{"s"},
						Usage:   "Also select the added videos",
					},
				},
				Action: r.VideoAdd,
			},
			{
				Name:  "import",
				Usage: "Resolve many links concurrently and add them",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "File with one link per line",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent lookups (defaults to metadata.workers)",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Lookups per second (defaults to metadata.rate_limit)",
					},
				},
				Action: r.VideoImport,
			},
			{
				Name:   "list",
				Usage:  "List every video",
				Flags:  jsonFlags(),
				Action: r.VideoList,
			},
			{
				Name:  "delete",
				Usage: "Delete a video from the collection and every playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.VideoDelete,
			},
		},
	}
}

// playlistCommand manages playlists and their order.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"playlists", "pl"},
		Usage:   "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a playlist from video ids or from the selection",
				ArgsUsage: "<name> [video-id...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Playlist description",
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:   "list",
				Usage:  "List playlists",
				Flags:  jsonFlags(),
				Action: r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "Show the videos of a playlist in order",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Flags:  jsonFlags(),
				Action: r.PlaylistShow,
			},
			{
				Name:      "rename",
				Usage:     "Rename a playlist",
				ArgsUsage: "<playlist> <new-name>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "New description (keeps the current one when omitted)",
					},
				},
				Action: r.PlaylistRename,
			},
			{
				Name:      "reorder",
				Usage:     "Replace the order of a playlist",
				ArgsUsage: "<playlist> <video-id...>",
				Action:    r.PlaylistReorder,
			},
			{
				Name:      "append",
				Usage:     "Append videos (or the selection) that are not yet in the playlist",
				ArgsUsage: "<playlist> [video-id...]",
				Action:    r.PlaylistAppend,
			},
			{
				Name:      "remove",
				Usage:     "Remove a video from a playlist",
				ArgsUsage: "<playlist> <video-id>",
				Action:    r.PlaylistRemove,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist (remote first)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Action: r.PlaylistDelete,
			},
			{
				Name:  "export",
				Usage: "Export a playlist as CSV, Markdown or text",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, md or txt",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output base path or directory",
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download the first video's thumbnail as cover (md only)",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// selectCommand manages the selection used to build playlists.
func selectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "select",
		Aliases: []string{"sel"},
		Usage:   "Manage the video selection",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Select videos",
				ArgsUsage: "<video-id...>",
				Action:    r.SelectAdd,
			},
			{
				Name:      "remove",
				Usage:     "Deselect videos",
				ArgsUsage: "<video-id...>",
				Action:    r.SelectRemove,
			},
			{
				Name:   "list",
				Usage:  "Show the selection in order",
				Flags:  jsonFlags(),
				Action: r.SelectList,
			},
			{
				Name:   "clear",
				Usage:  "Clear the selection",
				Action: r.SelectClear,
			},
		},
	}
}

// syncCommand moves the collection between the mirror and the remote store.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Synchronize the local mirror and the remote store",
		Commands: []*cli.Command{
			{
				Name:   "pull",
				Usage:  "Load the collection (remote first, then mirror) and refresh the mirror",
				Action: r.SyncPull,
			},
			{
				Name:   "push",
				Usage:  "Replace the remote collection with the local mirror",
				Action: r.SyncPush,
			},
			{
				Name:   "status",
				Usage:  "Compare the remote store and the local mirror",
				Flags:  jsonFlags(),
				Action: r.SyncStatus,
			},
		},
	}
}

// playCommand returns the top-level TUI command for browsing and playback.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Aliases:   []string{"tui", "ui"},
		Usage:     "Launch the interactive player, optionally starting a playlist",
		ArgsUsage: "[playlist]",
		Action:    r.Play,
	}
}
