package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/urfave/cli/v3"
)

// SyncReport compares what the remote store and the mirror hold.
type SyncReport struct {
	Remote      *Counts `json:"remote"`
	RemoteError string  `json:"remoteError,omitempty"`
	Mirror      *Counts `json:"mirror"`
	MirrorError string  `json:"mirrorError,omitempty"`
}

// Counts summarizes a snapshot.
type Counts struct {
	Videos    int `json:"videos"`
	Playlists int `json:"playlists"`
}

func countsOf(s models.Snapshot) *Counts {
	return &Counts{Videos: len(s.Videos), Playlists: len(s.Playlists)}
}

// SyncPull loads the collection, which refreshes the mirror when the remote has data.
func (r *Runner) SyncPull(ctx context.Context, cmd *cli.Command) error {
	source, err := r.open(ctx)
	if err != nil {
		return err
	}

	s := r.lib.Snapshot()
	return r.writePlain("✓ Loaded %d videos and %d playlists from %s\n", len(s.Videos), len(s.Playlists), source)
}

// SyncPush replaces the remote collection with the mirror contents.
func (r *Runner) SyncPush(ctx context.Context, cmd *cli.Command) error {
	snapshot, err := r.mirror.Load(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrMirrorNotFound) {
			return fmt.Errorf("%w: nothing to push", err)
		}
		return fmt.Errorf("failed to read mirror: %w", err)
	}

	if err := r.sync.Push(ctx, snapshot); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	return r.writePlain("✓ Pushed %d videos and %d playlists\n", len(snapshot.Videos), len(snapshot.Playlists))
}

// SyncStatus reports the size of the remote collection and the mirror side by side.
func (r *Runner) SyncStatus(ctx context.Context, cmd *cli.Command) error {
	var status SyncReport

	if remote, err := r.remote.Fetch(ctx); err != nil {
		status.RemoteError = err.Error()
	} else {
		status.Remote = countsOf(remote)
	}

	if local, err := r.mirror.Load(ctx); err != nil {
		status.MirrorError = err.Error()
	} else {
		status.Mirror = countsOf(local)
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Sync status")
	r.writeCounts("Remote", status.Remote, status.RemoteError)
	r.writeCounts("Mirror", status.Mirror, status.MirrorError)
	return nil
}

func (r *Runner) writeCounts(label string, c *Counts, errMsg string) {
	if c == nil {
		r.writePlain("%-8s unavailable (%s)\n", label+":", errMsg)
		return
	}
	r.writePlain("%-8s %d videos, %d playlists\n", label+":", c.Videos, c.Playlists)
}
