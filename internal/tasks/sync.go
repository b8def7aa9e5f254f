package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidshelf/internal/mirror"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/services"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// Source names where [Synchronizer.Load] found the collection.
type Source int

const (
	SourceEmpty Source = iota
	SourceRemote
	SourceMirror
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceMirror:
		return "mirror"
	default:
		return "empty"
	}
}

const defaultPushTimeout = 30 * time.Second

// Synchronizer decides where the collection is loaded from and when it is written back.
type Synchronizer struct {
	remote   services.RemoteStore
	mirror   mirror.Mirror
	logger   *log.Logger
	debounce time.Duration
	timeout  time.Duration
	events   chan<- SyncEvent

	mu         sync.Mutex
	generation uint64
	pending    *models.Snapshot
	timer      *time.Timer
	replacing  int
	inflight   sync.WaitGroup
}

// NewSynchronizer wires the remote store and mirror with the given debounce window.
func NewSynchronizer(remote services.RemoteStore, m mirror.Mirror, debounce time.Duration, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if debounce < 0 {
		debounce = 0
	}
	return &Synchronizer{
		remote:   remote,
		mirror:   m,
		logger:   logger,
		debounce: debounce,
		timeout:  defaultPushTimeout,
	}
}

// WithEvents sets the channel persistence events are reported on. Sends never block.
func (s *Synchronizer) WithEvents(events chan<- SyncEvent) *Synchronizer {
	s.events = events
	return s
}

// WithTimeout sets the deadline applied to each background push.
func (s *Synchronizer) WithTimeout(d time.Duration) *Synchronizer {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// sendEvent sends an event through the channel without blocking.
func (s *Synchronizer) sendEvent(ev SyncEvent) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

// Load returns the collection from the first usable source: a non-empty remote, then the mirror.
//
// A non-empty remote overwrites the mirror. Only a cancelled context is returned as an error.
func (s *Synchronizer) Load(ctx context.Context) (models.Snapshot, Source, error) {
	remote, err := s.remote.Fetch(ctx)
	s.sendEvent(SyncEvent{Phase: LoadRemote, Err: err})

	switch {
	case err != nil:
		s.logger.Warn("remote load failed, falling back to mirror", "error", err)
	case !remote.Empty():
		if err := s.mirror.Save(ctx, remote); err != nil {
			s.logger.Error("failed to refresh mirror", "error", err)
		}
		s.sendEvent(SyncEvent{Phase: SaveMirror, Err: err})
		return remote, SourceRemote, nil
	default:
		s.logger.Debug("remote collection is empty")
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return models.Snapshot{}, SourceEmpty, ctxErr
	}

	local, err := s.mirror.Load(ctx)
	s.sendEvent(SyncEvent{Phase: LoadMirror, Err: err})
	switch {
	case err == nil:
		return local, SourceMirror, nil
	case errors.Is(err, shared.ErrMirrorNotFound):
		s.logger.Debug("no mirror found")
	default:
		s.logger.Warn("mirror unreadable, starting empty", "error", err)
	}

	return models.Snapshot{Videos: []models.Video{}, Playlists: []models.Playlist{}}, SourceEmpty, nil
}

// Schedule persists snapshot: the mirror is written now and a full replace is sent to the remote
// once no newer snapshot has been scheduled for the debounce window.
func (s *Synchronizer) Schedule(snapshot models.Snapshot) {
	snapshot = snapshot.Clone()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.pending = &snapshot
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(gen) })
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	err := s.mirror.Save(ctx, snapshot)
	if err != nil {
		s.logger.Error("failed to write mirror", "error", err)
	}
	s.sendEvent(SyncEvent{Phase: SaveMirror, Generation: gen, Err: err})
}

// SaveLocal writes snapshot to the mirror only. Used when the remote gets a targeted merge instead of a full replace.
//
// A full replace that is still pending or in flight carries older state than snapshot, so snapshot
// takes its place: the pending write is swapped, or a new one is armed behind the in-flight push.
func (s *Synchronizer) SaveLocal(snapshot models.Snapshot) {
	snapshot = snapshot.Clone()

	s.mu.Lock()
	switch {
	case s.pending != nil:
		s.pending = &snapshot
	case s.replacing > 0:
		s.generation++
		gen := s.generation
		s.pending = &snapshot
		s.timer = time.AfterFunc(s.debounce, func() { s.fire(gen) })
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.mirror.Save(ctx, snapshot)
	if err != nil {
		s.logger.Error("failed to write mirror", "error", err)
	}
	s.sendEvent(SyncEvent{Phase: SaveMirror, Err: err})
}

// fire runs when the debounce timer for gen expires.
func (s *Synchronizer) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.pending == nil {
		s.mu.Unlock()
		s.logger.Debug("dropping superseded write", "generation", gen)
		s.sendEvent(SyncEvent{Phase: DropSuperseded, Generation: gen})
		return
	}
	snapshot := *s.pending
	s.pending = nil
	s.timer = nil
	s.replacing++
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()
	defer func() {
		s.mu.Lock()
		s.replacing--
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.pushReplace(ctx, gen, snapshot)
}

func (s *Synchronizer) pushReplace(ctx context.Context, gen uint64, snapshot models.Snapshot) error {
	_, err := s.remote.Write(ctx, models.NewReplace(snapshot))
	if err != nil {
		s.logger.Warn("remote push failed", "generation", gen, "error", err)
	} else {
		s.logger.Debug("remote push complete", "generation", gen, "videos", len(snapshot.Videos), "playlists", len(snapshot.Playlists))
	}
	s.sendEvent(SyncEvent{Phase: PushReplace, Generation: gen, Err: err})
	return err
}

// PushPlaylist sends a merge carrying only playlist and the videos it references, in the background.
// Failures are logged.
func (s *Synchronizer) PushPlaylist(playlist models.Playlist, videos []models.Video) {
	req := models.PartialMerge{
		Videos:    append([]models.Video{}, videos...),
		Playlists: []models.PlaylistPatch{models.PatchFromPlaylist(playlist.Clone())},
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		_, err := s.remote.Write(ctx, req)
		if err != nil {
			s.logger.Warn("playlist push failed", "playlist", playlist.ID, "error", err)
		}
		s.sendEvent(SyncEvent{Phase: PushPlaylist, Err: err})
	}()
}

// DeletePlaylist removes a playlist from the remote store and waits for the answer.
func (s *Synchronizer) DeletePlaylist(ctx context.Context, id string) error {
	err := s.remote.DeletePlaylist(ctx, id)
	if err != nil {
		s.logger.Error("remote playlist delete failed", "playlist", id, "error", err)
	}
	s.sendEvent(SyncEvent{Phase: DeletePlaylist, Err: err})
	return err
}

// Push sends snapshot as an explicit full replace right away, cancelling any pending write.
func (s *Synchronizer) Push(ctx context.Context, snapshot models.Snapshot) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	return s.pushReplace(ctx, gen, snapshot)
}

// Flush waits for background pushes to finish, then sends the pending write, so the newest state
// lands last. It returns the error of the flushed write, or ctx's error if the wait ran out.
func (s *Synchronizer) Flush(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	gen := s.generation
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if pending != nil {
		return s.pushReplace(ctx, gen, *pending)
	}
	return nil
}

// Pending reports whether a debounced write has not been sent yet.
func (s *Synchronizer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Generation returns the number of writes scheduled so far.
func (s *Synchronizer) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
