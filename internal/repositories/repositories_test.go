package repositories

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newTestStore(t *testing.T) (*CollectionStore, *sql.DB) {
	t.Helper()
	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })
	return NewCollectionStore(db, shared.NewLogger(io.Discard)), db
}

func seedVideos(t *testing.T, db *sql.DB, ids ...string) {
	t.Helper()
	repo := NewVideoRepository(db)
	for _, id := range ids {
		if err := repo.Create(&models.Video{ID: id, Title: "Video " + id}); err != nil {
			t.Fatalf("failed to create video %s: %v", id, err)
		}
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := NextSequence(db, "videos")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}
	second, err := NextSequence(db, "videos")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	if second != first+1 {
		t.Errorf("expected %d, got %d", first+1, second)
	}

	if _, err := NextSequence(db, "nonexistent"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestVideoRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		video := &models.Video{ID: "dQw4w9WgXcQ", Title: "Song", ChannelTitle: "Artist"}

		if err := repo.Create(video); err != nil {
			t.Fatalf("failed to create video: %v", err)
		}

		retrieved, err := repo.Get(video.ID)
		if err != nil {
			t.Fatalf("failed to get video: %v", err)
		}

		if !reflect.DeepEqual(retrieved, video) {
			t.Errorf("expected %+v, got %+v", video, retrieved)
		}
	})

	t.Run("Create without id", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewVideoRepository(db).Create(&models.Video{Title: "x"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Upsert overwrites metadata", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		if err := repo.Upsert(&models.Video{ID: "a", Title: "Old"}); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := repo.Upsert(&models.Video{ID: "a", Title: "New"}); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		videos, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(videos) != 1 || videos[0].Title != "New" {
			t.Errorf("unexpected videos %+v", videos)
		}
	})

	t.Run("Update and Delete missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		if err := repo.Update(&models.Video{ID: "missing"}); !errors.Is(err, shared.ErrVideoNotFound) {
			t.Errorf("expected ErrVideoNotFound, got %v", err)
		}
		if err := repo.Delete("missing"); !errors.Is(err, shared.ErrVideoNotFound) {
			t.Errorf("expected ErrVideoNotFound, got %v", err)
		}
		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrVideoNotFound) {
			t.Errorf("expected ErrVideoNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		for _, v := range []models.Video{{ID: "c", ChannelTitle: "x"}, {ID: "a", ChannelTitle: "y"}, {ID: "b", ChannelTitle: "x"}} {
			if err := repo.Create(&v); err != nil {
				t.Fatalf("failed to create video: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list videos: %v", err)
		}
		if len(all) != 3 || all[0].ID != "c" || all[2].ID != "b" {
			t.Errorf("expected insertion order, got %v", all)
		}

		byChannel, _ := repo.List(map[string]any{"channel_title": "x"})
		if len(byChannel) != 2 {
			t.Errorf("expected 2 videos for channel, got %d", len(byChannel))
		}

		byIDs, _ := repo.List(map[string]any{"ids": []string{"a", "zzz"}})
		if len(byIDs) != 1 || byIDs[0].ID != "a" {
			t.Errorf("unexpected ids filter result %v", byIDs)
		}

		none, _ := repo.List(map[string]any{"ids": []string{}})
		if len(none) != 0 {
			t.Errorf("expected empty result, got %v", none)
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("Create without name", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		err := NewPlaylistRepository(db).Create(&models.Playlist{ID: "p"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Create keeps order and skips unknown videos", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()
		seedVideos(t, db, "v1", "v2", "v3")

		repo := NewPlaylistRepository(db)
		playlist := &models.Playlist{Name: "Mix", VideoIDs: []string{"v3", "ghost", "v1", "v3"}}

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if playlist.ID == "" {
			t.Error("playlist ID should be set after creation")
		}

		retrieved, err := repo.Get(playlist.ID)
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if !reflect.DeepEqual(retrieved.VideoIDs, []string{"v3", "v1"}) {
			t.Errorf("VideoIDs = %v, want [v3 v1]", retrieved.VideoIDs)
		}
		if retrieved.CreatedAt.IsZero() {
			t.Error("expected created_at to be set")
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()
		seedVideos(t, db, "v1", "v2")

		repo := NewPlaylistRepository(db)
		playlist := &models.Playlist{ID: "p", Name: "Mix", VideoIDs: []string{"v1"}}
		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		playlist.Name = "Renamed"
		playlist.VideoIDs = []string{"v2", "v1"}
		if err := repo.Update(playlist); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		retrieved, _ := repo.Get("p")
		if retrieved.Name != "Renamed" || !reflect.DeepEqual(retrieved.VideoIDs, []string{"v2", "v1"}) {
			t.Errorf("unexpected playlist %+v", retrieved)
		}

		missing := &models.Playlist{ID: "missing", Name: "x"}
		if err := repo.Update(missing); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Upsert patch leaves absent fields", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()
		seedVideos(t, db, "v1", "v2")

		repo := NewPlaylistRepository(db)
		if err := repo.Create(&models.Playlist{ID: "p", Name: "Mix", Description: "keep", VideoIDs: []string{"v1", "v2"}}); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		name := "New name"
		if err := repo.Upsert(models.PlaylistPatch{ID: "p", Name: &name}); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		retrieved, _ := repo.Get("p")
		if retrieved.Name != name || retrieved.Description != "keep" {
			t.Errorf("unexpected fields %+v", retrieved)
		}
		if !reflect.DeepEqual(retrieved.VideoIDs, []string{"v1", "v2"}) {
			t.Errorf("order should be untouched, got %v", retrieved.VideoIDs)
		}

		if err := repo.Upsert(models.PlaylistPatch{ID: "p", Order: []string{"v2"}, ReplaceOrder: true}); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		retrieved, _ = repo.Get("p")
		if !reflect.DeepEqual(retrieved.VideoIDs, []string{"v2"}) {
			t.Errorf("order should be replaced, got %v", retrieved.VideoIDs)
		}
	})

	t.Run("Upsert creates named playlist only", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		if err := repo.Upsert(models.PlaylistPatch{ID: "nameless"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}

		name := "Fresh"
		if err := repo.Upsert(models.PlaylistPatch{ID: "fresh", Name: &name}); err != nil {
			t.Fatalf("failed to upsert new playlist: %v", err)
		}
		if _, err := repo.Get("fresh"); err != nil {
			t.Errorf("expected playlist to exist: %v", err)
		}
	})

	t.Run("Delete and List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()
		seedVideos(t, db, "v1")

		repo := NewPlaylistRepository(db)
		for _, name := range []string{"One", "Two"} {
			if err := repo.Create(&models.Playlist{Name: name, VideoIDs: []string{"v1"}}); err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 2 || all[0].Name != "One" || len(all[1].VideoIDs) != 1 {
			t.Fatalf("unexpected playlists %+v", all)
		}

		byName, _ := repo.List(map[string]any{"name": "two"})
		if len(byName) != 1 {
			t.Errorf("expected case-insensitive name match, got %d", len(byName))
		}

		if err := repo.Delete(all[0].ID); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get(all[0].ID); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if err := repo.Delete(all[0].ID); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound on second delete, got %v", err)
		}

		var rows int
		db.QueryRow("SELECT COUNT(*) FROM playlist_videos WHERE playlist_id = ?", all[0].ID).Scan(&rows)
		if rows != 0 {
			t.Errorf("expected ordering rows to cascade, got %d", rows)
		}
	})

	t.Run("Deleting a video cascades out of playlists", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()
		seedVideos(t, db, "v1", "v2")

		repo := NewPlaylistRepository(db)
		if err := repo.Create(&models.Playlist{ID: "p", Name: "Mix", VideoIDs: []string{"v1", "v2"}}); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if err := NewVideoRepository(db).Delete("v1"); err != nil {
			t.Fatalf("failed to delete video: %v", err)
		}

		order, _ := repo.Order("p")
		if !reflect.DeepEqual(order, []string{"v2"}) {
			t.Errorf("order = %v, want [v2]", order)
		}
	})
}

func TestCollectionStore(t *testing.T) {
	ctx := context.Background()

	seed := models.Snapshot{
		Videos: []models.Video{{ID: "v1", Title: "One"}, {ID: "v2", Title: "Two"}, {ID: "v3", Title: "Three"}},
		Playlists: []models.Playlist{
			{ID: "p1", Name: "First", VideoIDs: []string{"v1", "v2"}},
			{ID: "p2", Name: "Second", VideoIDs: []string{"v3", "v1"}},
		},
	}

	t.Run("Replace then Load", func(t *testing.T) {
		store, _ := newTestStore(t)

		result, err := store.Replace(ctx, models.NewReplace(seed))
		if err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		if !result.OK || result.Videos != 3 || result.Playlists != 2 {
			t.Errorf("unexpected result %+v", result)
		}

		loaded, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(loaded.Videos) != 3 || len(loaded.Playlists) != 2 {
			t.Fatalf("unexpected snapshot %+v", loaded)
		}
		if !reflect.DeepEqual(loaded.Playlists[1].VideoIDs, []string{"v3", "v1"}) {
			t.Errorf("p2 order = %v", loaded.Playlists[1].VideoIDs)
		}

		smaller := models.Snapshot{Videos: []models.Video{{ID: "v9"}}}
		if _, err := store.Replace(ctx, models.NewReplace(smaller)); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		videos, playlists, _ := store.Count(ctx)
		if videos != 1 || playlists != 0 {
			t.Errorf("expected exactly the payload to remain, got %d videos %d playlists", videos, playlists)
		}
	})

	t.Run("Merge leaves other playlists untouched", func(t *testing.T) {
		store, _ := newTestStore(t)
		if _, err := store.Replace(ctx, models.NewReplace(seed)); err != nil {
			t.Fatalf("replace failed: %v", err)
		}

		p1 := seed.Playlists[0]
		p1.VideoIDs = []string{"v2", "v1", "v3"}
		result, err := store.Merge(ctx, models.PartialMerge{Playlists: []models.PlaylistPatch{models.PatchFromPlaylist(p1)}})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		if result.Mode != models.ModeMerge || result.Playlists != 1 {
			t.Errorf("unexpected result %+v", result)
		}

		loaded, _ := store.Load(ctx)
		got := map[string][]string{}
		for _, p := range loaded.Playlists {
			got[p.ID] = p.VideoIDs
		}
		if !reflect.DeepEqual(got["p1"], []string{"v2", "v1", "v3"}) {
			t.Errorf("p1 order = %v", got["p1"])
		}
		if !reflect.DeepEqual(got["p2"], []string{"v3", "v1"}) {
			t.Errorf("p2 order changed: %v", got["p2"])
		}
		if len(loaded.Videos) != 3 {
			t.Errorf("videos changed: %d", len(loaded.Videos))
		}
	})

	t.Run("Merge skips ordering rows for unknown videos", func(t *testing.T) {
		store, _ := newTestStore(t)
		if _, err := store.Replace(ctx, models.NewReplace(seed)); err != nil {
			t.Fatalf("replace failed: %v", err)
		}

		patch := models.PlaylistPatch{ID: "p1", Order: []string{"ghost", "v3"}, ReplaceOrder: true}
		if _, err := store.Merge(ctx, models.PartialMerge{Playlists: []models.PlaylistPatch{patch}}); err != nil {
			t.Fatalf("merge failed: %v", err)
		}

		loaded, _ := store.Load(ctx)
		p1, _ := loaded.Playlist("p1")
		if !reflect.DeepEqual(p1.VideoIDs, []string{"v3"}) {
			t.Errorf("p1 order = %v, want [v3]", p1.VideoIDs)
		}
	})

	t.Run("Failed merge rolls back", func(t *testing.T) {
		store, _ := newTestStore(t)
		if _, err := store.Replace(ctx, models.NewReplace(seed)); err != nil {
			t.Fatalf("replace failed: %v", err)
		}

		req := models.PartialMerge{
			Videos:    []models.Video{{ID: "v4"}},
			Playlists: []models.PlaylistPatch{{ID: "unnamed-new"}},
		}
		if _, err := store.Merge(ctx, req); err == nil {
			t.Fatal("expected merge error")
		}

		videos, _, _ := store.Count(ctx)
		if videos != 3 {
			t.Errorf("expected rollback to keep 3 videos, got %d", videos)
		}
	})

	t.Run("Safety fuse", func(t *testing.T) {
		store, _ := newTestStore(t)
		if _, err := store.Replace(ctx, models.NewReplace(seed)); err != nil {
			t.Fatalf("replace failed: %v", err)
		}

		result, err := store.Apply(ctx, models.FullReplace{Implicit: true})
		if err != nil {
			t.Fatalf("implicit replace failed: %v", err)
		}
		if !result.OK || !result.Skipped {
			t.Errorf("expected skipped result, got %+v", result)
		}
		videos, playlists, _ := store.Count(ctx)
		if videos != 3 || playlists != 2 {
			t.Errorf("implicit empty replace should not change the store, got %d/%d", videos, playlists)
		}

		result, err = store.Apply(ctx, models.FullReplace{})
		if err != nil {
			t.Fatalf("explicit replace failed: %v", err)
		}
		if result.Skipped {
			t.Error("explicit replace should not be skipped")
		}
		videos, playlists, _ = store.Count(ctx)
		if videos != 0 || playlists != 0 {
			t.Errorf("explicit empty replace should wipe the store, got %d/%d", videos, playlists)
		}
	})

	t.Run("Implicit empty replace on empty store", func(t *testing.T) {
		store, _ := newTestStore(t)

		result, err := store.Replace(ctx, models.FullReplace{Implicit: true})
		if err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		if result.Skipped {
			t.Error("nothing to protect, should not be skipped")
		}
	})

	t.Run("DeletePlaylist is idempotent", func(t *testing.T) {
		store, _ := newTestStore(t)
		if _, err := store.Replace(ctx, models.NewReplace(seed)); err != nil {
			t.Fatalf("replace failed: %v", err)
		}

		deleted, err := store.DeletePlaylist(ctx, "p1")
		if err != nil || !deleted {
			t.Fatalf("expected deletion, got %v, %v", deleted, err)
		}

		deleted, err = store.DeletePlaylist(ctx, "p1")
		if err != nil || deleted {
			t.Errorf("expected no-op second delete, got %v, %v", deleted, err)
		}

		loaded, _ := store.Load(ctx)
		if len(loaded.Playlists) != 1 || len(loaded.Videos) != 3 {
			t.Errorf("unexpected snapshot after delete %+v", loaded)
		}
	})

	t.Run("Load honors cancelled context", func(t *testing.T) {
		store, _ := newTestStore(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := store.Load(cancelled); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
