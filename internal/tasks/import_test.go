package tasks

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/services"
	"github.com/desertthunder/vidshelf/internal/shared"
)

type fetchFunc func(ctx context.Context, link string) (models.Video, error)

func (f fetchFunc) Fetch(ctx context.Context, link string) (models.Video, error) { return f(ctx, link) }

func parsingFetcher(calls *int32) fetchFunc {
	return func(ctx context.Context, link string) (models.Video, error) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		id, err := services.ParseVideoID(link)
		if err != nil {
			return models.Video{}, err
		}
		return services.Placeholder(id), nil
	}
}

func TestImporter(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("keeps input order and reports failures", func(t *testing.T) {
		links := []string{"https://youtu.be/aaaaaaaaaaa", "  ", "nope", "bbbbbbbbbbb", "https://www.youtube.com/shorts/ccccccccccc"}
		prog := make(chan ProgressUpdate, 16)

		results, err := NewImporter(parsingFetcher(nil), logger).Import(context.Background(), prog, links, ImportOpts{NumWorkers: 3, RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(results) != 4 {
			t.Fatalf("expected 4 results (blank skipped), got %d", len(results))
		}
		wantIDs := []string{"aaaaaaaaaaa", "", "bbbbbbbbbbb", "ccccccccccc"}
		for i, want := range wantIDs {
			if results[i].Video.ID != want {
				t.Errorf("results[%d] = %q, want %q", i, results[i].Video.ID, want)
			}
		}
		if !errors.Is(results[1].Err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for bad link, got %v", results[1].Err)
		}

		if len(prog) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("default options", func(t *testing.T) {
		var calls int32
		results, err := NewImporter(parsingFetcher(&calls), logger).Import(context.Background(), nil, []string{"aaaaaaaaaaa"}, ImportOpts{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 || calls != 1 {
			t.Errorf("expected one lookup, got %d results %d calls", len(results), calls)
		}
	})

	t.Run("rate limiting spaces lookups", func(t *testing.T) {
		start := time.Now()
		links := []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc"}
		if _, err := NewImporter(parsingFetcher(nil), logger).Import(context.Background(), nil, links, ImportOpts{NumWorkers: 3, RateLimit: 20}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
			t.Errorf("expected limiter to space lookups, took %v", elapsed)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, err := NewImporter(parsingFetcher(nil), logger).Import(ctx, nil, []string{"aaaaaaaaaaa", "bbbbbbbbbbb"}, ImportOpts{RateLimit: 1})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %d", len(results))
		}
	})

	t.Run("missing fetcher", func(t *testing.T) {
		if _, err := NewImporter(nil, logger).Import(context.Background(), nil, nil, ImportOpts{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestSendProgress_NonBlocking(t *testing.T) {
	full := make(chan ProgressUpdate)
	done := make(chan struct{})
	go func() {
		sendProgress(full, ProgressUpdate{Phase: ResolveLinks})
		sendProgress(nil, ProgressUpdate{Phase: ResolveLinks})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sendProgress blocked")
	}
}
