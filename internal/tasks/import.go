package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/services"
	"github.com/desertthunder/vidshelf/internal/shared"
	"golang.org/x/time/rate"
)

// ImportOpts contains configuration for bulk link resolution.
type ImportOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Lookups per second (default: 5)
}

// ImportResult is the outcome for one input link.
type ImportResult struct {
	Link  string
	Video models.Video
	Err   error
}

type importJob struct {
	index int
	link  string
}

// Importer resolves many links to video metadata.
type Importer struct {
	fetcher services.MetadataFetcher
	logger  *log.Logger
}

// NewImporter creates an Importer backed by fetcher.
func NewImporter(fetcher services.MetadataFetcher, logger *log.Logger) *Importer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Importer{fetcher: fetcher, logger: logger}
}

// Import resolves links concurrently behind a rate limiter.
//
// Blank links are skipped. Results keep the order of the remaining links; a link that does not name
// a video carries its error in the result. Cancelling ctx stops dispatching and returns ctx.Err()
// together with the results gathered so far.
func (i *Importer) Import(ctx context.Context, prog chan<- ProgressUpdate, links []string, opts ImportOpts) ([]ImportResult, error) {
	if i.fetcher == nil {
		return nil, fmt.Errorf("%w: metadata fetcher not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	cleaned := make([]string, 0, len(links))
	for _, link := range links {
		if link = strings.TrimSpace(link); link != "" {
			cleaned = append(cleaned, link)
		}
	}

	results := make([]ImportResult, len(cleaned))
	done := make([]bool, len(cleaned))
	sendProgress(prog, resolvingLinksUpdate(len(cleaned)))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan importJob, len(cleaned))
	out := make(chan importJob, len(cleaned))

	var wg sync.WaitGroup
	for w := 0; w < opts.NumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				video, err := i.fetcher.Fetch(ctx, job.link)
				results[job.index] = ImportResult{Link: job.link, Video: video, Err: err}
				out <- job
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx, link := range cleaned {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- importJob{index: idx, link: link}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	completed := 0
	for job := range out {
		completed++
		done[job.index] = true
		res := results[job.index]
		if res.Err != nil {
			i.logger.Warn("could not resolve link", "link", res.Link, "error", res.Err)
			sendProgress(prog, failedLinkUpdate(completed, len(cleaned), res.Link, res.Err))
			continue
		}
		sendProgress(prog, resolvedLinkUpdate(completed, len(cleaned), res.Video))
	}

	if err := ctx.Err(); err != nil {
		finished := make([]ImportResult, 0, completed)
		for idx, ok := range done {
			if ok {
				finished = append(finished, results[idx])
			}
		}
		return finished, err
	}

	return results, nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
