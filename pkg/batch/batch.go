// Package batch runs the extractor over every container under a prefix.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/user/insvframe/pkg/pipeline"
	"github.com/user/insvframe/pkg/ports"
)

// DefaultExtensions are the container suffixes picked up by a batch.
var DefaultExtensions = []string{".insv", ".mp4"}

// Observer is notified once per finished container.
type Observer interface {
	ObserveContainer(item pipeline.BatchItem)
}

// Config contains batch settings.
type Config struct {
	Workers    int           // parallel containers; <= 0 means runtime.NumCPU()
	Extensions []string      // case-insensitive key suffixes; empty means DefaultExtensions
	Timeout    time.Duration // per-container deadline; 0 means none
}

// Runner lists containers and extracts them with a bounded worker pool.
type Runner struct {
	src      ports.RangeSource
	stage    pipeline.Stage[pipeline.ContainerJob, pipeline.ContainerResult]
	observer Observer
	logger   ports.Logger
	config   Config
}

// New creates a new Runner. observer may be nil.
func New(
	src ports.RangeSource,
	stage pipeline.Stage[pipeline.ContainerJob, pipeline.ContainerResult],
	observer Observer,
	logger ports.Logger,
	config Config,
) *Runner {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultExtensions
	}
	return &Runner{
		src:      src,
		stage:    stage,
		observer: observer,
		logger:   logger.WithComponent("batch"),
		config:   config,
	}
}

// Match reports whether key has one of the configured extensions.
func (r *Runner) Match(key string) bool {
	lower := strings.ToLower(key)
	for _, ext := range r.config.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// Run extracts every matching container under prefix into outDir. A failing
// container is recorded in the result and does not stop the batch. The
// returned error is non-nil only when listing fails or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, prefix, outDir string) (pipeline.BatchResult, error) {
	start := time.Now()

	all, err := r.src.List(ctx, prefix)
	if err != nil {
		return pipeline.BatchResult{}, fmt.Errorf("list %s: %w", prefix, err)
	}
	var keys []string
	for _, k := range all {
		if r.Match(k) {
			keys = append(keys, k)
		}
	}
	r.logger.Info("Found %d containers under %s (%d objects listed)", len(keys), prefix, len(all))

	if len(keys) == 0 {
		return pipeline.BatchResult{Items: []pipeline.BatchItem{}, Duration: time.Since(start)}, ctx.Err()
	}

	workers := r.config.Workers
	if workers > len(keys) {
		workers = len(keys)
	}
	r.logger.Debug("Processing %d containers with %d workers", len(keys), workers)

	items := r.runParallel(ctx, keys, outDir, workers)

	result := pipeline.BatchResult{Items: items, Duration: time.Since(start)}
	r.logger.Info("Batch completed: %d containers, %d failed, %d frames extracted",
		len(items), result.Failed(), result.Tracks(pipeline.TrackExtracted))
	return result, ctx.Err()
}

// indexedItem holds a result with its listing index for sorting.
type indexedItem struct {
	index int
	item  pipeline.BatchItem
}

func (r *Runner) runParallel(ctx context.Context, keys []string, outDir string, workers int) []pipeline.BatchItem {
	jobs := make(chan int, len(keys))
	results := make(chan indexedItem, len(keys))

	// Start workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go r.worker(ctx, &wg, keys, outDir, jobs, results)
	}

	// Send jobs
	for i := range keys {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]indexedItem, 0, len(keys))
	for res := range results {
		collected = append(collected, res)
	}

	// Sort by index to maintain listing order
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].index < collected[j].index
	})

	items := make([]pipeline.BatchItem, len(collected))
	for i, c := range collected {
		items[i] = c.item
	}
	return items
}

func (r *Runner) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	keys []string,
	outDir string,
	jobs <-chan int,
	results chan<- indexedItem,
) {
	defer wg.Done()

	for idx := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item := r.process(ctx, keys[idx], outDir)
		if r.observer != nil {
			r.observer.ObserveContainer(item)
		}
		results <- indexedItem{index: idx, item: item}
	}
}

func (r *Runner) process(ctx context.Context, key, outDir string) pipeline.BatchItem {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	res, err := r.stage.Execute(ctx, pipeline.ContainerJob{Key: key, OutDir: outDir})
	item := pipeline.BatchItem{Key: key, Status: pipeline.ContainerOK, Result: res, Err: err}
	if err != nil {
		item.Status = pipeline.ContainerFailed
		r.logger.Error("Failed to process %s: %s", key, err)
	}
	return item
}
