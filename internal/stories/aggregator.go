// Package stories reconciles a ranked identifier list with detail records
// fetched in batches into a rank-ordered, deduplicated list of StoryViews.
package stories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hn-board/internal/algolia"
	"hn-board/internal/batch"
	"hn-board/internal/metrics"
	"hn-board/internal/model"
	"hn-board/internal/orderedmap"
)

// RankedSource yields the ranked identifier list for a category.
type RankedSource interface {
	RankedIDs(ctx context.Context, category string) (model.RankedList, error)
}

// DetailFetcher retrieves detail records for one batch of identifiers. The
// result may be shorter than the batch and is in no particular order.
type DetailFetcher interface {
	FetchDetails(ctx context.Context, ids []model.Identifier) ([]model.DetailRecord, error)
}

// Config holds the aggregator settings. Zero values select the defaults.
type Config struct {
	// BatchSize is the number of identifiers per detail request, at most algolia.MaxBatchSize.
	BatchSize int
	// StoryURL is the discussion page base; links are StoryURL?id=<id>.
	StoryURL string
	// MaxCount is the upstream cap on ranked list length.
	MaxCount int
	// Concurrency bounds the detail requests in flight. 1 fetches batches one after another.
	Concurrency int
}

const (
	DefaultStoryURL = "https://news.ycombinator.com/item"
	DefaultMaxCount = 500
)

// DefaultConfig returns the settings matching the public APIs.
func DefaultConfig() Config {
	return Config{
		BatchSize:   algolia.MaxBatchSize,
		StoryURL:    DefaultStoryURL,
		MaxCount:    DefaultMaxCount,
		Concurrency: 1,
	}
}

// Aggregator runs the fetch, batch, reconcile pipeline. It keeps no state
// between calls, so one Aggregator may serve several categories concurrently.
type Aggregator struct {
	ranked  RankedSource
	details DetailFetcher
	config  Config
}

// New creates an aggregator, filling unset config fields with defaults.
func New(ranked RankedSource, details DetailFetcher, cfg Config) *Aggregator {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 || cfg.BatchSize > algolia.MaxBatchSize {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.StoryURL == "" {
		cfg.StoryURL = def.StoryURL
	}
	if cfg.MaxCount <= 0 {
		cfg.MaxCount = def.MaxCount
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	return &Aggregator{ranked: ranked, details: details, config: cfg}
}

// Config returns the effective configuration.
func (a *Aggregator) Config() Config { return a.config }

// Stories returns at most count stories of a category in ranked order.
// Identifiers without a detail record are skipped. When several records
// share an identifier the first one seen wins, in batch order. Any source or
// batch failure aborts the run and no stories are returned.
func (a *Aggregator) Stories(ctx context.Context, category string, count int) ([]model.StoryView, error) {
	if count < 0 || count > a.config.MaxCount {
		return nil, fmt.Errorf("%w: %d (allowed 0..%d)", ErrInvalidCount, count, a.config.MaxCount)
	}
	start := time.Now()

	ranked, err := a.ranked.RankedIDs(ctx, category)
	if err != nil {
		return nil, &SourceError{Category: category, Err: err}
	}
	if len(ranked) > count {
		ranked = ranked[:count]
	}

	batches := batch.Chunk([]model.Identifier(ranked), a.config.BatchSize)
	slog.Info("stories: fetching details", "category", category, "ids", len(ranked), "batches", len(batches))

	responses, err := a.fetchBatches(ctx, category, batches)
	if err != nil {
		return nil, err
	}

	records := orderedmap.New[model.Identifier, model.DetailRecord]()
	for _, recs := range responses {
		for _, rec := range recs {
			records.InsertIfAbsent(rec.ID, rec)
		}
	}
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.Debug("stories: merged records", "category", category, "ids", records.Keys())
	}

	views := make([]model.StoryView, 0, len(ranked))
	dropped := 0
	for _, id := range ranked {
		rec, ok := records.Get(id)
		if !ok {
			dropped++
			slog.Debug("stories: no details for id", "category", category, "id", id)
			continue
		}
		v, err := buildView(rec, a.config.StoryURL)
		if err != nil {
			return nil, &FetchError{Category: category, Batch: batchOf(batches, id), Err: err}
		}
		views = append(views, v)
	}
	if dropped > 0 {
		metrics.StoriesDropped.WithLabelValues(category).Add(float64(dropped))
	}
	slog.Info("stories: reconciled",
		"category", category,
		"requested", len(ranked),
		"records", records.Len(),
		"stories", len(views),
		"dropped", dropped,
		"duration", time.Since(start))
	return views, nil
}

// fetchBatches fetches every batch and returns the responses indexed like
// batches. With Concurrency 1 each request completes before the next starts.
// Otherwise any failure cancels the batches still in flight, and the failing
// batch with the lowest index is the one reported.
func (a *Aggregator) fetchBatches(ctx context.Context, category string, batches [][]model.Identifier) ([][]model.DetailRecord, error) {
	out := make([][]model.DetailRecord, len(batches))
	if a.config.Concurrency == 1 {
		for i, b := range batches {
			recs, err := a.details.FetchDetails(ctx, b)
			if err != nil {
				return nil, &FetchError{Category: category, Batch: b, Err: err}
			}
			out[i] = recs
		}
		return out, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errs := make([]error, len(batches))
	sem := make(chan struct{}, a.config.Concurrency)
	var wg sync.WaitGroup
	issued := 0
	for i, b := range batches {
		sem <- struct{}{}
		if ctx.Err() != nil {
			<-sem
			break
		}
		issued++
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			recs, err := a.details.FetchDetails(ctx, b)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			out[i] = recs
		}()
	}
	wg.Wait()
	if i := firstFailure(errs); i >= 0 {
		return nil, &FetchError{Category: category, Batch: batches[i], Err: errs[i]}
	}
	if issued < len(batches) {
		// the caller's context ended before every batch was issued
		return nil, &FetchError{Category: category, Batch: batches[issued], Err: context.Cause(ctx)}
	}
	return out, nil
}

// firstFailure returns the lowest batch index that failed on its own, skipping
// batches that only saw the cancellation triggered by another failure. When
// every failure is a cancellation the lowest failing index is returned, and -1
// when nothing failed.
func firstFailure(errs []error) int {
	first := -1
	for i, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, context.Canceled) {
			return i
		}
		if first < 0 {
			first = i
		}
	}
	return first
}

func batchOf(batches [][]model.Identifier, id model.Identifier) []model.Identifier {
	for _, b := range batches {
		for _, x := range b {
			if x == id {
				return b
			}
		}
	}
	return []model.Identifier{id}
}
