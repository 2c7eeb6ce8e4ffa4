package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hn-board/internal/metrics"
	"hn-board/internal/model"
	"hn-board/internal/render"
)

// StoryLister is satisfied by *stories.Aggregator.
type StoryLister interface {
	Stories(ctx context.Context, category string, count int) ([]model.StoryView, error)
}

// StoryPipeline fetches one category and hands the result to its presenter.
// Each category gets its own pipeline, so one failing leaves the others alone.
type StoryPipeline struct {
	Stories       StoryLister
	Category      string
	Count         int
	Presenter     render.Presenter
	StoriesTarget string
	CountTarget   string
}

// Start runs the pipeline once. The presenter is called only after the whole
// story list was fetched; on failure nothing is rendered.
func (p *StoryPipeline) Start(ctx context.Context) error {
	start := time.Now()
	list, err := p.Stories.Stories(ctx, p.Category, p.Count)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues(p.Category, "error").Inc()
		slog.Error("pipeline: fetch failed", "category", p.Category, "error", err)
		return fmt.Errorf("pipeline %s: %w", p.Category, err)
	}
	if err := p.Presenter.Render(list, p.StoriesTarget, p.CountTarget); err != nil {
		metrics.PipelineRuns.WithLabelValues(p.Category, "error").Inc()
		slog.Error("pipeline: render failed", "category", p.Category, "error", err)
		return fmt.Errorf("pipeline %s: render: %w", p.Category, err)
	}
	metrics.PipelineRuns.WithLabelValues(p.Category, "ok").Inc()
	slog.Info("pipeline: rendered", "category", p.Category, "stories", len(list), "duration", time.Since(start))
	return nil
}
