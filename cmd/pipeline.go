package cmd

import (
	"log/slog"

	"hn-board/internal/algolia"
	"hn-board/internal/config"
	"hn-board/internal/hackernews"
	"hn-board/internal/render"
	"hn-board/internal/stories"
	"hn-board/worker"
)

func newAggregator(cfg config.Config) *stories.Aggregator {
	hnc := hackernews.NewClient(cfg.HackerNews.BaseAPI, hackernews.WithTimeout(cfg.HackerNews.Timeout))
	alc := algolia.NewClient(cfg.Algolia.BaseURL, algolia.WithTimeout(cfg.Algolia.Timeout))
	agg := stories.New(hnc, alc, cfg.StoriesConfig())
	eff := agg.Config()
	slog.Debug("stories: aggregator ready", "batch_size", eff.BatchSize, "concurrency", eff.Concurrency, "story_url", eff.StoryURL)
	return agg
}

// boardWorkers builds one pipeline per configured section, all rendering
// through p.
func boardWorkers(cfg config.Config, agg *stories.Aggregator, count int, p render.Presenter) []worker.Worker {
	ws := make([]worker.Worker, 0, len(cfg.Board.Sections))
	for _, s := range cfg.Board.Sections {
		ws = append(ws, &worker.StoryPipeline{
			Stories:       agg,
			Category:      s.Category,
			Count:         count,
			Presenter:     p,
			StoriesTarget: s.StoriesTarget,
			CountTarget:   s.CountTarget,
		})
	}
	return ws
}
