package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hn-board/internal/algolia"
	"hn-board/internal/hackernews"
	"hn-board/internal/render"
	"hn-board/internal/stories"

	"github.com/spf13/viper"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// HackerNewsConfig controls the ranked-ID source.
type HackerNewsConfig struct {
	BaseAPI string        `mapstructure:"base_api"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AlgoliaConfig controls the details source.
type AlgoliaConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	BatchSize   int           `mapstructure:"batch_size"`  // identifiers per request, 1..20
	Concurrency int           `mapstructure:"concurrency"` // batch requests in flight
	Timeout     time.Duration `mapstructure:"timeout"`
}

// WebConfig holds the public site links.
type WebConfig struct {
	StoryURL string `mapstructure:"story_url"` // discussion links are story_url?id=<id>
}

// SectionConfig binds one category to its display regions.
type SectionConfig struct {
	Title         string `mapstructure:"title"`
	Category      string `mapstructure:"category"` // top, new, best, ask, show, job
	StoriesTarget string `mapstructure:"stories_target"`
	CountTarget   string `mapstructure:"count_target"`
}

// BoardConfig controls what is rendered.
type BoardConfig struct {
	Title    string          `mapstructure:"title"`
	Count    int             `mapstructure:"count"` // stories per section, 0..500
	Sections []SectionConfig `mapstructure:"sections"`
}

// ServeConfig controls the HTTP server.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the top-level configuration structure.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	HackerNews HackerNewsConfig `mapstructure:"hackernews"`
	Algolia    AlgoliaConfig    `mapstructure:"algolia"`
	Web        WebConfig        `mapstructure:"web"`
	Board      BoardConfig      `mapstructure:"board"`
	Serve      ServeConfig      `mapstructure:"serve"`
}

// DefaultCount is how many stories each section shows by default.
const DefaultCount = 100

// EnvPrefix prefixes environment overrides, e.g. HNBOARD_BOARD_COUNT.
const EnvPrefix = "HNBOARD"

// Load decodes v into a Config. Settings whose zero value is meaningful, like
// a board count of 0, are defaulted through viper so an explicit zero in a
// file or the environment is kept. Everything else goes through FillDefaults.
func Load(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("board.count", DefaultCount)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	c.FillDefaults()
	return c, nil
}

// FillDefaults applies default values if not provided. Board.Count is left
// alone since 0 is a valid count; Load defaults it.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.HackerNews.BaseAPI == "" {
		c.HackerNews.BaseAPI = hackernews.DefaultBaseAPI
	}
	if c.HackerNews.Timeout == 0 {
		c.HackerNews.Timeout = 10 * time.Second
	}
	if c.Algolia.BaseURL == "" {
		c.Algolia.BaseURL = algolia.DefaultBaseURL
	}
	if c.Algolia.BatchSize == 0 {
		c.Algolia.BatchSize = algolia.MaxBatchSize
	}
	if c.Algolia.Concurrency == 0 {
		c.Algolia.Concurrency = 1
	}
	if c.Algolia.Timeout == 0 {
		c.Algolia.Timeout = 10 * time.Second
	}
	if c.Web.StoryURL == "" {
		c.Web.StoryURL = stories.DefaultStoryURL
	}
	if c.Board.Title == "" {
		c.Board.Title = "Hacker News"
	}
	if len(c.Board.Sections) == 0 {
		c.Board.Sections = []SectionConfig{
			{Title: "Top stories", Category: "top"},
			{Title: "New stories", Category: "new"},
		}
	}
	for i := range c.Board.Sections {
		s := &c.Board.Sections[i]
		cat := strings.ToLower(strings.TrimSpace(s.Category))
		if s.Title == "" {
			s.Title = cat
		}
		if s.StoriesTarget == "" {
			s.StoriesTarget = ".js-" + cat + "-stories"
		}
		if s.CountTarget == "" {
			s.CountTarget = ".js-" + cat + "-count"
		}
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8080"
	}
}

// Validate reports settings the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Board.Count < 0 || c.Board.Count > stories.DefaultMaxCount {
		errs = append(errs, fmt.Errorf("board.count must be within 0..%d, got %d", stories.DefaultMaxCount, c.Board.Count))
	}
	if c.Algolia.BatchSize < 1 || c.Algolia.BatchSize > algolia.MaxBatchSize {
		errs = append(errs, fmt.Errorf("algolia.batch_size must be within 1..%d, got %d", algolia.MaxBatchSize, c.Algolia.BatchSize))
	}
	if c.Algolia.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("algolia.concurrency must be positive, got %d", c.Algolia.Concurrency))
	}
	if len(c.Board.Sections) == 0 {
		errs = append(errs, errors.New("board.sections must not be empty"))
	}
	for i, s := range c.Board.Sections {
		if _, err := hackernews.ListName(s.Category); err != nil {
			errs = append(errs, fmt.Errorf("board.sections[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// StoriesConfig derives the aggregator settings.
func (c *Config) StoriesConfig() stories.Config {
	return stories.Config{
		BatchSize:   c.Algolia.BatchSize,
		StoryURL:    c.Web.StoryURL,
		MaxCount:    stories.DefaultMaxCount,
		Concurrency: c.Algolia.Concurrency,
	}
}

// Sections returns the render sections in configured order.
func (c *Config) Sections() []render.Section {
	out := make([]render.Section, len(c.Board.Sections))
	for i, s := range c.Board.Sections {
		out[i] = render.Section{Title: s.Title, StoriesTarget: s.StoriesTarget, CountTarget: s.CountTarget}
	}
	return out
}
