package hackernews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hn-board/internal/metrics"
	"hn-board/internal/model"
)

// DefaultBaseAPI is the public Firebase endpoint of the Hacker News API.
// Docs: https://github.com/HackerNews/API
const DefaultBaseAPI = "https://hacker-news.firebaseio.com/v0"

const userAgent = "hn-board/1.0 (+https://github.com/HackerNews/API)"

// ErrUnknownCategory is returned for a category the API has no list for.
var ErrUnknownCategory = errors.New("hackernews: unknown category")

// StatusError reports a non-2xx response from the API.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hackernews: %s status %d", e.URL, e.StatusCode)
}

// Client fetches ranked story lists.
type Client struct {
	baseAPI string
	client  *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the request timeout of the client's http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a new Hacker News client. baseAPI should be something like
// "https://hacker-news.firebaseio.com/v0". If empty, it defaults to the v0 endpoint.
func NewClient(baseAPI string, opts ...Option) *Client {
	if strings.TrimSpace(baseAPI) == "" {
		baseAPI = DefaultBaseAPI
	}
	c := &Client{
		baseAPI: strings.TrimRight(baseAPI, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// categories maps accepted category spellings to list endpoint names.
var categories = map[string]string{
	"top":  "topstories",
	"new":  "newstories",
	"best": "beststories",
	"ask":  "askstories",
	"show": "showstories",
	"job":  "jobstories",
	"jobs": "jobstories",
}

// ListName normalizes a category ("top", "TopStories", " new ") to the name of
// its list endpoint.
func ListName(category string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(category))
	c = strings.TrimSuffix(c, "stories")
	list, ok := categories[c]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return list, nil
}

// RankedIDs loads the ranked identifier list for a category, most relevant first.
func (c *Client) RankedIDs(ctx context.Context, category string) (model.RankedList, error) {
	list, err := ListName(category)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/%s.json", c.baseAPI, url.PathEscape(list))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveRequest("hackernews", 0, started)
		return nil, fmt.Errorf("hackernews: %s: %w", list, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRequest("hackernews", resp.StatusCode, started)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}
	var ids model.RankedList
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("hackernews: decode %s: %w", list, err)
	}
	slog.Debug("hackernews: fetched ranked ids", "list", list, "count", len(ids))
	return ids, nil
}
