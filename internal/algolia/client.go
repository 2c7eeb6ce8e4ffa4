// Package algolia fetches story metadata from the Algolia Hacker News search API.
package algolia

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hn-board/internal/metrics"
	"hn-board/internal/model"
)

// DefaultBaseURL is the public search endpoint.
const DefaultBaseURL = "https://hn.algolia.com/api/v1/search"

// MaxBatchSize is the most story tags one request may carry.
const MaxBatchSize = 20

const userAgent = "hn-board/1.0 (+https://hn.algolia.com/api)"

// StatusError reports a non-2xx response from the API.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("algolia: %s status %d", e.URL, e.StatusCode)
}

// searchResponse mirrors the subset of the search response we read.
type searchResponse struct {
	Hits []model.DetailRecord `json:"hits"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a search client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StoryTags builds the tag filter selecting exactly the given stories:
// story,(story_1,story_2,...).
func StoryTags(ids []model.Identifier) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "story_" + string(id)
	}
	return "story,(" + strings.Join(parts, ",") + ")"
}

// FetchDetails issues one search request for a batch of at most MaxBatchSize
// identifiers. Upstream may omit items and returns hits in no particular order.
func (c *Client) FetchDetails(ctx context.Context, ids []model.Identifier) ([]model.DetailRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatchSize {
		return nil, fmt.Errorf("algolia: batch of %d exceeds limit %d", len(ids), MaxBatchSize)
	}
	q := url.Values{}
	q.Set("tags", StoryTags(ids))
	q.Set("hitsPerPage", strconv.Itoa(len(ids)))
	endpoint := c.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveRequest("algolia", 0, started)
		return nil, fmt.Errorf("algolia: search: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveRequest("algolia", resp.StatusCode, started)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}
	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("algolia: decode search response: %w", err)
	}
	slog.Debug("algolia: fetched details", "requested", len(ids), "hits", len(sr.Hits))
	return sr.Hits, nil
}
