package stories

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hn-board/internal/algolia"
	"hn-board/internal/hackernews"
	"hn-board/internal/metrics"
	"hn-board/internal/model"
)

type fakeRanked struct {
	ids model.RankedList
	err error
}

func (f fakeRanked) RankedIDs(context.Context, string) (model.RankedList, error) {
	return f.ids, f.err
}

// fakeDetails answers each batch with respond(batch), recording the calls.
type fakeDetails struct {
	mu      sync.Mutex
	calls   [][]model.Identifier
	respond func(batch []model.Identifier) ([]model.DetailRecord, error)
}

func (f *fakeDetails) FetchDetails(_ context.Context, ids []model.Identifier) ([]model.DetailRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ids)
	f.mu.Unlock()
	return f.respond(ids)
}

func rec(id string) model.DetailRecord {
	return model.DetailRecord{
		ID:        model.Identifier(id),
		CreatedAt: "2021-06-01T12:34:56.789Z",
		Title:     "title " + id,
		URL:       "https://example.com/" + id,
	}
}

func ids(n int) model.RankedList {
	out := make(model.RankedList, n)
	for i := range out {
		out[i] = model.Identifier(fmt.Sprintf("%d", 1000+i))
	}
	return out
}

func viewIDs(views []model.StoryView) []model.Identifier {
	out := make([]model.Identifier, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}

// reversed answers every batch with its records in reverse order.
func reversed(batch []model.Identifier) ([]model.DetailRecord, error) {
	out := make([]model.DetailRecord, 0, len(batch))
	for i := len(batch) - 1; i >= 0; i-- {
		out = append(out, rec(string(batch[i])))
	}
	return out, nil
}

func TestStoriesOrderPreservation(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			ranked := ids(45)
			details := &fakeDetails{respond: reversed}
			agg := New(fakeRanked{ids: ranked}, details, Config{Concurrency: concurrency})

			views, err := agg.Stories(context.Background(), "top", 45)
			require.NoError(t, err)
			assert.Equal(t, []model.Identifier(ranked), viewIDs(views))
			assert.Len(t, details.calls, 3)
			for _, c := range details.calls {
				assert.LessOrEqual(t, len(c), algolia.MaxBatchSize)
			}
		})
	}
}

func TestStoriesBatchesInRankOrder(t *testing.T) {
	ranked := ids(41)
	details := &fakeDetails{respond: reversed}
	agg := New(fakeRanked{ids: ranked}, details, DefaultConfig())

	_, err := agg.Stories(context.Background(), "new", 41)
	require.NoError(t, err)

	require.Len(t, details.calls, 3)
	var joined []model.Identifier
	for _, c := range details.calls {
		joined = append(joined, c...)
	}
	assert.Equal(t, []model.Identifier(ranked), joined)
	assert.Len(t, details.calls[2], 1)
}

func TestStoriesTruncation(t *testing.T) {
	tests := []struct {
		name      string
		ranked    int
		count     int
		wantLen   int
		wantCalls int
	}{
		{name: "zero count", ranked: 10, count: 0, wantLen: 0, wantCalls: 0},
		{name: "count below list", ranked: 30, count: 7, wantLen: 7, wantCalls: 1},
		{name: "count above list", ranked: 3, count: 100, wantLen: 3, wantCalls: 1},
		{name: "empty list", ranked: 0, count: 100, wantLen: 0, wantCalls: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := ids(tt.ranked)
			details := &fakeDetails{respond: reversed}
			agg := New(fakeRanked{ids: ranked}, details, DefaultConfig())

			views, err := agg.Stories(context.Background(), "top", tt.count)
			require.NoError(t, err)
			assert.NotNil(t, views)
			assert.Len(t, views, tt.wantLen)
			assert.Len(t, details.calls, tt.wantCalls)
			if tt.wantLen > 0 {
				assert.Equal(t, []model.Identifier(ranked[:tt.wantLen]), viewIDs(views))
			}
		})
	}
}

func TestStoriesFiltersUnmatched(t *testing.T) {
	details := &fakeDetails{respond: func([]model.Identifier) ([]model.DetailRecord, error) {
		return []model.DetailRecord{rec("C"), rec("A")}, nil
	}}
	agg := New(fakeRanked{ids: model.RankedList{"A", "B", "C"}}, details, DefaultConfig())

	before := testutil.ToFloat64(metrics.StoriesDropped.WithLabelValues("filter-test"))
	views, err := agg.Stories(context.Background(), "filter-test", 3)
	require.NoError(t, err)

	assert.Equal(t, []model.Identifier{"A", "C"}, viewIDs(views))
	after := testutil.ToFloat64(metrics.StoriesDropped.WithLabelValues("filter-test"))
	assert.Equal(t, 1.0, after-before)
}

func TestStoriesDedupFirstWins(t *testing.T) {
	details := &fakeDetails{respond: func(batch []model.Identifier) ([]model.DetailRecord, error) {
		first := rec("A")
		first.Title = "first"
		second := rec("A")
		second.Title = "second"
		if batch[0] == "A" {
			return []model.DetailRecord{first, rec("B"), second}, nil
		}
		third := rec("A")
		third.Title = "from later batch"
		return []model.DetailRecord{third, rec("C")}, nil
	}}
	agg := New(fakeRanked{ids: model.RankedList{"A", "B", "C"}}, details, Config{BatchSize: 2})

	views, err := agg.Stories(context.Background(), "top", 3)
	require.NoError(t, err)

	require.Equal(t, []model.Identifier{"A", "B", "C"}, viewIDs(views))
	assert.Equal(t, "first", views[0].Title)
}

func TestStoriesBuildsViews(t *testing.T) {
	details := &fakeDetails{respond: func([]model.Identifier) ([]model.DetailRecord, error) {
		r := rec("8863")
		r.URL = ""
		return []model.DetailRecord{r}, nil
	}}
	agg := New(fakeRanked{ids: model.RankedList{"8863"}}, details, DefaultConfig())

	views, err := agg.Stories(context.Background(), "top", 1)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, model.StoryView{
		ID:            "8863",
		CreatedAt:     "2021-06-01 12:34:56",
		Title:         "title 8863",
		DiscussionURL: "https://news.ycombinator.com/item?id=8863",
		ExternalURL:   "",
	}, views[0])
}

func TestStoriesInvalidCount(t *testing.T) {
	agg := New(fakeRanked{}, &fakeDetails{respond: reversed}, DefaultConfig())
	for _, n := range []int{-1, 501} {
		_, err := agg.Stories(context.Background(), "top", n)
		assert.ErrorIs(t, err, ErrInvalidCount, "count %d", n)
	}
}

func TestStoriesSourceError(t *testing.T) {
	boom := errors.New("boom")
	details := &fakeDetails{respond: reversed}
	agg := New(fakeRanked{err: boom}, details, DefaultConfig())

	views, err := agg.Stories(context.Background(), "top", 10)
	assert.Nil(t, views)
	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "top", se.Category)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, details.calls)
}

func TestStoriesFetchErrorAbortsRun(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			boom := errors.New("connection reset")
			ranked := ids(50)
			details := &fakeDetails{respond: func(batch []model.Identifier) ([]model.DetailRecord, error) {
				if batch[0] == ranked[20] {
					return nil, boom
				}
				return reversed(batch)
			}}
			agg := New(fakeRanked{ids: ranked}, details, Config{Concurrency: concurrency})

			views, err := agg.Stories(context.Background(), "new", 50)
			assert.Nil(t, views)
			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, []model.Identifier(ranked[20:40]), fe.Batch)
			assert.Contains(t, err.Error(), string(ranked[20]))
			if concurrency == 1 {
				assert.Len(t, details.calls, 2, "sequential run stops at the failing batch")
			}
		})
	}
}

func TestStoriesParallelReportsLowestFailingBatch(t *testing.T) {
	ranked := ids(60)
	laterFailed := make(chan struct{})
	details := &fakeDetails{respond: func(batch []model.Identifier) ([]model.DetailRecord, error) {
		switch batch[0] {
		case ranked[0]:
			// fails only after the later batch already failed and cancelled the run
			<-laterFailed
			return nil, errors.New("batch 0 reset")
		case ranked[20]:
			defer close(laterFailed)
			return nil, errors.New("batch 1 reset")
		}
		return reversed(batch)
	}}
	agg := New(fakeRanked{ids: ranked}, details, Config{Concurrency: 2})

	_, err := agg.Stories(context.Background(), "top", 60)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []model.Identifier(ranked[:20]), fe.Batch)
	assert.EqualError(t, fe.Err, "batch 0 reset")
}

func TestStoriesParallelSkipsCancelledBatches(t *testing.T) {
	ranked := ids(40)
	laterFailed := make(chan struct{})
	details := &fakeDetails{respond: func(batch []model.Identifier) ([]model.DetailRecord, error) {
		if batch[0] == ranked[0] {
			<-laterFailed
			return nil, fmt.Errorf("search: %w", context.Canceled)
		}
		defer close(laterFailed)
		return nil, errors.New("batch 1 reset")
	}}
	agg := New(fakeRanked{ids: ranked}, details, Config{Concurrency: 2})

	_, err := agg.Stories(context.Background(), "top", 40)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []model.Identifier(ranked[20:]), fe.Batch)
	assert.EqualError(t, fe.Err, "batch 1 reset")
}

func TestFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		errs []error
		want int
	}{
		{"none", []error{nil, nil}, -1},
		{"only failure", []error{nil, boom}, 1},
		{"lowest wins", []error{nil, boom, boom}, 1},
		{"cancellation skipped", []error{context.Canceled, boom}, 1},
		{"all cancelled", []error{nil, context.Canceled, context.Canceled}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstFailure(tt.errs))
		})
	}
}

func TestStoriesBadTimestampFails(t *testing.T) {
	details := &fakeDetails{respond: func([]model.Identifier) ([]model.DetailRecord, error) {
		r := rec("1")
		r.CreatedAt = "yesterday"
		return []model.DetailRecord{r}, nil
	}}
	agg := New(fakeRanked{ids: model.RankedList{"1"}}, details, DefaultConfig())

	_, err := agg.Stories(context.Background(), "top", 1)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []model.Identifier{"1"}, fe.Batch)
}

func TestNewFillsDefaults(t *testing.T) {
	agg := New(nil, nil, Config{BatchSize: 50, MaxCount: -1})
	assert.Equal(t, DefaultConfig(), agg.Config())
}

func TestStoriesEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v0/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[101, 102, 103]`))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "story,(story_101,story_102)", r.URL.Query().Get("tags"))
		w.Write([]byte(`{"hits":[
			{"objectID":"102","created_at":"2021-06-01T08:00:00Z","title":"Two","url":"https://two.example"},
			{"objectID":"101","created_at":"2021-06-01T12:34:56.789Z","title":"One","url":null}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	agg := New(
		hackernews.NewClient(srv.URL+"/v0"),
		algolia.NewClient(srv.URL+"/search"),
		DefaultConfig(),
	)
	views, err := agg.Stories(context.Background(), "top", 2)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, []model.Identifier{"101", "102"}, viewIDs(views))
	assert.Equal(t, "2021-06-01 12:34:56", views[0].CreatedAt)
	assert.True(t, strings.HasSuffix(views[1].DiscussionURL, "?id=102"))
}
