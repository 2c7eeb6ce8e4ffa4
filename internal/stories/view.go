package stories

import (
	"fmt"
	"net/url"
	"time"

	"hn-board/internal/model"
)

// TimestampLayout is the display form of a story's creation time.
const TimestampLayout = "2006-01-02 15:04:05"

// NormalizeTimestamp converts an RFC 3339 timestamp (fractional seconds
// allowed) to UTC at second precision, without a zone suffix.
func NormalizeTimestamp(raw string) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", fmt.Errorf("created_at %q: %w", raw, err)
	}
	return t.UTC().Format(TimestampLayout), nil
}

// DiscussionURL builds {storyURL}?id={id}.
func DiscussionURL(storyURL string, id model.Identifier) string {
	return storyURL + "?id=" + url.QueryEscape(string(id))
}

func buildView(rec model.DetailRecord, storyURL string) (model.StoryView, error) {
	created, err := NormalizeTimestamp(rec.CreatedAt)
	if err != nil {
		return model.StoryView{}, err
	}
	return model.StoryView{
		ID:            rec.ID,
		CreatedAt:     created,
		Title:         rec.Title,
		DiscussionURL: DiscussionURL(storyURL, rec.ID),
		ExternalURL:   rec.URL,
	}, nil
}
