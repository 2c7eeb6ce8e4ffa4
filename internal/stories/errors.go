package stories

import (
	"errors"
	"fmt"
	"strings"

	"hn-board/internal/model"
)

// ErrInvalidCount is returned when the requested story count is negative or
// above the configured upstream cap.
var ErrInvalidCount = errors.New("stories: invalid story count")

// SourceError reports a failure to load the ranked identifier list.
type SourceError struct {
	Category string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("stories: ranked list %q: %v", e.Category, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// FetchError reports a failed detail batch, tagged with the identifiers it
// carried. Any FetchError aborts the whole run.
type FetchError struct {
	Category string
	Batch    []model.Identifier
	Err      error
}

func (e *FetchError) Error() string {
	ids := make([]string, len(e.Batch))
	for i, id := range e.Batch {
		ids[i] = string(id)
	}
	return fmt.Sprintf("stories: details %q batch [%s]: %v", e.Category, strings.Join(ids, ","), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
