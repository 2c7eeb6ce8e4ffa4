// Package render turns reconciled stories into display cards. Presenters
// mount their output into named regions of a Board; the Board is then written
// out as a page.
package render

import (
	"strings"
	"sync"

	"hn-board/internal/model"
)

// Presenter displays an ordered story list and its count. It never reorders
// the stories.
type Presenter interface {
	Render(stories []model.StoryView, storiesTarget, countTarget string) error
}

// Section is one titled block of the page, bound to a stories region and a
// count region.
type Section struct {
	Title         string
	StoriesTarget string
	CountTarget   string
}

// Board is a display surface made of named regions. It is safe for
// concurrent use, so independent pipelines can mount into one board.
// A board holds either HTML or plain text, depending on which presenter
// filled it.
type Board struct {
	mu      sync.RWMutex
	regions map[string]string
}

func NewBoard() *Board {
	return &Board{regions: make(map[string]string)}
}

// Mount replaces the content of the given regions. pairs alternates target
// and content; all of them become visible together.
func (b *Board) Mount(pairs ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := 0; i+1 < len(pairs); i += 2 {
		b.regions[pairs[i]] = pairs[i+1]
	}
}

// Region returns a region's content and whether anything was mounted there.
func (b *Board) Region(target string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.regions[target]
	return s, ok
}

// className turns a selector-style target (".js-top-stories") into a class name.
func className(target string) string {
	return strings.TrimPrefix(strings.TrimSpace(target), ".")
}
