package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Identifier names one story. The ranked-ID source emits numbers while the
// details source emits strings, so both decode to the same textual form.
type Identifier string

func (id *Identifier) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			return errors.New("identifier: empty")
		}
		*id = Identifier(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("identifier: %w", err)
	}
	if n == "" {
		return errors.New("identifier: empty")
	}
	*id = Identifier(n.String())
	return nil
}

func (id Identifier) String() string { return string(id) }

// RankedList is ordered by relevance, position 0 first.
type RankedList []Identifier

// DetailRecord is one story's metadata as returned by the details source.
// URL is empty when upstream reports null.
type DetailRecord struct {
	ID        Identifier `json:"objectID"`
	CreatedAt string     `json:"created_at"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
}

// StoryView is the reconciled, render-ready story.
type StoryView struct {
	ID            Identifier `json:"id" yaml:"id"`
	CreatedAt     string     `json:"created_at" yaml:"created_at"`
	Title         string     `json:"title" yaml:"title"`
	DiscussionURL string     `json:"discussion_url" yaml:"discussion_url"`
	ExternalURL   string     `json:"external_url,omitempty" yaml:"external_url,omitempty"`
}
