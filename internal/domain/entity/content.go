// Package entity defines the core domain types: content items gathered from
// sources, their LLM classification, the market snapshot and the assembled
// report, together with ticker validation and domain errors.
package entity

import (
	"strings"
	"time"
)

// ContentItem is one post or article retrieved from a source.
// Items are kept in the order the source returned them.
type ContentItem struct {
	CreatedAt time.Time
	Body      string
	Source    string
	URL       string
}

// NewContentItem builds a ContentItem with its timestamp normalized to UTC
// and surrounding whitespace removed from the body.
func NewContentItem(createdAt time.Time, body, source, url string) ContentItem {
	return ContentItem{
		CreatedAt: createdAt.UTC(),
		Body:      strings.TrimSpace(body),
		Source:    source,
		URL:       url,
	}
}

// IsEmpty reports whether the item carries no text.
func (c ContentItem) IsEmpty() bool {
	return strings.TrimSpace(c.Body) == ""
}
