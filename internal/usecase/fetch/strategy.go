package fetch

import (
	"context"

	"tickermate/internal/domain/entity"
)

// Query describes what a strategy should collect.
type Query struct {
	// Symbol is the ticker being reported on.
	Symbol string

	// Limit is the maximum number of matching items to return.
	Limit int

	// Match filters items; nil accepts every item.
	Match func(entity.ContentItem) bool
}

// Accepts reports whether item passes the query's filter.
func (q Query) Accepts(item entity.ContentItem) bool {
	if item.IsEmpty() {
		return false
	}
	return q.Match == nil || q.Match(item)
}

// Strategy is one way of retrieving content from a source.
// Fetch returns up to q.Limit matching items, or an error.
// An empty slice with a nil error means the source had nothing matching.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]entity.ContentItem, error)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc struct {
	ID string
	Fn func(ctx context.Context, q Query) ([]entity.ContentItem, error)
}

// Name returns the strategy identifier.
func (s StrategyFunc) Name() string { return s.ID }

// Fetch calls the wrapped function.
func (s StrategyFunc) Fetch(ctx context.Context, q Query) ([]entity.ContentItem, error) {
	return s.Fn(ctx, q)
}

// Collector accumulates matching items across pages until a limit is reached.
type Collector struct {
	q     Query
	items []entity.ContentItem
}

// NewCollector returns a Collector for q.
func NewCollector(q Query) *Collector {
	return &Collector{q: q, items: make([]entity.ContentItem, 0, max(q.Limit, 0))}
}

// Add appends item if it matches and the limit is not yet reached.
// It returns true once the collector is full.
func (c *Collector) Add(item entity.ContentItem) bool {
	if c.Full() {
		return true
	}
	if c.q.Accepts(item) {
		c.items = append(c.items, item)
	}
	return c.Full()
}

// Full reports whether Limit items have been collected.
func (c *Collector) Full() bool {
	return len(c.items) >= c.q.Limit
}

// Items returns the collected items in discovery order.
func (c *Collector) Items() []entity.ContentItem {
	return c.items
}
