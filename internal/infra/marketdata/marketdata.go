// Package marketdata looks up the latest quote for a ticker.
package marketdata

import (
	"context"
	"errors"

	"tickermate/internal/domain/entity"
)

// ErrSymbolNotFound is returned when the provider has no data for a symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// Quote is a provider's view of one symbol.
type Quote struct {
	Symbol        string
	Price         float64
	PreviousClose float64
	Name          string
	Sector        string
	Currency      string
}

// Provider fetches quotes.
type Provider interface {
	GetSnapshot(ctx context.Context, symbol string) (Quote, error)
}

// Snapshot converts q into the report's market snapshot. ChangePct is the
// move from the previous close in percent, or 0 without a previous close.
func (q Quote) Snapshot() entity.MarketSnapshot {
	price := q.Price
	s := entity.MarketSnapshot{Price: &price}
	if q.PreviousClose > 0 {
		s.ChangePct = (q.Price - q.PreviousClose) / q.PreviousClose * 100
	}
	if q.Name != "" {
		name := q.Name
		s.Name = &name
	}
	if q.Sector != "" {
		sector := q.Sector
		s.Sector = &sector
	}
	return s
}

// Unavailable is a Provider that never has data. Reports built with it
// carry a null price.
type Unavailable struct{}

// GetSnapshot implements Provider.
func (Unavailable) GetSnapshot(context.Context, string) (Quote, error) {
	return Quote{}, errors.New("market data disabled")
}
