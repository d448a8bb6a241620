package entity

// MarketSnapshot is the latest quote for a ticker.
// Price is nil when the provider could not be reached; in that case
// ChangePct is 0 and Name and Sector are nil.
type MarketSnapshot struct {
	Price     *float64
	ChangePct float64
	Name      *string
	Sector    *string
}

// UnavailableSnapshot is the degraded value used when the quote provider fails.
func UnavailableSnapshot() MarketSnapshot {
	return MarketSnapshot{}
}

// Available reports whether a price was obtained.
func (m MarketSnapshot) Available() bool {
	return m.Price != nil
}
