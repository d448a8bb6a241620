// Package report provides the HTTP handlers of the dashboard report API.
package report

import (
	"time"

	"tickermate/internal/domain/entity"
)

// ItemDTO is one summarized content item.
type ItemDTO struct {
	TimeAgo   string `json:"time_ago" example:"3h ago"`
	Source    string `json:"source,omitempty" example:"Truth Social"`
	Sentiment string `json:"sentiment" example:"Bearish"`
	Summary   string `json:"summary" example:"Tariff threat weighs on carmakers."`
}

// DTO is the report returned by GET /api/report.
type DTO struct {
	Ticker      string    `json:"ticker" example:"TSLA"`
	Channel     string    `json:"channel" example:"social"`
	Name        string    `json:"name" example:"Tesla, Inc."`
	Sector      string    `json:"sector" example:"Consumer Cyclical"`
	Price       *string   `json:"price" example:"248.50"`
	Change      string    `json:"change" example:"-1.23%"`
	Highlight   string    `json:"highlight" example:"Post threatens new auto tariffs."`
	Items       []ItemDTO `json:"items"`
	GeneratedAt time.Time `json:"generated_at" example:"2025-03-02T12:00:00Z"`
}

// HistoryEntryDTO is one archived report.
type HistoryEntryDTO struct {
	ID     int64 `json:"id" example:"42"`
	Report DTO   `json:"report"`
}

// HistoryDTO is the body of GET /api/reports/history.
type HistoryDTO struct {
	Ticker  string            `json:"ticker" example:"TSLA"`
	Reports []HistoryEntryDTO `json:"reports"`
}

func toDTO(r *entity.Report) DTO {
	items := make([]ItemDTO, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ItemDTO{
			TimeAgo:   it.TimeAgo,
			Source:    it.Source,
			Sentiment: it.Sentiment,
			Summary:   it.Summary,
		})
	}
	return DTO{
		Ticker:      r.Ticker,
		Channel:     string(r.Channel),
		Name:        r.Name,
		Sector:      r.Sector,
		Price:       r.Price,
		Change:      r.Change,
		Highlight:   r.Highlight,
		Items:       items,
		GeneratedAt: r.GeneratedAt,
	}
}
