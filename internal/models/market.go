package models

import "time"

// Market is a single tradeable market as served to API clients. Gamma
// returns outcomes, prices and token IDs as JSON-encoded strings inside the
// JSON payload; by the time a Market reaches this type they have been
// decoded into real slices.
type Market struct {
	ID            string    `json:"id"`
	Question      string    `json:"question"`
	Slug          string    `json:"slug"`
	ConditionID   string    `json:"conditionId,omitempty"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Outcomes      []string  `json:"outcomes"`
	OutcomePrices []float64 `json:"outcomePrices"`
	ClobTokenIDs  []string  `json:"clobTokenIds,omitempty"`
	Volume        float64   `json:"volume"`
	Liquidity     float64   `json:"liquidity"`
	Active        bool      `json:"active"`
	Closed        bool      `json:"closed"`
	EndDate       time.Time `json:"endDate,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
}

type MarketListParams struct {
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	Order     string `json:"order"`
	Ascending bool   `json:"ascending"`
	Active    *bool  `json:"active,omitempty"`
	Closed    *bool  `json:"closed,omitempty"`
	Tag       string `json:"tag,omitempty"`
	Query     string `json:"query,omitempty"`
}

type MarketListResponse struct {
	Markets    []Market  `json:"markets"`
	TotalCount int       `json:"totalCount"`
	Limit      int       `json:"limit"`
	Offset     int       `json:"offset"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

type SearchResponse struct {
	Query   string   `json:"query"`
	Markets []Market `json:"markets"`
	Events  []Event  `json:"events"`
}
