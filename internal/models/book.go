package models

import "time"

// OrderBook is a point-in-time snapshot of resting orders for one outcome
// token.
type OrderBook struct {
	TokenID   string      `json:"tokenId"`
	Market    string      `json:"market,omitempty"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Timestamp time.Time   `json:"timestamp"`
}

type BookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

type PriceHistory struct {
	TokenID  string       `json:"tokenId"`
	Interval string       `json:"interval"`
	History  []PricePoint `json:"history"`
}

type TokenPrice struct {
	TokenID  string    `json:"tokenId"`
	Midpoint float64   `json:"midpoint"`
	AsOf     time.Time `json:"asOf"`
}
