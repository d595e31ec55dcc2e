package models

import "time"

// Position is one open holding for a wallet address.
type Position struct {
	Market       string  `json:"market"`
	MarketSlug   string  `json:"marketSlug,omitempty"`
	TokenID      string  `json:"tokenId"`
	Outcome      string  `json:"outcome"`
	Size         float64 `json:"size"`
	AvgPrice     float64 `json:"avgPrice"`
	CurrentPrice float64 `json:"currentPrice"`
	InitialValue float64 `json:"initialValue"`
	CurrentValue float64 `json:"currentValue"`
	CashPnL      float64 `json:"cashPnl"`
	PercentPnL   float64 `json:"percentPnl"`
	Redeemable   bool    `json:"redeemable"`
}

// ActivityItem is one trade, split, merge or redemption in a wallet's
// history.
type ActivityItem struct {
	Type       string    `json:"type"`
	Market     string    `json:"market,omitempty"`
	MarketSlug string    `json:"marketSlug,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	Side       string    `json:"side,omitempty"`
	Size       float64   `json:"size"`
	Price      float64   `json:"price"`
	USDCSize   float64   `json:"usdcSize"`
	TxHash     string    `json:"txHash,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Portfolio is the aggregated view for one address. Sections that could not
// be fetched are left nil and reported in Errors.
type Portfolio struct {
	Address   string         `json:"address"`
	Value     *float64       `json:"value,omitempty"`
	Positions []Position     `json:"positions,omitempty"`
	Activity  []ActivityItem `json:"activity,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
	FetchedAt time.Time      `json:"fetchedAt"`
}
