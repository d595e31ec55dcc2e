package models

import "time"

// Event groups related markets under one umbrella question.
type Event struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Volume      float64   `json:"volume"`
	Liquidity   float64   `json:"liquidity"`
	Active      bool      `json:"active"`
	Closed      bool      `json:"closed"`
	Featured    bool      `json:"featured"`
	StartDate   time.Time `json:"startDate,omitempty"`
	EndDate     time.Time `json:"endDate,omitempty"`
	Markets     []Market  `json:"markets,omitempty"`
	Tags        []Tag     `json:"tags,omitempty"`
}

type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

type EventListParams struct {
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
	Order    string `json:"order"`
	Active   *bool  `json:"active,omitempty"`
	Closed   *bool  `json:"closed,omitempty"`
	Featured bool   `json:"featured"`
	Tag      string `json:"tag,omitempty"`
}

type EventListResponse struct {
	Events     []Event   `json:"events"`
	TotalCount int       `json:"totalCount"`
	Limit      int       `json:"limit"`
	Offset     int       `json:"offset"`
	FetchedAt  time.Time `json:"fetchedAt"`
}
