package models

import "time"

type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	Address      string  `json:"address"`
	Name         string  `json:"name,omitempty"`
	Pseudonym    string  `json:"pseudonym,omitempty"`
	ProfileImage string  `json:"profileImage,omitempty"`
	Amount       float64 `json:"amount"`
	Verified     bool    `json:"verified,omitempty"`
}

type LeaderboardResponse struct {
	Window    string             `json:"window"`
	RankType  string             `json:"rankType"`
	Entries   []LeaderboardEntry `json:"entries"`
	FetchedAt time.Time          `json:"fetchedAt"`
}
