package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jcarver/marketboard/internal/cache"
	"github.com/jcarver/marketboard/internal/logging"
	"github.com/jcarver/marketboard/internal/models"
)

const (
	defaultLimit = 25
	maxLimit     = 100
	cacheTTL     = 60 * time.Second
)

var validWindows = map[string]bool{
	"day": true, "week": true, "month": true, "all": true,
}

type rankReader interface {
	Leaderboard(ctx context.Context, window, rankType string, limit int) ([]models.LeaderboardEntry, error)
}

// Service serves trader leaderboards from the Data API.
type Service struct {
	data   rankReader
	cache  cache.Store
	logger *logging.Logger
}

// ServiceError represents a user-correctable leaderboard request error.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewService(data rankReader, store cache.Store, logger *logging.Logger) *Service {
	return &Service{data: data, cache: store, logger: logger}
}

// Get returns ranked traders for a window (day|week|month|all) and rank
// type (vol|profit). Common aliases are accepted.
func (s *Service) Get(ctx context.Context, window, rankType string, limit int) (*models.LeaderboardResponse, error) {
	window = normalizeWindow(window)
	if !validWindows[window] {
		return nil, &ServiceError{Message: "unknown window: " + window}
	}

	rankType, err := normalizeRankType(rankType)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	key := fmt.Sprintf("leaderboard:%s:%s:%d", window, rankType, limit)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			var resp models.LeaderboardResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	entries, err := s.data.Leaderboard(ctx, window, rankType, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard %s/%s: %w", window, rankType, err)
	}

	resp := &models.LeaderboardResponse{
		Window:    window,
		RankType:  rankType,
		Entries:   entries,
		FetchedAt: time.Now().UTC(),
	}
	if s.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.cache.Set(ctx, key, data, cacheTTL)
		} else if s.logger != nil {
			s.logger.Warn("Failed to marshal leaderboard cache entry", logging.WithField("key", key))
		}
	}
	return resp, nil
}

func normalizeWindow(window string) string {
	window = strings.ToLower(strings.TrimSpace(window))
	switch window {
	case "", "1d", "24h":
		return "day"
	case "7d", "1w":
		return "week"
	case "30d", "1m":
		return "month"
	default:
		return window
	}
}

func normalizeRankType(rankType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(rankType)) {
	case "", "vol", "volume":
		return "vol", nil
	case "profit", "pnl":
		return "profit", nil
	default:
		return "", &ServiceError{Message: "unknown rank type: " + rankType}
	}
}
