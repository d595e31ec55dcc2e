package events

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
	defaultLimit = 20
	maxLimit     = 100
	listTTL      = 60 * time.Second
	tagsTTL      = 5 * time.Minute
	featuredSize = 12
)

type gammaReader interface {
	ListEvents(ctx context.Context, params models.EventListParams) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// Service serves event listings and the tag taxonomy from Gamma.
type Service struct {
	gamma  gammaReader
	cache  cache.Store
	logger *logging.Logger
}

// ServiceError represents a user-correctable events request error.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewService(gamma gammaReader, store cache.Store, logger *logging.Logger) *Service {
	return &Service{gamma: gamma, cache: store, logger: logger}
}

// List returns events matching the given filters.
func (s *Service) List(ctx context.Context, params models.EventListParams) (*models.EventListResponse, error) {
	if params.Limit <= 0 {
		params.Limit = defaultLimit
	}
	if params.Limit > maxLimit {
		params.Limit = maxLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	key := fmt.Sprintf("events:list:%d:%d:%s:%v:%v:%t:%s",
		params.Limit, params.Offset, params.Order,
		boolPtr(params.Active), boolPtr(params.Closed), params.Featured, params.Tag)
	if cached, ok := s.cacheGet(ctx, key); ok {
		var resp models.EventListResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
	}

	items, err := s.gamma.ListEvents(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	resp := &models.EventListResponse{
		Events:     items,
		TotalCount: len(items),
		Limit:      params.Limit,
		Offset:     params.Offset,
		FetchedAt:  time.Now().UTC(),
	}
	s.cacheSet(ctx, key, resp, listTTL)
	return resp, nil
}

// Featured returns the curated front-page event list.
func (s *Service) Featured(ctx context.Context) (*models.EventListResponse, error) {
	active := true
	return s.List(ctx, models.EventListParams{
		Limit:    featuredSize,
		Active:   &active,
		Featured: true,
		Order:    "volume",
	})
}

// Get returns one event by ID, or nil when unknown.
func (s *Service) Get(ctx context.Context, id string) (*models.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &ServiceError{Message: "event ID required"}
	}

	key := "events:detail:" + id
	if cached, ok := s.cacheGet(ctx, key); ok {
		var event models.Event
		if err := json.Unmarshal(cached, &event); err == nil {
			return &event, nil
		}
	}

	event, err := s.gamma.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	if event == nil {
		return nil, nil
	}

	s.cacheSet(ctx, key, event, listTTL)
	return event, nil
}

// Tags returns the tag taxonomy used for event filtering.
func (s *Service) Tags(ctx context.Context) ([]models.Tag, error) {
	if cached, ok := s.cacheGet(ctx, "events:tags"); ok {
		var tags []models.Tag
		if err := json.Unmarshal(cached, &tags); err == nil {
			return tags, nil
		}
	}

	tags, err := s.gamma.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	s.cacheSet(ctx, "events:tags", tags, tagsTTL)
	return tags, nil
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, key)
}

func (s *Service) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Failed to marshal cache entry", logging.WithField("key", key))
		}
		return
	}
	s.cache.Set(ctx, key, data, ttl)
}

func boolPtr(b *bool) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprintf("%t", *b)
}
