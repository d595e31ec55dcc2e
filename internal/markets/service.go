package markets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jcarver/marketboard/internal/cache"
	"github.com/jcarver/marketboard/internal/logging"
	"github.com/jcarver/marketboard/internal/models"
)

const (
	defaultLimit  = 20
	maxLimit      = 100
	listCacheTTL  = 30 * time.Second
	detailTTL     = 60 * time.Second
	searchFetchSz = 100
)

var validIntervals = map[string]bool{
	"1h": true, "6h": true, "1d": true, "1w": true, "1m": true, "max": true,
}

type gammaReader interface {
	ListMarkets(ctx context.Context, params models.MarketListParams) ([]models.Market, error)
	GetMarketBySlug(ctx context.Context, slug string) (*models.Market, error)
	ListEvents(ctx context.Context, params models.EventListParams) ([]models.Event, error)
}

type bookReader interface {
	OrderBook(ctx context.Context, tokenID string) (*models.OrderBook, error)
	Midpoint(ctx context.Context, tokenID string) (*models.TokenPrice, error)
	PriceHistory(ctx context.Context, tokenID, interval string) (*models.PriceHistory, error)
}

// Service serves market listings from Gamma and order book data from the
// CLOB, caching the listing endpoints.
type Service struct {
	gamma  gammaReader
	clob   bookReader
	cache  cache.Store
	logger *logging.Logger
	folder cases.Caser
}

// ServiceError represents a user-correctable markets request error.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewService(gamma gammaReader, clob bookReader, store cache.Store, logger *logging.Logger) *Service {
	return &Service{
		gamma:  gamma,
		clob:   clob,
		cache:  store,
		logger: logger,
		folder: cases.Fold(),
	}
}

// List returns markets matching the given filters. Free-text queries are
// matched client-side against case-folded question, slug and category.
func (s *Service) List(ctx context.Context, params models.MarketListParams) (*models.MarketListResponse, error) {
	params.Limit = normalizeLimit(params.Limit)
	if params.Offset < 0 {
		params.Offset = 0
	}

	key := listCacheKey(params)
	if cached, ok := s.cacheGet(ctx, key); ok {
		var resp models.MarketListResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
	}

	var (
		items []models.Market
		err   error
	)
	if strings.TrimSpace(params.Query) == "" {
		items, err = s.gamma.ListMarkets(ctx, params)
	} else {
		items, err = s.searchMarkets(ctx, params)
	}
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	resp := &models.MarketListResponse{
		Markets:    items,
		TotalCount: len(items),
		Limit:      params.Limit,
		Offset:     params.Offset,
		FetchedAt:  time.Now().UTC(),
	}
	s.cacheSet(ctx, key, resp, listCacheTTL)
	return resp, nil
}

// GetBySlug returns one market, or nil when the slug is unknown.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Market, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, &ServiceError{Message: "market slug required"}
	}

	key := "markets:detail:" + slug
	if cached, ok := s.cacheGet(ctx, key); ok {
		var market models.Market
		if err := json.Unmarshal(cached, &market); err == nil {
			return &market, nil
		}
	}

	market, err := s.gamma.GetMarketBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get market %q: %w", slug, err)
	}
	if market == nil {
		return nil, nil
	}

	s.cacheSet(ctx, key, market, detailTTL)
	return market, nil
}

// OrderBook returns the live book for a token. Never cached.
func (s *Service) OrderBook(ctx context.Context, tokenID string) (*models.OrderBook, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil, &ServiceError{Message: "token ID required"}
	}
	book, err := s.clob.OrderBook(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("order book for %s: %w", tokenID, err)
	}
	return book, nil
}

// Price returns the live midpoint for a token. Never cached.
func (s *Service) Price(ctx context.Context, tokenID string) (*models.TokenPrice, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil, &ServiceError{Message: "token ID required"}
	}
	price, err := s.clob.Midpoint(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("midpoint for %s: %w", tokenID, err)
	}
	return price, nil
}

// History returns the price series for a token over a named interval.
func (s *Service) History(ctx context.Context, tokenID, interval string) (*models.PriceHistory, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil, &ServiceError{Message: "token ID required"}
	}
	if interval == "" {
		interval = "1d"
	}
	if !validIntervals[interval] {
		return nil, &ServiceError{Message: "unknown interval: " + interval}
	}

	history, err := s.clob.PriceHistory(ctx, tokenID, interval)
	if err != nil {
		return nil, fmt.Errorf("price history for %s: %w", tokenID, err)
	}
	return history, nil
}

// Search matches markets and events against a case-folded query.
func (s *Service) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ServiceError{Message: "search query required"}
	}

	active := true
	marketItems, err := s.searchMarkets(ctx, models.MarketListParams{
		Limit:  defaultLimit,
		Active: &active,
		Query:  query,
	})
	if err != nil {
		return nil, fmt.Errorf("search markets: %w", err)
	}

	folded := s.folder.String(query)
	events, err := s.gamma.ListEvents(ctx, models.EventListParams{Limit: searchFetchSz, Active: &active})
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}

	matchedEvents := make([]models.Event, 0)
	for _, e := range events {
		if strings.Contains(s.folder.String(e.Title), folded) ||
			strings.Contains(s.folder.String(e.Slug), folded) {
			matchedEvents = append(matchedEvents, e)
			if len(matchedEvents) >= defaultLimit {
				break
			}
		}
	}

	return &models.SearchResponse{
		Query:   query,
		Markets: marketItems,
		Events:  matchedEvents,
	}, nil
}

func (s *Service) searchMarkets(ctx context.Context, params models.MarketListParams) ([]models.Market, error) {
	fetch := params
	fetch.Query = ""
	fetch.Limit = searchFetchSz
	fetch.Offset = 0

	items, err := s.gamma.ListMarkets(ctx, fetch)
	if err != nil {
		return nil, err
	}

	folded := s.folder.String(strings.TrimSpace(params.Query))
	matched := make([]models.Market, 0)
	for _, m := range items {
		if strings.Contains(s.folder.String(m.Question), folded) ||
			strings.Contains(s.folder.String(m.Slug), folded) ||
			strings.Contains(s.folder.String(m.Category), folded) {
			matched = append(matched, m)
		}
	}
	return paginate(matched, params.Limit, params.Offset), nil
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

func listCacheKey(params models.MarketListParams) string {
	return fmt.Sprintf("markets:list:%d:%d:%s:%t:%v:%v:%s:%s",
		params.Limit, params.Offset, params.Order, params.Ascending,
		boolPtr(params.Active), boolPtr(params.Closed), params.Tag,
		strings.ToLower(params.Query))
}

func boolPtr(b *bool) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprintf("%t", *b)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func paginate(items []models.Market, limit, offset int) []models.Market {
	if offset >= len(items) {
		return []models.Market{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
