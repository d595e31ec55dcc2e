package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jcarver/marketboard/internal/cache"
	"github.com/jcarver/marketboard/internal/logging"
	"github.com/jcarver/marketboard/internal/models"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
	cacheTTL             = 30 * time.Second
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

type walletReader interface {
	Positions(ctx context.Context, address string) ([]models.Position, error)
	Activity(ctx context.Context, address string, limit int) ([]models.ActivityItem, error)
	Value(ctx context.Context, address string) (float64, error)
}

// Service assembles wallet portfolios from the Data API. The aggregated
// view fans out to positions, value and activity concurrently and tolerates
// partial failures.
type Service struct {
	data   walletReader
	cache  cache.Store
	logger *logging.Logger
}

// ServiceError represents a user-correctable portfolio request error.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewService(data walletReader, store cache.Store, logger *logging.Logger) *Service {
	return &Service{data: data, cache: store, logger: logger}
}

// Get returns the aggregated portfolio for an address. Sections that fail
// upstream are omitted and named in the Errors field; the call only fails
// when every section fails.
func (s *Service) Get(ctx context.Context, address string) (*models.Portfolio, error) {
	address, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}

	key := "portfolio:" + address
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			var p models.Portfolio
			if err := json.Unmarshal(cached, &p); err == nil {
				return &p, nil
			}
		}
	}

	p := &models.Portfolio{Address: address, FetchedAt: time.Now().UTC()}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		positions []models.Position
		activity  []models.ActivityItem
		value     float64
		valueOK   bool
		failures  []string
	)

	fail := func(section string, err error) {
		mu.Lock()
		failures = append(failures, section)
		mu.Unlock()
		if s.logger != nil {
			s.logger.Warn("Portfolio section fetch failed", logging.WithFields(map[string]interface{}{
				"address": address,
				"section": section,
				"error":   err.Error(),
			}))
		}
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		got, err := s.data.Positions(ctx, address)
		if err != nil {
			fail("positions", err)
			return
		}
		mu.Lock()
		positions = got
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		got, err := s.data.Value(ctx, address)
		if err != nil {
			fail("value", err)
			return
		}
		mu.Lock()
		value, valueOK = got, true
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		got, err := s.data.Activity(ctx, address, defaultActivityLimit)
		if err != nil {
			fail("activity", err)
			return
		}
		mu.Lock()
		activity = got
		mu.Unlock()
	}()
	wg.Wait()

	if len(failures) == 3 {
		return nil, fmt.Errorf("portfolio for %s: all sections failed", address)
	}

	p.Positions = positions
	p.Activity = activity
	p.Errors = failures
	if valueOK {
		p.Value = &value
	}

	if s.cache != nil && len(failures) == 0 {
		if data, err := json.Marshal(p); err == nil {
			s.cache.Set(ctx, key, data, cacheTTL)
		}
	}
	return p, nil
}

// Positions returns open positions for an address.
func (s *Service) Positions(ctx context.Context, address string) ([]models.Position, error) {
	address, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}
	positions, err := s.data.Positions(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("positions for %s: %w", address, err)
	}
	return positions, nil
}

// Activity returns recent wallet activity for an address.
func (s *Service) Activity(ctx context.Context, address string, limit int) ([]models.ActivityItem, error) {
	address, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	activity, err := s.data.Activity(ctx, address, limit)
	if err != nil {
		return nil, fmt.Errorf("activity for %s: %w", address, err)
	}
	return activity, nil
}

func normalizeAddress(address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if !addressPattern.MatchString(address) {
		return "", &ServiceError{Message: "invalid wallet address"}
	}
	return address, nil
}
