package clob

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/jcarver/marketboard/internal/models"
)

const DefaultBaseURL = "https://clob.polymarket.com"

type Config struct {
	BaseURL string
	Timeout time.Duration
	MaxRPS  float64
}

// Client reads public order book data from the CLOB API. Prices and sizes
// arrive as decimal strings and are parsed into floats here.
type Client struct {
	baseURL  string
	http     *http.Client
	throttle *rate.Limiter
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRPS <= 0 {
		cfg.MaxRPS = 20
	}
	burst := int(cfg.MaxRPS)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		http:     &http.Client{Timeout: cfg.Timeout},
		throttle: rate.NewLimiter(rate.Limit(cfg.MaxRPS), burst),
	}
}

type rawBook struct {
	Market    string     `json:"market"`
	AssetID   string     `json:"asset_id"`
	Bids      []rawLevel `json:"bids"`
	Asks      []rawLevel `json:"asks"`
	Timestamp string     `json:"timestamp"`
}

type rawLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// OrderBook fetches the current book snapshot for one outcome token.
func (c *Client) OrderBook(ctx context.Context, tokenID string) (*models.OrderBook, error) {
	query := url.Values{}
	query.Set("token_id", tokenID)

	var raw rawBook
	if err := c.get(ctx, "/book", query, &raw); err != nil {
		return nil, err
	}

	book := &models.OrderBook{
		TokenID:   tokenID,
		Market:    raw.Market,
		Bids:      parseLevels(raw.Bids),
		Asks:      parseLevels(raw.Asks),
		Timestamp: parseMillis(raw.Timestamp),
	}
	return book, nil
}

// Midpoint fetches the mid price between best bid and best ask.
func (c *Client) Midpoint(ctx context.Context, tokenID string) (*models.TokenPrice, error) {
	query := url.Values{}
	query.Set("token_id", tokenID)

	var raw struct {
		Mid string `json:"mid"`
	}
	if err := c.get(ctx, "/midpoint", query, &raw); err != nil {
		return nil, err
	}

	mid, err := strconv.ParseFloat(raw.Mid, 64)
	if err != nil {
		return nil, fmt.Errorf("clob: midpoint %q for token %s: %w", raw.Mid, tokenID, err)
	}
	return &models.TokenPrice{TokenID: tokenID, Midpoint: mid, AsOf: time.Now().UTC()}, nil
}

// PriceHistory fetches the traded price series for a token over a named
// interval (1h, 6h, 1d, 1w, 1m, max).
func (c *Client) PriceHistory(ctx context.Context, tokenID, interval string) (*models.PriceHistory, error) {
	query := url.Values{}
	query.Set("market", tokenID)
	query.Set("interval", interval)

	var raw struct {
		History []struct {
			T int64   `json:"t"`
			P float64 `json:"p"`
		} `json:"history"`
	}
	if err := c.get(ctx, "/prices-history", query, &raw); err != nil {
		return nil, err
	}

	history := &models.PriceHistory{
		TokenID:  tokenID,
		Interval: interval,
		History:  make([]models.PricePoint, 0, len(raw.History)),
	}
	for _, p := range raw.History {
		history.History = append(history.History, models.PricePoint{
			Timestamp: time.Unix(p.T, 0).UTC(),
			Price:     p.P,
		})
	}
	return history, nil
}

// APIError is returned for non-200 upstream responses.
type APIError struct {
	Path   string
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clob: %s returned status %d", e.Path, e.Status)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("clob: throttle wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("clob: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("clob: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Path: path, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("clob: decode %s: %w", path, err)
	}
	return nil
}

func parseLevels(raw []rawLevel) []models.BookLevel {
	levels := make([]models.BookLevel, 0, len(raw))
	for _, l := range raw {
		price, _ := strconv.ParseFloat(l.Price, 64)
		size, _ := strconv.ParseFloat(l.Size, 64)
		levels = append(levels, models.BookLevel{Price: price, Size: size})
	}
	return levels
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
