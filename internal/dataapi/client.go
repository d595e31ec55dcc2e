package dataapi

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

const DefaultBaseURL = "https://data-api.polymarket.com"

type Config struct {
	BaseURL string
	Timeout time.Duration
	MaxRPS  float64
}

// Client reads wallet-level data (positions, activity, portfolio value) and
// leaderboards from the Data API.
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
		cfg.MaxRPS = 10
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

type rawPosition struct {
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Asset        string  `json:"asset"`
	Outcome      string  `json:"outcome"`
	Size         float64 `json:"size"`
	AvgPrice     float64 `json:"avgPrice"`
	CurPrice     float64 `json:"curPrice"`
	InitialValue float64 `json:"initialValue"`
	CurrentValue float64 `json:"currentValue"`
	CashPnL      float64 `json:"cashPnl"`
	PercentPnL   float64 `json:"percentPnl"`
	Redeemable   bool    `json:"redeemable"`
}

// Positions returns the open positions for a wallet address.
func (c *Client) Positions(ctx context.Context, address string) ([]models.Position, error) {
	query := url.Values{}
	query.Set("user", address)

	var raw []rawPosition
	if err := c.get(ctx, "/positions", query, &raw); err != nil {
		return nil, err
	}

	positions := make([]models.Position, 0, len(raw))
	for _, p := range raw {
		positions = append(positions, models.Position{
			Market:       p.Title,
			MarketSlug:   p.Slug,
			TokenID:      p.Asset,
			Outcome:      p.Outcome,
			Size:         p.Size,
			AvgPrice:     p.AvgPrice,
			CurrentPrice: p.CurPrice,
			InitialValue: p.InitialValue,
			CurrentValue: p.CurrentValue,
			CashPnL:      p.CashPnL,
			PercentPnL:   p.PercentPnL,
			Redeemable:   p.Redeemable,
		})
	}
	return positions, nil
}

type rawActivity struct {
	Type            string  `json:"type"`
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	Outcome         string  `json:"outcome"`
	Side            string  `json:"side"`
	Size            float64 `json:"size"`
	Price           float64 `json:"price"`
	USDCSize        float64 `json:"usdcSize"`
	TransactionHash string  `json:"transactionHash"`
	Timestamp       int64   `json:"timestamp"`
}

// Activity returns recent trades, splits, merges and redemptions for a
// wallet address, newest first.
func (c *Client) Activity(ctx context.Context, address string, limit int) ([]models.ActivityItem, error) {
	query := url.Values{}
	query.Set("user", address)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var raw []rawActivity
	if err := c.get(ctx, "/activity", query, &raw); err != nil {
		return nil, err
	}

	items := make([]models.ActivityItem, 0, len(raw))
	for _, a := range raw {
		items = append(items, models.ActivityItem{
			Type:       a.Type,
			Market:     a.Title,
			MarketSlug: a.Slug,
			Outcome:    a.Outcome,
			Side:       a.Side,
			Size:       a.Size,
			Price:      a.Price,
			USDCSize:   a.USDCSize,
			TxHash:     a.TransactionHash,
			Timestamp:  time.Unix(a.Timestamp, 0).UTC(),
		})
	}
	return items, nil
}

// Value returns the current portfolio value for a wallet address.
func (c *Client) Value(ctx context.Context, address string) (float64, error) {
	query := url.Values{}
	query.Set("user", address)

	var raw []struct {
		User  string  `json:"user"`
		Value float64 `json:"value"`
	}
	if err := c.get(ctx, "/value", query, &raw); err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	return raw[0].Value, nil
}

type rawLeaderboardEntry struct {
	ProxyWallet   string    `json:"proxyWallet"`
	Name          string    `json:"name"`
	Pseudonym     string    `json:"pseudonym"`
	ProfileImage  string    `json:"profileImage"`
	Amount        flexFloat `json:"amount"`
	VerifiedBadge bool      `json:"verifiedBadge"`
}

// flexFloat decodes a number that may be quoted.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = flexFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// Leaderboard returns ranked traders for a time window and rank type
// (volume or profit). Rank is assigned by response order.
func (c *Client) Leaderboard(ctx context.Context, window, rankType string, limit int) ([]models.LeaderboardEntry, error) {
	query := url.Values{}
	query.Set("window", window)
	query.Set("rankType", rankType)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var raw []rawLeaderboardEntry
	if err := c.get(ctx, "/leaderboard", query, &raw); err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(raw))
	for i, e := range raw {
		entries = append(entries, models.LeaderboardEntry{
			Rank:         i + 1,
			Address:      e.ProxyWallet,
			Name:         e.Name,
			Pseudonym:    e.Pseudonym,
			ProfileImage: e.ProfileImage,
			Amount:       float64(e.Amount),
			Verified:     e.VerifiedBadge,
		})
	}
	return entries, nil
}

// APIError is returned for non-200 upstream responses.
type APIError struct {
	Path   string
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dataapi: %s returned status %d", e.Path, e.Status)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("dataapi: throttle wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("dataapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("dataapi: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Path: path, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("dataapi: decode %s: %w", path, err)
	}
	return nil
}
