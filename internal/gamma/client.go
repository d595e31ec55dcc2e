package gamma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/jcarver/marketboard/internal/models"
)

const DefaultBaseURL = "https://gamma-api.polymarket.com"

type Config struct {
	BaseURL string
	Timeout time.Duration
	MaxRPS  float64
}

// Client talks to the Gamma markets API. Calls are throttled client-side so
// a burst of inbound traffic cannot hammer the upstream.
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

// ListMarkets fetches markets matching the given filters.
func (c *Client) ListMarkets(ctx context.Context, params models.MarketListParams) ([]models.Market, error) {
	query := url.Values{}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.Order != "" {
		query.Set("order", params.Order)
		query.Set("ascending", strconv.FormatBool(params.Ascending))
	}
	if params.Active != nil {
		query.Set("active", strconv.FormatBool(*params.Active))
	}
	if params.Closed != nil {
		query.Set("closed", strconv.FormatBool(*params.Closed))
	}
	if params.Tag != "" {
		query.Set("tag_slug", params.Tag)
	}

	var raw []rawMarket
	if err := c.get(ctx, "/markets", query, &raw); err != nil {
		return nil, err
	}

	markets := make([]models.Market, 0, len(raw))
	for _, m := range raw {
		markets = append(markets, m.toModel())
	}
	return markets, nil
}

// GetMarketBySlug returns the market with the given slug, or nil when the
// upstream knows no such market.
func (c *Client) GetMarketBySlug(ctx context.Context, slug string) (*models.Market, error) {
	query := url.Values{}
	query.Set("slug", slug)

	var raw []rawMarket
	if err := c.get(ctx, "/markets", query, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	market := raw[0].toModel()
	return &market, nil
}

// ListEvents fetches events matching the given filters.
func (c *Client) ListEvents(ctx context.Context, params models.EventListParams) ([]models.Event, error) {
	query := url.Values{}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.Order != "" {
		query.Set("order", params.Order)
	}
	if params.Active != nil {
		query.Set("active", strconv.FormatBool(*params.Active))
	}
	if params.Closed != nil {
		query.Set("closed", strconv.FormatBool(*params.Closed))
	}
	if params.Featured {
		query.Set("featured", "true")
	}
	if params.Tag != "" {
		query.Set("tag_slug", params.Tag)
	}

	var raw []rawEvent
	if err := c.get(ctx, "/events", query, &raw); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(raw))
	for _, e := range raw {
		events = append(events, e.toModel())
	}
	return events, nil
}

// GetEvent returns a single event by its numeric ID, or nil when absent.
func (c *Client) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var raw rawEvent
	err := c.get(ctx, "/events/"+url.PathEscape(id), nil, &raw)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	event := raw.toModel()
	return &event, nil
}

// ListTags returns the tag taxonomy used to categorize events.
func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	var raw []rawTag
	if err := c.get(ctx, "/tags", nil, &raw); err != nil {
		return nil, err
	}

	tags := make([]models.Tag, 0, len(raw))
	for _, t := range raw {
		tags = append(tags, models.Tag{ID: t.ID, Label: t.Label, Slug: t.Slug})
	}
	return tags, nil
}

// APIError is returned for non-200 upstream responses.
type APIError struct {
	Path   string
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gamma: %s returned status %d", e.Path, e.Status)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("gamma: throttle wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("gamma: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gamma: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Path: path, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gamma: decode %s: %w", path, err)
	}
	return nil
}
