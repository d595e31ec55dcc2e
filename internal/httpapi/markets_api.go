package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jcarver/marketboard/internal/logging"
	"github.com/jcarver/marketboard/internal/markets"
	"github.com/jcarver/marketboard/internal/models"
)

// MarketsAPI handles market listing, detail, search and order book routes.
type MarketsAPI struct {
	svc    *markets.Service
	logger *logging.Logger
}

func NewMarketsAPI(svc *markets.Service, logger *logging.Logger) *MarketsAPI {
	return &MarketsAPI{svc: svc, logger: logger}
}

// RegisterRoutes registers market routes on the given mux. Book and price
// routes get the loosest quota; they are cheap upstream and polled by UIs.
func (api *MarketsAPI) RegisterRoutes(mux *http.ServeMux, mw *Middleware) {
	mux.HandleFunc("/api/markets", mw.Wrap(mw.LimitFor("/api/markets", 100), api.handleList))
	mux.HandleFunc("/api/markets/orderbook/", mw.Wrap(mw.LimitFor("/api/markets/orderbook/[param]", 120), api.handleOrderBook))
	mux.HandleFunc("/api/markets/price/", mw.Wrap(mw.LimitFor("/api/markets/price/[param]", 120), api.handlePrice))
	mux.HandleFunc("/api/markets/history/", mw.Wrap(mw.LimitFor("/api/markets/history/[param]", 60), api.handleHistory))
	mux.HandleFunc("/api/markets/", mw.Wrap(mw.LimitFor("/api/markets/[param]", 60), api.handleDetail))
	mux.HandleFunc("/api/search", mw.Wrap(mw.LimitFor("/api/search", 30), api.handleSearch))
}

func (api *MarketsAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	params := models.MarketListParams{
		Order: query.Get("order"),
		Tag:   query.Get("tag"),
		Query: query.Get("q"),
	}

	if limit := query.Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			params.Limit = l
		}
	}
	if offset := query.Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			params.Offset = o
		}
	}
	params.Ascending = query.Get("ascending") == "true"
	if active := query.Get("active"); active != "" {
		b := active == "true"
		params.Active = &b
	}
	if closed := query.Get("closed"); closed != "" {
		b := closed == "true"
		params.Closed = &b
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	response, err := api.svc.List(ctx, params)
	if err != nil {
		api.fail(w, r, "Market list failed", err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (api *MarketsAPI) handleDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/api/markets/")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Market slug required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	market, err := api.svc.GetBySlug(ctx, slug)
	if err != nil {
		api.fail(w, r, "Market detail failed", err)
		return
	}
	if market == nil {
		writeError(w, http.StatusNotFound, "Market not found")
		return
	}
	writeJSON(w, http.StatusOK, market)
}

func (api *MarketsAPI) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tokenID := strings.TrimPrefix(r.URL.Path, "/api/markets/orderbook/")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	book, err := api.svc.OrderBook(ctx, tokenID)
	if err != nil {
		api.fail(w, r, "Order book fetch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (api *MarketsAPI) handlePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tokenID := strings.TrimPrefix(r.URL.Path, "/api/markets/price/")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	price, err := api.svc.Price(ctx, tokenID)
	if err != nil {
		api.fail(w, r, "Price fetch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, price)
}

func (api *MarketsAPI) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tokenID := strings.TrimPrefix(r.URL.Path, "/api/markets/history/")
	interval := r.URL.Query().Get("interval")

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	history, err := api.svc.History(ctx, tokenID, interval)
	if err != nil {
		api.fail(w, r, "Price history fetch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (api *MarketsAPI) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	response, err := api.svc.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		api.fail(w, r, "Search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (api *MarketsAPI) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var svcErr *markets.ServiceError
	if errors.As(err, &svcErr) {
		writeError(w, http.StatusBadRequest, svcErr.Message)
		return
	}

	if api.logger != nil {
		api.logger.Error(msg, logging.WithFields(map[string]interface{}{
			"path":       r.URL.Path,
			"request_id": RequestID(r.Context()),
			"error":      err.Error(),
		}))
	}
	writeError(w, http.StatusBadGateway, "Upstream request failed")
}
