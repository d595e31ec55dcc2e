package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jcarver/marketboard/internal/logging"
	"github.com/jcarver/marketboard/internal/portfolio"
)

// PortfolioAPI handles wallet position and activity routes.
type PortfolioAPI struct {
	svc    *portfolio.Service
	logger *logging.Logger
}

func NewPortfolioAPI(svc *portfolio.Service, logger *logging.Logger) *PortfolioAPI {
	return &PortfolioAPI{svc: svc, logger: logger}
}

func (api *PortfolioAPI) RegisterRoutes(mux *http.ServeMux, mw *Middleware) {
	mux.HandleFunc("/api/portfolio/positions/", mw.Wrap(mw.LimitFor("/api/portfolio/positions/[param]", 60), api.handlePositions))
	mux.HandleFunc("/api/portfolio/activity/", mw.Wrap(mw.LimitFor("/api/portfolio/activity/[param]", 60), api.handleActivity))
	mux.HandleFunc("/api/portfolio/", mw.Wrap(mw.LimitFor("/api/portfolio/[param]", 30), api.handleGet))
}

func (api *PortfolioAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	address := strings.TrimPrefix(r.URL.Path, "/api/portfolio/")

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	result, err := api.svc.Get(ctx, address)
	if err != nil {
		api.fail(w, r, "Portfolio fetch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *PortfolioAPI) handlePositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	address := strings.TrimPrefix(r.URL.Path, "/api/portfolio/positions/")

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	positions, err := api.svc.Positions(ctx, address)
	if err != nil {
		api.fail(w, r, "Positions fetch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

func (api *PortfolioAPI) handleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	address := strings.TrimPrefix(r.URL.Path, "/api/portfolio/activity/")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 {
			limit = l
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	activity, err := api.svc.Activity(ctx, address, limit)
	if err != nil {
		api.fail(w, r, "Activity fetch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func (api *PortfolioAPI) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var svcErr *portfolio.ServiceError
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
