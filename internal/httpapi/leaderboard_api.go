package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jcarver/marketboard/internal/leaderboard"
	"github.com/jcarver/marketboard/internal/logging"
)

// LeaderboardAPI handles trader ranking routes.
type LeaderboardAPI struct {
	svc    *leaderboard.Service
	logger *logging.Logger
}

func NewLeaderboardAPI(svc *leaderboard.Service, logger *logging.Logger) *LeaderboardAPI {
	return &LeaderboardAPI{svc: svc, logger: logger}
}

func (api *LeaderboardAPI) RegisterRoutes(mux *http.ServeMux, mw *Middleware) {
	mux.HandleFunc("/api/leaderboard", mw.Wrap(mw.LimitFor("/api/leaderboard", 30), api.handleGet))
}

func (api *LeaderboardAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 {
			limit = l
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	response, err := api.svc.Get(ctx, query.Get("window"), query.Get("rankType"), limit)
	if err != nil {
		var svcErr *leaderboard.ServiceError
		if errors.As(err, &svcErr) {
			writeError(w, http.StatusBadRequest, svcErr.Message)
			return
		}
		if api.logger != nil {
			api.logger.Error("Leaderboard fetch failed", logging.WithFields(map[string]interface{}{
				"request_id": RequestID(r.Context()),
				"error":      err.Error(),
			}))
		}
		writeError(w, http.StatusBadGateway, "Upstream request failed")
		return
	}
	writeJSON(w, http.StatusOK, response)
}
