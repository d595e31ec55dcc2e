package httpapi

import (
	"net/http"
	"time"

	"github.com/jcarver/marketboard/internal/auth"
	"github.com/jcarver/marketboard/internal/cache"
	"github.com/jcarver/marketboard/internal/events"
	"github.com/jcarver/marketboard/internal/leaderboard"
	"github.com/jcarver/marketboard/internal/logging"
	"github.com/jcarver/marketboard/internal/markets"
	"github.com/jcarver/marketboard/internal/portfolio"
	"github.com/jcarver/marketboard/internal/ratelimit"
)

// RouterDeps carries everything the router needs wired in.
type RouterDeps struct {
	Markets     *markets.Service
	Events      *events.Service
	Leaderboard *leaderboard.Service
	Portfolio   *portfolio.Service

	Checker      ratelimit.Checker
	LimiterAdmin limiterAdmin
	Store        cache.Store
	RouteLimits  map[string]int
	AdminSecret  string
	Logger       *logging.Logger
}

// NewRouter assembles the full route table with middleware applied.
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	mw := NewMiddleware(deps.Checker, DefaultNormalizer(), deps.RouteLimits, deps.Logger)
	authMW := auth.NewMiddleware(deps.AdminSecret, deps.Logger)

	NewMarketsAPI(deps.Markets, deps.Logger).RegisterRoutes(mux, mw)
	NewEventsAPI(deps.Events, deps.Logger).RegisterRoutes(mux, mw)
	NewLeaderboardAPI(deps.Leaderboard, deps.Logger).RegisterRoutes(mux, mw)
	NewPortfolioAPI(deps.Portfolio, deps.Logger).RegisterRoutes(mux, mw)
	NewAdminAPI(deps.LimiterAdmin, deps.Store, authMW, deps.Logger).RegisterRoutes(mux, mw)

	started := time.Now()
	mux.HandleFunc("/api/health", mw.WrapUnlimited(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"uptime": time.Since(started).Round(time.Second).String(),
		})
	}))

	return mux
}
