package httpapi

import (
	"net/http"

	"github.com/jcarver/marketboard/internal/auth"
	"github.com/jcarver/marketboard/internal/cache"
	"github.com/jcarver/marketboard/internal/logging"
)

// limiterAdmin is the operational surface of the in-memory limiter. The
// Redis backend does not satisfy it; stats are reported unavailable then.
type limiterAdmin interface {
	Size() int
	Reset()
}

// AdminAPI exposes operational endpoints: limiter inspection and reset,
// cache flush. All routes require a bearer token.
type AdminAPI struct {
	limiter limiterAdmin
	store   cache.Store
	auth    *auth.Middleware
	logger  *logging.Logger
}

func NewAdminAPI(limiter limiterAdmin, store cache.Store, authMW *auth.Middleware, logger *logging.Logger) *AdminAPI {
	return &AdminAPI{limiter: limiter, store: store, auth: authMW, logger: logger}
}

func (api *AdminAPI) RegisterRoutes(mux *http.ServeMux, mw *Middleware) {
	mux.HandleFunc("/api/admin/ratelimit", mw.WrapUnlimited(api.auth.RequireAuth(api.handleRateLimit)))
	mux.HandleFunc("/api/admin/cache", mw.WrapUnlimited(api.auth.RequireAuth(api.handleCache)))
}

func (api *AdminAPI) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	if api.limiter == nil {
		writeError(w, http.StatusServiceUnavailable, "Limiter stats unavailable for this backend")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"trackedKeys": api.limiter.Size(),
		})
	case http.MethodDelete:
		api.limiter.Reset()
		if api.logger != nil {
			api.logger.Info("Rate limiter reset", logging.WithField("subject", auth.GetSubject(r.Context())))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (api *AdminAPI) handleCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	api.store.Flush(r.Context())
	if api.logger != nil {
		api.logger.Info("Cache flushed", logging.WithField("subject", auth.GetSubject(r.Context())))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
