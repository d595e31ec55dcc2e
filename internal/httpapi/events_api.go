package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jcarver/marketboard/internal/events"
	"github.com/jcarver/marketboard/internal/logging"
	"github.com/jcarver/marketboard/internal/models"
)

// EventsAPI handles event listing, detail and tag routes.
type EventsAPI struct {
	svc    *events.Service
	logger *logging.Logger
}

func NewEventsAPI(svc *events.Service, logger *logging.Logger) *EventsAPI {
	return &EventsAPI{svc: svc, logger: logger}
}

func (api *EventsAPI) RegisterRoutes(mux *http.ServeMux, mw *Middleware) {
	mux.HandleFunc("/api/events", mw.Wrap(mw.LimitFor("/api/events", 100), api.handleList))
	mux.HandleFunc("/api/events/list", mw.Wrap(mw.LimitFor("/api/events/list", 60), api.handleFeatured))
	mux.HandleFunc("/api/events/", mw.Wrap(mw.LimitFor("/api/events/[param]", 60), api.handleDetail))
	mux.HandleFunc("/api/tags", mw.Wrap(mw.LimitFor("/api/tags", 60), api.handleTags))
}

func (api *EventsAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	params := models.EventListParams{
		Order: query.Get("order"),
		Tag:   query.Get("tag"),
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
		api.fail(w, r, "Event list failed", err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (api *EventsAPI) handleFeatured(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	response, err := api.svc.Featured(ctx)
	if err != nil {
		api.fail(w, r, "Featured events failed", err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (api *EventsAPI) handleDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/events/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Event ID required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	event, err := api.svc.Get(ctx, id)
	if err != nil {
		api.fail(w, r, "Event detail failed", err)
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (api *EventsAPI) handleTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	tags, err := api.svc.Tags(ctx)
	if err != nil {
		api.fail(w, r, "Tag list failed", err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (api *EventsAPI) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var svcErr *events.ServiceError
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
