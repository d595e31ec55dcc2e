package httpapi

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jcarver/marketboard/internal/logging"
	"github.com/jcarver/marketboard/internal/ratelimit"
)

type contextKey string

const requestIDKey contextKey = "httpapi.requestID"

// LimitConfig is a per-route throttling policy.
type LimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

// PerMinute is the common policy shape: n requests per 60s window.
func PerMinute(n int) LimitConfig {
	return LimitConfig{Window: time.Minute, MaxRequests: n}
}

// Middleware bundles the cross-cutting request wrappers. Wrap applies them
// in a fixed order: request ID, CORS, then rate limiting.
type Middleware struct {
	checker    ratelimit.Checker
	normalizer *RouteNormalizer
	limits     map[string]int
	logger     *logging.Logger
}

// NewMiddleware creates the wrapper set. limits maps route templates to
// requests-per-minute overrides; routes not present use their defaults.
func NewMiddleware(checker ratelimit.Checker, normalizer *RouteNormalizer, limits map[string]int, logger *logging.Logger) *Middleware {
	return &Middleware{checker: checker, normalizer: normalizer, limits: limits, logger: logger}
}

// LimitFor returns the policy for a route template, honoring a configured
// override and falling back to the given requests per minute.
func (m *Middleware) LimitFor(template string, perMinute int) LimitConfig {
	if n, ok := m.limits[template]; ok && n > 0 {
		perMinute = n
	}
	return PerMinute(perMinute)
}

func (m *Middleware) Wrap(limit LimitConfig, next http.HandlerFunc) http.HandlerFunc {
	return m.requestID(m.cors(m.rateLimit(limit, next)))
}

// WrapUnlimited applies everything except throttling (health checks, admin).
func (m *Middleware) WrapUnlimited(next http.HandlerFunc) http.HandlerFunc {
	return m.requestID(m.cors(next))
}

func (m *Middleware) requestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	}
}

func (m *Middleware) cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (m *Middleware) rateLimit(limit LimitConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := m.normalizer.Normalize(r.URL.Path) + ":" + ClientIP(r)
		decision := m.checker.Check(key, limit.Window, limit.MaxRequests)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", decision.Reset.UTC().Format(time.RFC3339))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(time.Until(decision.Reset).Seconds()))
			if retryAfter < 0 {
				retryAfter = 0
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			if m.logger != nil {
				m.logger.Warn("Request throttled", logging.WithFields(map[string]interface{}{
					"key":        key,
					"limit":      decision.Limit,
					"request_id": RequestID(r.Context()),
				}))
			}

			writeJSON(w, http.StatusTooManyRequests, throttledBody{
				Success: false,
				Error:   "Too many requests. Please try again later.",
				RateLimit: throttledMeta{
					Limit:     decision.Limit,
					Remaining: 0,
					Reset:     decision.Reset.UTC().Format(time.RFC3339),
				},
			})
			return
		}

		next(w, r)
	}
}

type throttledBody struct {
	Success   bool          `json:"success"`
	Error     string        `json:"error"`
	RateLimit throttledMeta `json:"rateLimit"`
}

type throttledMeta struct {
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Reset     string `json:"reset"`
}

// RequestID returns the request's correlation ID, if the middleware ran.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
