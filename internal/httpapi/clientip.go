package httpapi

import (
	"net/http"
	"strings"
)

// anonymousClient is the sentinel identifier used when no client address
// can be derived; all such requests share one bucket.
const anonymousClient = "anonymous"

// ClientIP derives a best-effort client identifier from proxy headers, in
// priority order. The value carries no uniqueness guarantee: clients behind
// one proxy collapse into one bucket, and requests with no proxy headers at
// all share the anonymous bucket.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	return anonymousClient
}
