package httpapi

import "strings"

const (
	apiPrefix   = "/api/"
	placeholder = "[param]"
)

// RouteNormalizer maps concrete request paths to stable route templates so
// requests that differ only by resource identifier share one throttling
// bucket, while static sibling routes keep independent buckets.
type RouteNormalizer struct {
	// dynamicParents lists parents whose final child segment is always an
	// identifier.
	dynamicParents map[string]bool
	// mixedParents lists parents with both static children and identifier
	// children; anything not in the allow-list is treated as an identifier.
	mixedParents map[string]map[string]bool
}

// DefaultNormalizer covers the routes this service exposes.
func DefaultNormalizer() *RouteNormalizer {
	return &RouteNormalizer{
		dynamicParents: map[string]bool{
			"/api/markets/orderbook":   true,
			"/api/markets/price":       true,
			"/api/markets/history":     true,
			"/api/portfolio/positions": true,
			"/api/portfolio/activity":  true,
		},
		mixedParents: map[string]map[string]bool{
			"/api/markets": {
				"orderbook": true,
				"price":     true,
				"history":   true,
			},
			"/api/events": {
				"list": true,
			},
			"/api/portfolio": {
				"positions": true,
				"activity":  true,
			},
		},
	}
}

// Normalize is a pure function of the path and the two configured sets.
// Paths outside the API prefix, and paths too short to have a parent/child
// split, are returned unchanged.
func (n *RouteNormalizer) Normalize(path string) string {
	if !strings.HasPrefix(path, apiPrefix) {
		return path
	}

	trimmed := strings.TrimSuffix(path, "/")
	segments := strings.Split(strings.TrimPrefix(trimmed, "/"), "/")
	if len(segments) < 3 {
		return path
	}

	parent := "/" + strings.Join(segments[:len(segments)-1], "/")
	last := segments[len(segments)-1]

	if n.dynamicParents[parent] {
		return parent + "/" + placeholder
	}
	if statics, ok := n.mixedParents[parent]; ok && !statics[last] {
		return parent + "/" + placeholder
	}
	return path
}
