package ratelimit

import "time"

// Decision is the outcome of one admission check, with the quota metadata
// callers surface in rate-limit headers.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Checker defines the interface for rate limiting backends.
// This allows for both in-memory (single instance) and distributed (Redis)
// implementations behind the same middleware.
type Checker interface {
	// Check records a request for key against a fixed window of the given
	// length and capacity, and reports whether it is within quota. It never
	// fails; backends that cannot reach their store fail open.
	Check(key string, window time.Duration, max int) Decision
}
