package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 60
)

type entry struct {
	count   int
	window  time.Duration
	resetAt time.Time
}

// Limiter is an in-memory fixed-window rate limiter. Entries are created
// lazily per key and reset in place when their window rolls over. A
// background sweep drops entries whose window expired long enough ago that
// the next Check would reset them anyway.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
	stopCh  chan struct{}
}

func New() *Limiter {
	l := NewWithClock(time.Now)
	go l.sweep()
	return l
}

// NewWithClock creates a limiter with an injected time source and no sweep
// goroutine. Tests use it to advance time deterministically.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

func (l *Limiter) Check(key string, window time.Duration, max int) Decision {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxRequests
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{count: 1, window: window, resetAt: now.Add(window)}
		l.entries[key] = e
		return Decision{Allowed: true, Limit: max, Remaining: max - 1, Reset: e.resetAt}
	}

	e.count++
	remaining := max - e.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   e.count <= max,
		Limit:     max,
		Remaining: remaining,
		Reset:     e.resetAt,
	}
}

// Size reports the number of tracked keys.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset drops all tracked keys.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]*entry)
}

func (l *Limiter) Stop() {
	close(l.stopCh)
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.removeStale()
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) removeStale() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		// Entries linger one full window past expiry; the next Check for
		// the key resets them regardless.
		if now.After(e.resetAt.Add(e.window)) {
			delete(l.entries, key)
		}
	}
}

// Ensure Limiter implements Checker interface
var _ Checker = (*Limiter)(nil)
