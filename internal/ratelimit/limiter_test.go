package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewWithClock(clock.now), clock
}

func TestCheck_AllowsUpToLimitThenDenies(t *testing.T) {
	l, _ := newTestLimiter()

	const max = 5
	for i := 1; i <= max; i++ {
		d := l.Check("k", time.Minute, max)
		if !d.Allowed {
			t.Fatalf("call %d: Allowed = false, want true", i)
		}
	}

	d := l.Check("k", time.Minute, max)
	if d.Allowed {
		t.Fatalf("call %d: Allowed = true, want false", max+1)
	}
	if d.Remaining != 0 {
		t.Fatalf("denied Remaining = %d, want 0", d.Remaining)
	}
}

func TestCheck_RemainingNeverNegative(t *testing.T) {
	l, _ := newTestLimiter()

	const max = 3
	for i := 1; i <= 10; i++ {
		d := l.Check("k", time.Minute, max)
		if d.Remaining < 0 {
			t.Fatalf("call %d: Remaining = %d, want >= 0", i, d.Remaining)
		}
		want := max - i
		if want < 0 {
			want = 0
		}
		if d.Remaining != want {
			t.Fatalf("call %d: Remaining = %d, want %d", i, d.Remaining, want)
		}
	}
}

func TestCheck_WindowRolloverResetsCount(t *testing.T) {
	l, clock := newTestLimiter()

	const max = 2
	l.Check("k", time.Minute, max)
	l.Check("k", time.Minute, max)
	if d := l.Check("k", time.Minute, max); d.Allowed {
		t.Fatal("expected denial before rollover")
	}

	clock.advance(time.Minute)

	d := l.Check("k", time.Minute, max)
	if !d.Allowed {
		t.Fatal("expected allow after window rollover")
	}
	if d.Remaining != max-1 {
		t.Fatalf("Remaining after rollover = %d, want %d", d.Remaining, max-1)
	}
	if want := clock.t.Add(time.Minute); !d.Reset.Equal(want) {
		t.Fatalf("Reset = %v, want %v", d.Reset, want)
	}
}

func TestCheck_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter()

	const max = 2
	for i := 0; i < max+3; i++ {
		l.Check("a", time.Minute, max)
	}
	if d := l.Check("a", time.Minute, max); d.Allowed {
		t.Fatal("key a should be exhausted")
	}

	d := l.Check("b", time.Minute, max)
	if !d.Allowed {
		t.Fatal("key b should be unaffected by key a")
	}
	if d.Remaining != max-1 {
		t.Fatalf("key b Remaining = %d, want %d", d.Remaining, max-1)
	}
}

func TestCheck_FourCallScenario(t *testing.T) {
	l, clock := newTestLimiter()
	reset := clock.t.Add(time.Minute)

	want := []struct {
		allowed   bool
		remaining int
	}{
		{true, 2},
		{true, 1},
		{true, 0},
		{false, 0},
	}

	for i, w := range want {
		d := l.Check("k", 60000*time.Millisecond, 3)
		if d.Allowed != w.allowed || d.Remaining != w.remaining {
			t.Fatalf("call %d: got (allowed=%v remaining=%d), want (allowed=%v remaining=%d)",
				i+1, d.Allowed, d.Remaining, w.allowed, w.remaining)
		}
		if d.Limit != 3 {
			t.Fatalf("call %d: Limit = %d, want 3", i+1, d.Limit)
		}
		if !d.Reset.Equal(reset) {
			t.Fatalf("call %d: Reset = %v, want %v", i+1, d.Reset, reset)
		}
	}
}

func TestCheck_DefaultsApplied(t *testing.T) {
	l, _ := newTestLimiter()

	d := l.Check("k", 0, 0)
	if !d.Allowed {
		t.Fatal("first call with defaults should be allowed")
	}
	if d.Limit != DefaultMaxRequests {
		t.Fatalf("Limit = %d, want %d", d.Limit, DefaultMaxRequests)
	}
	if d.Remaining != DefaultMaxRequests-1 {
		t.Fatalf("Remaining = %d, want %d", d.Remaining, DefaultMaxRequests-1)
	}
}

func TestRemoveStale(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 4; i++ {
		l.Check(fmt.Sprintf("k%d", i), time.Minute, 10)
	}
	if l.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", l.Size())
	}

	// Not yet one full window past expiry.
	clock.advance(90 * time.Second)
	l.removeStale()
	if l.Size() != 4 {
		t.Fatalf("Size() after 90s = %d, want 4", l.Size())
	}

	clock.advance(45 * time.Second)
	l.removeStale()
	if l.Size() != 0 {
		t.Fatalf("Size() after expiry = %d, want 0", l.Size())
	}
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter()

	l.Check("k", time.Minute, 1)
	l.Check("k", time.Minute, 1)
	l.Reset()

	d := l.Check("k", time.Minute, 1)
	if !d.Allowed {
		t.Fatal("expected allow after Reset")
	}
	if l.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", l.Size())
	}
}
