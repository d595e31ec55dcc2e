package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory()
	defer c.Stop()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("Get on empty cache should miss")
	}

	c.Set(ctx, "k", []byte(`{"a":1}`), time.Minute)
	value, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(value) != `{"a":1}` {
		t.Fatalf("value = %s, want {\"a\":1}", value)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory()
	defer c.Stop()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), -time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expired entry should miss")
	}

	c.removeExpired()
	if c.Size() != 0 {
		t.Fatalf("Size() = %d, want 0 after removeExpired", c.Size())
	}
}

func TestMemoryDeleteAndFlush(t *testing.T) {
	c := NewMemory()
	defer c.Stop()
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)

	c.Delete(ctx, "a")
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("deleted entry should miss")
	}
	if _, ok := c.Get(ctx, "b"); !ok {
		t.Fatal("other entry should survive Delete")
	}

	c.Flush(ctx)
	if c.Size() != 0 {
		t.Fatalf("Size() = %d, want 0 after Flush", c.Size())
	}
}
