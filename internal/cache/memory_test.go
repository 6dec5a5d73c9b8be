package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	val, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("Get() = %q, want %q", val, "value1")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()

	_, err := c.Get(context.Background(), "missing")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.Set(ctx, "ephemeral", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := c.Get(ctx, "ephemeral"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}
	if has, _ := c.Has(ctx, "ephemeral"); has {
		t.Error("Has() = true after expiry")
	}
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("deleted key still present")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := c.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Error("key survived Clear()")
	}
}

func TestMemoryCacheValueIsolation(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	original := []byte("abc")
	_ = c.Set(ctx, "iso", original, 0)
	original[0] = 'X'

	val, err := c.Get(ctx, "iso")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(val) != "abc" {
		t.Errorf("cached value mutated externally: %q", val)
	}

	val[0] = 'Y'
	again, _ := c.Get(ctx, "iso")
	if string(again) != "abc" {
		t.Errorf("returned value mutated cache: %q", again)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	_ = c.Close()

	if _, err := c.Get(context.Background(), "x"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get() after Close error = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(context.Background(), "x", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set() after Close error = %v, want ErrCacheClosed", err)
	}
	// Double close must not panic.
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestMemoryCacheStats(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "s", []byte("v"), 0)
	_, _ = c.Get(ctx, "s")
	_, _ = c.Get(ctx, "nope")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 || stats.Items != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 1 set, 1 item", stats)
	}

	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 || s.Sets != 0 {
		t.Errorf("Stats() after reset = %+v", s)
	}
}
