package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	if err := s.Set(ctx, "reset:abc", "u1", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "forever", "x", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if v, err := s.Get(ctx, "reset:abc"); err != nil || v != "u1" {
		t.Errorf("Get = %q, %v; want u1", v, err)
	}

	now = now.Add(time.Minute)

	if _, err := s.Get(ctx, "reset:abc"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after ttl, got %v", err)
	}
	if v, err := s.Get(ctx, "forever"); err != nil || v != "x" {
		t.Errorf("key without ttl expired: %q, %v", v, err)
	}
}

func TestMemoryStoreDel(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Set(ctx, "a", "1", 0)
	s.Set(ctx, "b", "2", 0)

	if err := s.Del(ctx, "a", "missing"); err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrMiss) {
		t.Errorf("a should be deleted, got %v", err)
	}
	if _, err := s.Get(ctx, "b"); err != nil {
		t.Errorf("b should remain, got %v", err)
	}
}
