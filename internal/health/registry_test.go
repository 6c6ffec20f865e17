package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCheckAll(t *testing.T) {
	r := NewRegistry(50 * time.Millisecond)
	r.Register("store", CheckerFunc(func(context.Context) error { return nil }))
	r.Register("cache", CheckerFunc(func(context.Context) error { return errors.New("connection refused") }))
	r.Register("feed", CheckerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	results := r.CheckAll(context.Background())
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results["store"] != nil {
		t.Errorf("store: %v", results["store"])
	}
	if results["cache"] == nil {
		t.Error("cache: expected error")
	}
	if !errors.Is(results["feed"], context.DeadlineExceeded) {
		t.Errorf("feed: %v, want deadline exceeded", results["feed"])
	}
	if Healthy(results) {
		t.Error("Healthy() = true with failing checks")
	}
}

func TestRegisterAndList(t *testing.T) {
	r := NewRegistry(0)
	ok := CheckerFunc(func(context.Context) error { return nil })
	r.Register("store", ok)
	r.Register("cache", ok)
	r.Unregister("store")

	names := r.List()
	if len(names) != 1 || names[0] != "cache" {
		t.Errorf("List() = %v", names)
	}
	if !Healthy(r.CheckAll(context.Background())) {
		t.Error("expected healthy")
	}
}
