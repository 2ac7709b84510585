package protect

import (
	"context"
	"testing"
	"time"
)

func TestLocalLimiterBucket(t *testing.T) {
	l := NewLocalLimiter(20, 10, 10*time.Second)
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
		if !ok {
			t.Fatalf("request %d: expected allow while bucket has tokens", i)
		}
	}

	if ok, _ := l.Allow(ctx, "10.0.0.1"); ok {
		t.Fatal("expected request 21 to be denied with the bucket drained")
	}

	// A different client has its own bucket.
	if ok, _ := l.Allow(ctx, "10.0.0.2"); !ok {
		t.Fatal("expected a fresh client to be allowed")
	}
}

func TestLocalLimiterCleanup(t *testing.T) {
	l := NewLocalLimiter(1, 1, time.Second)
	_, _ = l.Allow(context.Background(), "10.0.0.1")

	if len(l.visitors) != 1 {
		t.Fatalf("expected 1 tracked visitor, got %d", len(l.visitors))
	}

	l.Cleanup(time.Hour)
	if len(l.visitors) != 1 {
		t.Fatal("cleanup evicted a recently seen visitor")
	}

	l.Cleanup(-time.Millisecond)
	if len(l.visitors) != 0 {
		t.Fatalf("expected all visitors evicted, got %d", len(l.visitors))
	}
}
