package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/event-portal/internal/application"
)

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(4, 1, time.Minute, nil)

	original := []byte("report")
	if err := store.Set(ctx, "key", original, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	original[0] = 'X'

	cached, found, err := store.Get(ctx, "key")
	if err != nil || !found {
		t.Fatalf("expected cache hit, got found=%v err=%v", found, err)
	}
	if string(cached) != "report" {
		t.Fatalf("expected stored copy, got %s", cached)
	}

	cached[0] = 'Y'
	again, _, _ := store.Get(ctx, "key")
	if string(again) != "report" {
		t.Fatalf("expected independent copy, got %s", again)
	}
}

func TestMemoryStoreExpiresEntries(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore(4, 1, time.Minute, func() time.Time { return current })

	_ = store.Set(ctx, "key", []byte("v"), time.Second)
	if _, found, _ := store.Get(ctx, "key"); !found {
		t.Fatal("expected cache hit before expiry")
	}

	current = current.Add(2 * time.Second)
	if _, found, _ := store.Get(ctx, "key"); found {
		t.Fatal("expected cache entry to expire")
	}
}

func TestMemoryStoreEvictsWhenFull(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(1, 1, time.Minute, nil)

	_ = store.Set(ctx, "a", []byte("1"), time.Minute)
	_ = store.Set(ctx, "b", []byte("2"), time.Minute)

	if _, found, _ := store.Get(ctx, "a"); found {
		t.Fatal("expected first entry to be evicted")
	}
	if _, found, _ := store.Get(ctx, "b"); !found {
		t.Fatal("expected newest entry to remain")
	}
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2, 1, time.Minute, nil)

	_ = store.Set(ctx, "a", []byte("1"), time.Minute)
	_ = store.Set(ctx, "b", []byte("2"), time.Minute)
	if _, found, _ := store.Get(ctx, "a"); !found {
		t.Fatal("expected a to be cached")
	}
	_ = store.Set(ctx, "c", []byte("3"), time.Minute)

	if _, found, _ := store.Get(ctx, "b"); found {
		t.Fatal("expected b to be evicted as least recently used")
	}
	if _, found, _ := store.Get(ctx, "a"); !found {
		t.Fatal("expected recently read entry to survive")
	}
}

func TestMemoryStoreAllowWindows(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore(4, 2, time.Minute, func() time.Time { return current })

	for i := 0; i < 2; i++ {
		if err := store.Allow(ctx, "ip"); err != nil {
			t.Fatalf("request %d: unexpected error %v", i+1, err)
		}
	}

	current = current.Add(15 * time.Second)
	err := store.Allow(ctx, "ip")
	var rateErr *application.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rateErr.RetryAfter != 45*time.Second {
		t.Fatalf("expected 45s retry, got %v", rateErr.RetryAfter)
	}
	if rateErr.Error() != "Too many requests, retry after 45s" {
		t.Fatalf("unexpected message %q", rateErr.Error())
	}

	current = current.Add(time.Minute)
	if err := store.Allow(ctx, "ip"); err != nil {
		t.Fatalf("expected new window, got %v", err)
	}
}
