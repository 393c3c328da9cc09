package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/event-portal/internal/application"
)

// MemoryStore keeps report payloads and rate-limit windows in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	now      func() time.Time
	limit    int
	window   time.Duration
	entries  *lru.Cache[string, memoryEntry]
	counters map[string]windowCounter
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

type windowCounter struct {
	count     int
	expiresAt time.Time
}

var _ application.ReportCache = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store. now defaults to time.Now.
func NewMemoryStore(maxEntries, limit int, window time.Duration, now func() time.Time) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	limit, window = normalizeLimit(limit, window)
	entries, err := lru.New[string, memoryEntry](maxEntries)
	if err != nil {
		panic(fmt.Sprintf("cache: create lru: %v", err))
	}
	return &MemoryStore{
		now:      now,
		limit:    limit,
		window:   window,
		entries:  entries,
		counters: make(map[string]windowCounter),
	}
}

// Get returns a copy of the payload stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.entries.Remove(key)
		return nil, false, nil
	}
	return cloneBytes(entry.payload), true, nil
}

// Set stores a copy of payload, evicting the least recently used entry when
// full. A non-positive ttl never expires.
func (s *MemoryStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	var expiry time.Time
	if ttl > 0 {
		expiry = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanupLocked()
	s.entries.Add(key, memoryEntry{payload: cloneBytes(payload), expiresAt: expiry})
	return nil
}

// Allow counts one request for key within a fixed window.
func (s *MemoryStore) Allow(ctx context.Context, key string) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.counters[key]
	if !ok || !now.Before(counter.expiresAt) {
		counter = windowCounter{expiresAt: now.Add(s.window)}
	}
	counter.count++
	s.counters[key] = counter

	if counter.count <= s.limit {
		return nil
	}
	return &application.RateLimitError{RetryAfter: counter.expiresAt.Sub(now)}
}

func (s *MemoryStore) cleanupLocked() {
	now := s.now()
	for _, key := range s.entries.Keys() {
		entry, ok := s.entries.Peek(key)
		if ok && !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			s.entries.Remove(key)
		}
	}
	for key, counter := range s.counters {
		if !now.Before(counter.expiresAt) {
			delete(s.counters, key)
		}
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
