package client

import (
	"context"
	"sync"
	"time"
)

// DefaultListTTL is how long a cached list stays fresh. List endpoints
// change rarely enough that a day-old copy is acceptable offline.
const DefaultListTTL = 24 * time.Hour

type cacheEntry struct {
	data      []byte
	fetchedAt time.Time
}

// ListCache stores serialized list responses keyed by endpoint+params.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, time.Time, bool)
	Set(ctx context.Context, key string, data []byte, fetchedAt time.Time)
	Invalidate(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// MemoryCache is the default in-process ListCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: map[string]cacheEntry{},
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return entry.data, entry.fetchedAt, true
}

func (m *MemoryCache) Set(ctx context.Context, key string, data []byte, fetchedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cacheEntry{data: data, fetchedAt: fetchedAt}
}

func (m *MemoryCache) Invalidate(ctx context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *MemoryCache) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string]cacheEntry{}
}

// CachedLister wraps a fetch function with read-through caching:
//   - fresh hit (< TTL): serve the cache, no network call
//   - miss or expired: fetch, overwrite the cache on success
//   - fetch fails with a network/server error: serve the stale copy
//     when one exists, otherwise surface the error
//
// Validation errors never fall back to the cache; the request itself
// was wrong and a stale answer would hide that.
type CachedLister struct {
	Cache ListCache
	TTL   time.Duration
	now   func() time.Time

	mu  sync.Mutex
	gen map[string]uint64
}

func NewCachedLister(cache ListCache) *CachedLister {
	return &CachedLister{Cache: cache, TTL: DefaultListTTL, now: time.Now}
}

func (l *CachedLister) generation(key string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen[key]
}

// Invalidate drops the cached copy and bumps the key's generation. A
// fetch that was already in flight when the invalidation happened
// carries data from before the mutation; the generation check in Load
// keeps it from re-populating the cache.
func (l *CachedLister) Invalidate(ctx context.Context, key string) {
	l.mu.Lock()
	if l.gen == nil {
		l.gen = map[string]uint64{}
	}
	l.gen[key]++
	l.mu.Unlock()
	l.Cache.Invalidate(ctx, key)
}

// ListResult tells the caller where the data came from.
type ListResult struct {
	Data      []byte
	FromCache bool
	Stale     bool
	FetchedAt time.Time
}

func (l *CachedLister) Load(ctx context.Context, key string, fetch func(ctx context.Context) ([]byte, error)) (ListResult, error) {
	now := l.nowFn()

	if data, fetchedAt, ok := l.Cache.Get(ctx, key); ok {
		if now.Sub(fetchedAt) < l.ttl() {
			return ListResult{Data: data, FromCache: true, FetchedAt: fetchedAt}, nil
		}
	}

	gen := l.generation(key)
	data, err := fetch(ctx)
	if err == nil {
		if l.generation(key) == gen {
			l.Cache.Set(ctx, key, data, now)
		}
		return ListResult{Data: data, FetchedAt: now}, nil
	}

	if IsRetriable(err) {
		if stale, fetchedAt, ok := l.Cache.Get(ctx, key); ok {
			return ListResult{Data: stale, FromCache: true, Stale: true, FetchedAt: fetchedAt}, nil
		}
	}
	return ListResult{}, err
}

func (l *CachedLister) ttl() time.Duration {
	if l.TTL > 0 {
		return l.TTL
	}
	return DefaultListTTL
}

func (l *CachedLister) nowFn() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}
