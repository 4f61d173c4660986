package client

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestLister(now *time.Time) *CachedLister {
	l := NewCachedLister(NewMemoryCache())
	l.now = func() time.Time { return *now }
	l.Cache.(*MemoryCache).now = l.now
	return l
}

func TestCachedLister_FreshHitSkipsFetch(t *testing.T) {
	now := time.Now()
	l := newTestLister(&now)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte(`["a"]`), nil
	}

	if _, err := l.Load(ctx, "k", fetch); err != nil {
		t.Fatalf("first load: %v", err)
	}
	result, err := l.Load(ctx, "k", fetch)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}
	if !result.FromCache || result.Stale {
		t.Fatalf("second load should be a fresh cache hit, got %+v", result)
	}
}

func TestCachedLister_ExpiredEntryRefetches(t *testing.T) {
	now := time.Now()
	l := newTestLister(&now)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte(`["v"]`), nil
	}

	if _, err := l.Load(ctx, "k", fetch); err != nil {
		t.Fatalf("first load: %v", err)
	}

	now = now.Add(DefaultListTTL + time.Minute)
	result, err := l.Load(ctx, "k", fetch)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if calls != 2 {
		t.Fatalf("fetch calls = %d, want 2", calls)
	}
	if result.FromCache {
		t.Fatalf("reload after expiry should come from the network")
	}
}

func TestCachedLister_StaleServedOnServerFailure(t *testing.T) {
	now := time.Now()
	l := newTestLister(&now)
	ctx := context.Background()

	if _, err := l.Load(ctx, "k", func(ctx context.Context) ([]byte, error) {
		return []byte(`["cached"]`), nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	now = now.Add(DefaultListTTL + time.Minute)
	result, err := l.Load(ctx, "k", func(ctx context.Context) ([]byte, error) {
		return nil, &NetworkOrServerError{StatusCode: 503}
	})
	if err != nil {
		t.Fatalf("stale fallback should not error: %v", err)
	}
	if !result.Stale || !result.FromCache {
		t.Fatalf("expected stale cache hit, got %+v", result)
	}
	if string(result.Data) != `["cached"]` {
		t.Fatalf("stale data = %s", result.Data)
	}
}

func TestCachedLister_ValidationErrorNeverFallsBack(t *testing.T) {
	now := time.Now()
	l := newTestLister(&now)
	ctx := context.Background()

	if _, err := l.Load(ctx, "k", func(ctx context.Context) ([]byte, error) {
		return []byte(`["cached"]`), nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	now = now.Add(DefaultListTTL + time.Minute)
	_, err := l.Load(ctx, "k", func(ctx context.Context) ([]byte, error) {
		return nil, &ValidationError{StatusCode: 422, Message: "bad filter"}
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("validation error must surface, got %v", err)
	}
}

func TestCachedLister_FailureWithoutCacheSurfaces(t *testing.T) {
	now := time.Now()
	l := newTestLister(&now)

	_, err := l.Load(context.Background(), "missing", func(ctx context.Context) ([]byte, error) {
		return nil, &NetworkOrServerError{StatusCode: 500}
	})
	if !IsRetriable(err) {
		t.Fatalf("expected network/server error, got %v", err)
	}
}

func TestCachedLister_InvalidationDiscardsInFlightResponse(t *testing.T) {
	now := time.Now()
	l := newTestLister(&now)
	ctx := context.Background()

	// a mutation invalidates the key while the fetch is still running;
	// the response predates the mutation and must not be cached
	result, err := l.Load(ctx, "k", func(ctx context.Context) ([]byte, error) {
		l.Invalidate(ctx, "k")
		return []byte(`["pre-mutation"]`), nil
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(result.Data) != `["pre-mutation"]` {
		t.Fatalf("caller still gets the response data, got %s", result.Data)
	}

	calls := 0
	result, err = l.Load(ctx, "k", func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte(`["post-mutation"]`), nil
	})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if calls != 1 || result.FromCache {
		t.Fatalf("stale in-flight response leaked into the cache: %+v", result)
	}
	if string(result.Data) != `["post-mutation"]` {
		t.Fatalf("data = %s", result.Data)
	}
}

func TestCachedLister_SuccessOverwritesStaleCopy(t *testing.T) {
	now := time.Now()
	l := newTestLister(&now)
	ctx := context.Background()

	if _, err := l.Load(ctx, "k", func(ctx context.Context) ([]byte, error) {
		return []byte(`["old"]`), nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	now = now.Add(DefaultListTTL + time.Minute)
	if _, err := l.Load(ctx, "k", func(ctx context.Context) ([]byte, error) {
		return []byte(`["new"]`), nil
	}); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	result, err := l.Load(ctx, "k", func(ctx context.Context) ([]byte, error) {
		t.Fatalf("fetch should not run on a fresh hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(result.Data) != `["new"]` {
		t.Fatalf("data = %s, want [\"new\"]", result.Data)
	}
}
