package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/cesargomez89/axiolite/internal/domain"
)

type memCache struct {
	data map[string]*domain.Metadata
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: map[string]*domain.Metadata{}}
}

func (m *memCache) GetMetadata(source, query string) (*domain.Metadata, error) {
	return m.data[source+"/"+query], nil
}

func (m *memCache) PutMetadata(source, query string, meta *domain.Metadata, ttl time.Duration) error {
	m.sets++
	m.data[source+"/"+query] = meta
	return nil
}

type countingResolver struct {
	meta  *domain.Metadata
	err   error
	calls int
}

func (r *countingResolver) Resolve(ctx context.Context, query string, source Source) (*domain.Metadata, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.meta, nil
}

func TestCachedResolverHitSkipsInner(t *testing.T) {
	inner := &countingResolver{meta: meta("song")}
	cache := newMemCache()
	c := NewCachedResolver(inner, cache, time.Hour)

	first, err := c.Resolve(context.Background(), "q", SourceAuto)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := c.Resolve(context.Background(), "q", SourceAuto)
	if err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("Expected 1 inner call, got %d", inner.calls)
	}
	if first.Title != second.Title || first.SourceURL != second.SourceURL {
		t.Error("Cached result differs from original")
	}
}

func TestCachedResolverKeyIncludesSource(t *testing.T) {
	inner := &countingResolver{meta: meta("song")}
	c := NewCachedResolver(inner, newMemCache(), time.Hour)

	if _, err := c.Resolve(context.Background(), "q", SourceSpotify); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Resolve(context.Background(), "q", SourceYouTube); err != nil {
		t.Fatal(err)
	}

	if inner.calls != 2 {
		t.Errorf("Expected distinct cache entries per source, got %d inner calls", inner.calls)
	}
}

func TestCachedResolverDoesNotCacheMisses(t *testing.T) {
	inner := &countingResolver{err: domain.ErrNotFound}
	cache := newMemCache()
	c := NewCachedResolver(inner, cache, time.Hour)

	for i := 0; i < 2; i++ {
		if _, err := c.Resolve(context.Background(), "q", SourceAuto); err == nil {
			t.Fatal("Expected error")
		}
	}

	if inner.calls != 2 {
		t.Errorf("Expected misses not cached, got %d inner calls", inner.calls)
	}
	if cache.sets != 0 {
		t.Errorf("Expected no cache writes, got %d", cache.sets)
	}
}
