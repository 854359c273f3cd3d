package resolver

import (
	"context"
	"time"

	"github.com/cesargomez89/axiolite/internal/domain"
)

// Cache stores resolved track metadata keyed by source and query.
type Cache interface {
	GetMetadata(source, query string) (*domain.Metadata, error)
	PutMetadata(source, query string, meta *domain.Metadata, ttl time.Duration) error
}

// CachedResolver memoizes successful resolutions. Misses and failures are
// never cached.
type CachedResolver struct {
	inner    TrackResolver
	cache    Cache
	cacheTTL time.Duration
}

func NewCachedResolver(inner TrackResolver, cache Cache, cacheTTL time.Duration) *CachedResolver {
	return &CachedResolver{
		inner:    inner,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, query string, source Source) (*domain.Metadata, error) {
	if meta, err := c.cache.GetMetadata(string(source), query); err == nil && meta.Valid() {
		return meta, nil
	}

	meta, err := c.inner.Resolve(ctx, query, source)
	if err != nil {
		return nil, err
	}

	_ = c.cache.PutMetadata(string(source), query, meta, c.cacheTTL)
	return meta, nil
}

var _ TrackResolver = (*CachedResolver)(nil)
