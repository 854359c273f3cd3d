// Package resolver turns a free-text query into track metadata plus a source
// locator, trying one or more search backends in a fixed priority order.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/logger"
)

// Source selects which backend handles a query.
type Source string

const (
	SourceAuto    Source = "auto"
	SourceSpotify Source = "spotify"
	SourceYouTube Source = "youtube"
)

// ParseSource validates a client-supplied source hint. Empty means auto.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case "":
		return SourceAuto, nil
	case SourceAuto, SourceSpotify, SourceYouTube:
		return Source(s), nil
	}
	return "", fmt.Errorf("%w: unknown source %q", domain.ErrInvalidRequest, s)
}

// Backend is a single external search source. Resolve returns ErrNoMatch when
// the backend was reached but found nothing usable; any other error means the
// backend itself failed.
type Backend interface {
	Name() string
	Resolve(ctx context.Context, query string) (*domain.Metadata, error)
}

// TrackResolver is what the orchestrator consumes; implemented by Resolver
// and CachedResolver.
type TrackResolver interface {
	Resolve(ctx context.Context, query string, source Source) (*domain.Metadata, error)
}

type Resolver struct {
	backends []Backend
	byName   map[string]Backend
	logger   *logger.Logger
}

// New creates a resolver trying backends in the given priority order when the
// source hint is auto.
func New(log *logger.Logger, backends ...Backend) *Resolver {
	byName := make(map[string]Backend, len(backends))
	for _, b := range backends {
		byName[b.Name()] = b
	}
	return &Resolver{
		backends: backends,
		byName:   byName,
		logger:   log.WithComponent("resolver"),
	}
}

// Resolve returns the first non-empty, well-formed result. With a specific
// source only that backend is queried. With auto, ErrNotFound means every
// reachable backend answered and none matched; if all attempts failed
// outright the last backend error propagates instead, so callers can tell
// "nothing matched" from "the backends are down".
func (r *Resolver) Resolve(ctx context.Context, query string, source Source) (*domain.Metadata, error) {
	if source != SourceAuto {
		backend, ok := r.byName[string(source)]
		if !ok {
			return nil, fmt.Errorf("no backend registered for source %q", source)
		}
		return r.tryBackend(ctx, backend, query)
	}

	sawAnswer := false
	var lastErr error
	for _, backend := range r.backends {
		meta, err := r.tryBackend(ctx, backend, query)
		if err == nil {
			return meta, nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			sawAnswer = true
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("Backend failed", "backend", backend.Name(), "query", query, "error", err)
		lastErr = err
	}

	if !sawAnswer && lastErr != nil {
		return nil, lastErr
	}
	return nil, domain.ErrNotFound
}

func (r *Resolver) tryBackend(ctx context.Context, backend Backend, query string) (*domain.Metadata, error) {
	meta, err := backend.Resolve(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrNoMatch) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", backend.Name(), err)
	}
	if !meta.Valid() {
		r.logger.Debug("Backend returned malformed result", "backend", backend.Name(), "query", query)
		return nil, domain.ErrNotFound
	}
	return meta, nil
}
