package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/logger"
)

type fakeBackend struct {
	name  string
	meta  *domain.Metadata
	err   error
	calls int
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Resolve(ctx context.Context, query string) (*domain.Metadata, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return b.meta, nil
}

func meta(title string) *domain.Metadata {
	return &domain.Metadata{
		Title:     title,
		Artist:    "Artist",
		SourceURL: "ytsearch1:" + title,
	}
}

func TestParseSource(t *testing.T) {
	cases := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{"", SourceAuto, false},
		{"auto", SourceAuto, false},
		{"spotify", SourceSpotify, false},
		{"youtube", SourceYouTube, false},
		{"soundcloud", "", true},
	}
	for _, c := range cases {
		got, err := ParseSource(c.in)
		if c.wantErr {
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("ParseSource(%q): expected ErrInvalidRequest, got %v", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSource(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseSource(%q) = %s, expected %s", c.in, got, c.want)
		}
	}
}

func TestAutoTriesBackendsInOrder(t *testing.T) {
	first := &fakeBackend{name: "spotify", err: domain.ErrNoMatch}
	second := &fakeBackend{name: "youtube", meta: meta("hit")}
	r := New(logger.Default(), first, second)

	got, err := r.Resolve(context.Background(), "query", SourceAuto)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Title != "hit" {
		t.Errorf("Expected hit from fallback backend, got %s", got.Title)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("Expected both backends tried once, got %d and %d", first.calls, second.calls)
	}
}

func TestAutoStopsAtFirstHit(t *testing.T) {
	first := &fakeBackend{name: "spotify", meta: meta("first")}
	second := &fakeBackend{name: "youtube", meta: meta("second")}
	r := New(logger.Default(), first, second)

	got, err := r.Resolve(context.Background(), "query", SourceAuto)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Title != "first" {
		t.Errorf("Expected first backend's result, got %s", got.Title)
	}
	if second.calls != 0 {
		t.Errorf("Expected second backend untouched, got %d calls", second.calls)
	}
}

func TestSourceHintSkipsOtherBackends(t *testing.T) {
	first := &fakeBackend{name: "spotify", meta: meta("first")}
	second := &fakeBackend{name: "youtube", meta: meta("second")}
	r := New(logger.Default(), first, second)

	got, err := r.Resolve(context.Background(), "query", SourceYouTube)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Title != "second" {
		t.Errorf("Expected youtube result, got %s", got.Title)
	}
	if first.calls != 0 {
		t.Errorf("Expected spotify untouched, got %d calls", first.calls)
	}
}

func TestAllNoMatchIsNotFound(t *testing.T) {
	r := New(logger.Default(),
		&fakeBackend{name: "spotify", err: domain.ErrNoMatch},
		&fakeBackend{name: "youtube", err: domain.ErrNoMatch},
	)

	_, err := r.Resolve(context.Background(), "query", SourceAuto)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAllBackendsDownPropagatesError(t *testing.T) {
	down := fmt.Errorf("connection refused")
	r := New(logger.Default(),
		&fakeBackend{name: "spotify", err: down},
		&fakeBackend{name: "youtube", err: down},
	)

	_, err := r.Resolve(context.Background(), "query", SourceAuto)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected transport error, got %v", err)
	}
}

func TestNoMatchPlusDownIsNotFound(t *testing.T) {
	// One backend answered "nothing here", the other is unreachable. The
	// answer wins: the track genuinely was not found somewhere.
	r := New(logger.Default(),
		&fakeBackend{name: "spotify", err: fmt.Errorf("connection refused")},
		&fakeBackend{name: "youtube", err: domain.ErrNoMatch},
	)

	_, err := r.Resolve(context.Background(), "query", SourceAuto)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMalformedResultIsNotFound(t *testing.T) {
	r := New(logger.Default(),
		&fakeBackend{name: "youtube", meta: &domain.Metadata{Title: "no locator"}},
	)

	_, err := r.Resolve(context.Background(), "query", SourceYouTube)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for result without locator, got %v", err)
	}
}

func TestUnregisteredSource(t *testing.T) {
	r := New(logger.Default(), &fakeBackend{name: "youtube", meta: meta("hit")})

	_, err := r.Resolve(context.Background(), "query", SourceSpotify)
	if err == nil {
		t.Error("Expected error for unregistered source")
	}
}

func TestSearchLocator(t *testing.T) {
	if got := SearchLocator("Artist", "Song"); got != "ytsearch1:Artist - Song audio" {
		t.Errorf("Unexpected locator: %s", got)
	}
	if got := SearchLocator("", "Song"); got != "ytsearch1:Song audio" {
		t.Errorf("Unexpected locator without artist: %s", got)
	}
}
