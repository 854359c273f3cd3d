package resolver

import (
	"context"
	"fmt"

	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/spotify"
	"github.com/cesargomez89/axiolite/internal/ytdlp"
)

// YouTubeBackend resolves queries through a yt-dlp search.
type YouTubeBackend struct {
	client *ytdlp.Client
}

func NewYouTubeBackend(client *ytdlp.Client) *YouTubeBackend {
	return &YouTubeBackend{client: client}
}

func (b *YouTubeBackend) Name() string {
	return string(SourceYouTube)
}

func (b *YouTubeBackend) Resolve(ctx context.Context, query string) (*domain.Metadata, error) {
	return b.client.Resolve(ctx, query)
}

// SpotifyBackend resolves display metadata from the Spotify catalog. Spotify
// serves no audio, so the source locator is a search expression the
// downloader evaluates at fetch time.
type SpotifyBackend struct {
	client *spotify.Client
}

func NewSpotifyBackend(client *spotify.Client) *SpotifyBackend {
	return &SpotifyBackend{client: client}
}

func (b *SpotifyBackend) Name() string {
	return string(SourceSpotify)
}

func (b *SpotifyBackend) Resolve(ctx context.Context, query string) (*domain.Metadata, error) {
	meta, err := b.client.SearchTrack(ctx, query)
	if err != nil {
		return nil, err
	}
	meta.SourceURL = SearchLocator(meta.Artist, meta.Title)
	return meta, nil
}

// SearchLocator builds the yt-dlp search expression used when only catalog
// metadata is known.
func SearchLocator(artist, title string) string {
	if artist == "" {
		return fmt.Sprintf("ytsearch1:%s audio", title)
	}
	return fmt.Sprintf("ytsearch1:%s - %s audio", artist, title)
}

var (
	_ Backend = (*YouTubeBackend)(nil)
	_ Backend = (*SpotifyBackend)(nil)
)
