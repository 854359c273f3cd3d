package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/axiolite/internal/config"
	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/logger"
	"github.com/cesargomez89/axiolite/internal/queue"
	"github.com/cesargomez89/axiolite/internal/resolver"
)

// PlaylistSource lists the tracks of an external playlist given its share URL.
type PlaylistSource interface {
	PlaylistTracks(ctx context.Context, playlistURL string) ([]domain.PlaylistTrack, error)
}

// PlaylistService expands a playlist URL into one pending job per track. The
// track list comes from the playlist source; the actual audio is located at
// fetch time through a search expression, so no per-track resolver round trip
// happens during import.
type PlaylistService struct {
	Queue  *queue.Store
	Source PlaylistSource
	Worker Scheduler
	Config *config.Config
	Logger *logger.Logger
}

func NewPlaylistService(q *queue.Store, src PlaylistSource, w Scheduler, cfg *config.Config, log *logger.Logger) *PlaylistService {
	return &PlaylistService{
		Queue:  q,
		Source: src,
		Worker: w,
		Config: cfg,
		Logger: log.WithComponent("playlist"),
	}
}

// Import enqueues every track of the playlist at playlistURL. Tracks that
// fail to enqueue are skipped, not fatal. Returns how many tracks were
// enqueued out of how many the playlist holds.
func (s *PlaylistService) Import(ctx context.Context, playlistURL string) (imported, total int, err error) {
	tracks, err := s.Source.PlaylistTracks(ctx, playlistURL)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch playlist: %w", err)
	}

	format := s.Config.Format
	quality := s.Config.Quality

	for _, track := range tracks {
		now := time.Now().UTC()
		id := uuid.NewString()
		job := domain.Job{
			ID:        id,
			Status:    domain.JobStatusPending,
			Title:     track.Title,
			Artist:    track.Artist,
			Album:     track.Album,
			Thumbnail: track.AlbumArtURL,
			SourceURL: resolver.SearchLocator(track.Artist, track.Title),
			Format:    format,
			Quality:   quality,
			FilePath:  filepath.Join(s.Config.DownloadsDir, format, id+"."+format),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if appendErr := s.Queue.Append(job); appendErr != nil {
			s.Logger.Warn("Failed to enqueue playlist track", "title", track.Title, "error", appendErr)
			continue
		}
		imported++
	}

	s.Logger.Info("Imported playlist", "playlist", playlistURL, "imported", imported, "total", len(tracks))
	s.Worker.Kick()
	return imported, len(tracks), nil
}
