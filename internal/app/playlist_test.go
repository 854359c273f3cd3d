package app

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/logger"
	"github.com/cesargomez89/axiolite/internal/queue"
)

type fakePlaylistSource struct {
	tracks []domain.PlaylistTrack
	err    error
}

func (s *fakePlaylistSource) PlaylistTracks(ctx context.Context, playlistURL string) ([]domain.PlaylistTrack, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tracks, nil
}

func setupPlaylistService(t *testing.T, src PlaylistSource) (*PlaylistService, *queue.Store, *fakeScheduler) {
	t.Helper()
	dir := t.TempDir()
	cfg := testConfig(dir)

	q, err := queue.Open(cfg.QueuePath)
	if err != nil {
		t.Fatalf("Open queue failed: %v", err)
	}

	sched := &fakeScheduler{}
	svc := NewPlaylistService(q, src, sched, cfg, logger.Default())
	return svc, q, sched
}

func TestImportEnqueuesEveryTrack(t *testing.T) {
	src := &fakePlaylistSource{tracks: []domain.PlaylistTrack{
		{Title: "One", Artist: "A", Album: "X"},
		{Title: "Two", Artist: "B", Album: "Y", AlbumArtURL: "https://img.example/y.jpg"},
	}}
	svc, q, sched := setupPlaylistService(t, src)

	imported, total, err := svc.Import(context.Background(), "https://open.spotify.com/playlist/37i9dQ")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if imported != 2 || total != 2 {
		t.Errorf("Expected 2/2, got %d/%d", imported, total)
	}
	if sched.kicks != 1 {
		t.Errorf("Expected 1 worker kick, got %d", sched.kicks)
	}

	jobs := q.List()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	for _, job := range jobs {
		if job.Status != domain.JobStatusPending {
			t.Errorf("Expected pending, got %s", job.Status)
		}
		if !strings.HasPrefix(job.SourceURL, "ytsearch1:") {
			t.Errorf("Expected search locator, got %s", job.SourceURL)
		}
	}
	if jobs[0].Title != "One" || jobs[1].Title != "Two" {
		t.Errorf("Playlist order not preserved: %s, %s", jobs[0].Title, jobs[1].Title)
	}
}

func TestImportSourceFailure(t *testing.T) {
	svc, q, _ := setupPlaylistService(t, &fakePlaylistSource{err: fmt.Errorf("boom")})

	_, _, err := svc.Import(context.Background(), "https://open.spotify.com/playlist/x")
	if err == nil {
		t.Fatal("Expected error")
	}
	if q.Len() != 0 {
		t.Errorf("Expected no jobs on failure, got %d", q.Len())
	}
}

func TestImportEmptyPlaylist(t *testing.T) {
	svc, _, _ := setupPlaylistService(t, &fakePlaylistSource{})

	imported, total, err := svc.Import(context.Background(), "https://open.spotify.com/playlist/x")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if imported != 0 || total != 0 {
		t.Errorf("Expected 0/0, got %d/%d", imported, total)
	}
}
