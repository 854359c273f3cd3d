// Package app wires queue, resolver and worker into the operations the HTTP
// layer exposes.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/axiolite/internal/config"
	"github.com/cesargomez89/axiolite/internal/constants"
	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/logger"
	"github.com/cesargomez89/axiolite/internal/queue"
	"github.com/cesargomez89/axiolite/internal/resolver"
	"github.com/cesargomez89/axiolite/internal/storage"
)

// Scheduler wakes the worker pool after new work is enqueued.
type Scheduler interface {
	Kick()
}

// Request is a download request as it arrives from a client. Format, Quality
// and Source fall back to configured defaults when empty.
type Request struct {
	Query   string `json:"query"`
	Format  string `json:"format"`
	Quality string `json:"quality"`
	Source  string `json:"source"`
}

type JobService struct {
	Queue    *queue.Store
	Resolver resolver.TrackResolver
	Worker   Scheduler
	Config   *config.Config
	Logger   *logger.Logger
}

func NewJobService(q *queue.Store, r resolver.TrackResolver, w Scheduler, cfg *config.Config, log *logger.Logger) *JobService {
	return &JobService{
		Queue:    q,
		Resolver: r,
		Worker:   w,
		Config:   cfg,
		Logger:   log.WithComponent("jobs"),
	}
}

// Enqueue resolves a query to track metadata, appends a pending job for it
// and wakes the worker pool. The returned job is the persisted record.
func (s *JobService) Enqueue(ctx context.Context, req Request) (domain.Job, error) {
	if req.Query == "" {
		return domain.Job{}, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidRequest)
	}

	format := req.Format
	if format == "" {
		format = s.Config.Format
	}
	if !config.ValidFormat(format) {
		return domain.Job{}, fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidRequest, format)
	}
	quality := req.Quality
	if quality == "" {
		quality = s.Config.Quality
	}

	source, err := resolver.ParseSource(req.Source)
	if err != nil {
		return domain.Job{}, err
	}

	resolveCtx, cancel := context.WithTimeout(ctx, constants.ResolveTimeout)
	defer cancel()

	meta, err := s.Resolver.Resolve(resolveCtx, req.Query, source)
	if err != nil {
		return domain.Job{}, err
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	job := domain.Job{
		ID:        id,
		Status:    domain.JobStatusPending,
		Title:     meta.Title,
		Artist:    meta.Artist,
		Album:     meta.Album,
		Thumbnail: meta.Thumbnail,
		SourceURL: meta.SourceURL,
		Format:    format,
		Quality:   quality,
		FilePath:  filepath.Join(s.Config.DownloadsDir, format, id+"."+format),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Queue.Append(job); err != nil {
		return domain.Job{}, fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.Logger.Info("Enqueued job", "job_id", job.ID, "title", job.Title, "source", job.SourceURL)
	s.Worker.Kick()
	return job, nil
}

// List returns all jobs in insertion order.
func (s *JobService) List() []domain.Job {
	return s.Queue.List()
}

// File returns the job only when its download finished and the file is on
// disk. A job in any non-terminal or failed state reports ErrNotReady.
func (s *JobService) File(id string) (*domain.Job, error) {
	job, err := s.Queue.Get(id)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusCompleted {
		return nil, fmt.Errorf("%w: job is %s", domain.ErrNotReady, job.Status)
	}
	if !storage.FileExists(job.FilePath) {
		return nil, fmt.Errorf("%w: file missing on disk", domain.ErrNotReady)
	}
	return job, nil
}

// Remove deletes a job record. A job removed while downloading stays gone;
// the worker discards its output when it finishes. Files of completed jobs
// are left on disk.
func (s *JobService) Remove(id string) error {
	if err := s.Queue.Remove(id); err != nil {
		return err
	}
	s.Logger.Info("Removed job", "job_id", id)
	return nil
}

// Sweep wakes the pool so every pending job gets picked up. Terminal jobs are
// never rescheduled. Returns the number of jobs awaiting processing.
func (s *JobService) Sweep() int {
	pending := len(s.Queue.Pending())
	s.Worker.Kick()
	s.Logger.Info("Triggered queue sweep", "pending", pending)
	return pending
}
