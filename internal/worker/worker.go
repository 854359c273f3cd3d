// Package worker runs the fetch-and-tag pipeline for queued jobs. A small
// polling pool claims pending jobs from the queue store, drives each through
// downloading to a terminal status, and emits a completion signal per job.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cesargomez89/axiolite/internal/constants"
	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/logger"
	"github.com/cesargomez89/axiolite/internal/queue"
	"github.com/cesargomez89/axiolite/internal/storage"
)

// Fetcher materializes audio for a source locator at destPath.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL, format, quality, destPath string) error
}

// Tagger embeds a job's metadata into the finished file.
type Tagger interface {
	Tag(path string, job *domain.Job) error
}

type Pool struct {
	Queue         *queue.Store
	Fetcher       Fetcher
	Tagger        Tagger
	Logger        *logger.Logger
	MaxConcurrent int
	PollInterval  time.Duration
	FetchTimeout  time.Duration
	TempDir       string

	results chan domain.JobResult
	kick    chan struct{}
	sem     chan struct{}
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewPool(q *queue.Store, fetcher Fetcher, tagger Tagger, maxConcurrent int, log *logger.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Pool{
		Queue:         q,
		Fetcher:       fetcher,
		Tagger:        tagger,
		Logger:        log.WithComponent("worker"),
		MaxConcurrent: maxConcurrent,
		PollInterval:  constants.DefaultPollInterval,
		FetchTimeout:  constants.FetchTimeout,
		TempDir:       os.TempDir(),
		results:       make(chan domain.JobResult, 64),
		kick:          make(chan struct{}, 1),
		sem:           make(chan struct{}, maxConcurrent),
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (p *Pool) Start() {
	p.Logger.Info("Starting worker pool", "max_concurrent", p.MaxConcurrent)

	if n, err := p.Queue.ResetStuck(); err != nil {
		p.Logger.Error("Failed to reset stuck jobs", "error", err)
	} else if n > 0 {
		p.Logger.Info("Requeued jobs stuck in downloading", "count", n)
	}

	p.wg.Add(1)
	go p.loop()
}

func (p *Pool) Stop() {
	p.Logger.Info("Stopping worker pool")
	p.cancel()
	p.wg.Wait()
}

// Kick wakes the poll loop immediately instead of waiting for the next tick.
func (p *Pool) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Results delivers one JobResult per job that reaches a terminal state. The
// channel is buffered; results are dropped rather than blocking the pool if
// nobody listens.
func (p *Pool) Results() <-chan domain.JobResult {
	return p.results
}

func (p *Pool) loop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
		case <-p.kick:
		}
		p.dispatchPending()
	}
}

// dispatchPending claims as many pending jobs as free worker slots allow. The
// claim (pending -> downloading) happens synchronously here, so a job can
// never be picked up twice.
func (p *Pool) dispatchPending() {
	for _, job := range p.Queue.Pending() {
		select {
		case p.sem <- struct{}{}:
		default:
			return
		}

		if err := p.Queue.SetStatus(job.ID, domain.JobStatusDownloading, ""); err != nil {
			// Removed or already claimed; give the slot back.
			<-p.sem
			if !errors.Is(err, domain.ErrNotFound) {
				p.Logger.Error("Failed to claim job", "job_id", job.ID, "error", err)
			}
			continue
		}

		p.wg.Add(1)
		go func(j domain.Job) {
			defer p.wg.Done()
			defer func() { <-p.sem }()
			p.runJob(p.ctx, &j)
		}(job)
	}
}

// runJob drives one claimed job to a terminal state. The terminal persist
// happens in the deferred block so a panic or an early return can never leave
// the job stuck in downloading.
func (p *Pool) runJob(ctx context.Context, job *domain.Job) {
	log := p.Logger.WithJob(job.ID)
	log.Info("Running job", "source", job.SourceURL, "format", job.Format)

	status := domain.JobStatusFailed
	errMsg := ""

	defer func() {
		if r := recover(); r != nil {
			status = domain.JobStatusFailed
			errMsg = fmt.Sprintf("panic: %v", r)
			log.Error("Panic in job", "panic", r)
		}

		if err := p.Queue.SetStatus(job.ID, status, errMsg); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// The job was deleted mid-download; its record stays gone.
				log.Info("Job removed while running, dropping result")
				_ = storage.RemoveFile(job.FilePath)
			} else {
				log.Error("Failed to persist terminal status", "error", err)
			}
		}

		if !status.Terminal() {
			log.Info("Job requeued for next run")
			return
		}

		result := domain.JobResult{JobID: job.ID, Status: status, Error: errMsg}
		select {
		case p.results <- result:
		default:
		}

		if status == domain.JobStatusCompleted {
			log.Info("Job completed", "file", job.FilePath)
		} else {
			log.Warn("Job failed", "error", errMsg)
		}
	}()

	tmpPath := filepath.Join(p.TempDir, fmt.Sprintf("axiolite-%s.%s", job.ID, job.Format))
	defer storage.RemoveFile(tmpPath)

	fetchCtx, cancel := context.WithTimeout(ctx, p.FetchTimeout)
	defer cancel()

	if err := p.Fetcher.Fetch(fetchCtx, job.SourceURL, job.Format, job.Quality, tmpPath); err != nil {
		if p.ctx.Err() != nil {
			// Shutdown, not a download fault; requeue for the next run.
			status = domain.JobStatusPending
			errMsg = ""
			return
		}
		errMsg = fmt.Sprintf("download failed: %v", err)
		return
	}

	if !storage.FileExists(tmpPath) {
		errMsg = "downloader reported success but produced no output"
		return
	}

	if err := storage.EnsureDir(filepath.Dir(job.FilePath)); err != nil {
		errMsg = fmt.Sprintf("failed to create download directory: %v", err)
		return
	}

	if err := storage.MoveFile(tmpPath, job.FilePath); err != nil {
		errMsg = fmt.Sprintf("failed to move output into place: %v", err)
		return
	}

	// Tagging is best-effort: a failure here never downgrades a finished
	// download.
	if err := p.Tagger.Tag(job.FilePath, job); err != nil {
		log.Warn("Tagging failed", "error", err)
	}

	if !storage.FileExists(job.FilePath) {
		errMsg = "output file missing after move"
		return
	}

	status = domain.JobStatusCompleted
}
