// Package queue persists the job queue as a single JSON array and serializes
// every mutation through one owner. The in-memory slice is authoritative; the
// file on disk is rewritten atomically (temp file + rename) after each change,
// so concurrent workers and handlers can never clobber each other's updates
// with stale snapshots.
package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cesargomez89/axiolite/internal/domain"
)

type Store struct {
	mu   sync.Mutex
	path string
	jobs []domain.Job
}

// Open loads the queue file at path. A missing file is an empty queue; an
// unparseable file is a fault the caller must not paper over.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read queue file: %w", err)
	}

	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.jobs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStoreCorrupt, path, err)
	}

	return s, nil
}

// persist writes the full queue to disk. Callers must hold s.mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode queue: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create queue directory: %w", err)
	}
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write queue file: %w", err)
	}

	return os.Rename(tmpPath, s.path)
}

// find returns the index of the job with the given id. Callers must hold s.mu.
func (s *Store) find(id string) int {
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			return i
		}
	}
	return -1
}

// Append adds a new job to the end of the queue.
func (s *Store) Append(job domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(job.ID) != -1 {
		return fmt.Errorf("duplicate job id %s", job.ID)
	}

	s.jobs = append(s.jobs, job)
	if err := s.persist(); err != nil {
		s.jobs = s.jobs[:len(s.jobs)-1]
		return err
	}
	return nil
}

// Get returns a copy of the job with the given id.
func (s *Store) Get(id string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i == -1 {
		return nil, domain.ErrNotFound
	}
	job := s.jobs[i]
	return &job, nil
}

// List returns a copy of the full queue in insertion order.
func (s *Store) List() []domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Update applies fn to the job with the given id and persists the queue.
// Returns ErrNotFound if the job was removed in the meantime, so a worker
// finishing a deleted job cannot resurrect it. Returns ErrJobTerminal if fn
// tries to move the job out of a terminal status.
func (s *Store) Update(id string, fn func(*domain.Job)) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i == -1 {
		return nil, domain.ErrNotFound
	}

	prev := s.jobs[i]
	next := prev
	fn(&next)
	next.ID = prev.ID

	if prev.Status.Terminal() && next.Status != prev.Status {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrJobTerminal, id, prev.Status)
	}

	next.UpdatedAt = time.Now()
	s.jobs[i] = next
	if err := s.persist(); err != nil {
		s.jobs[i] = prev
		return nil, err
	}

	job := next
	return &job, nil
}

// SetStatus moves the job to status, recording errMsg for failures.
func (s *Store) SetStatus(id string, status domain.JobStatus, errMsg string) error {
	_, err := s.Update(id, func(j *domain.Job) {
		j.Status = status
		j.Error = errMsg
		if status == domain.JobStatusCompleted {
			j.Progress = 100
		}
	})
	return err
}

// Remove deletes the job record. The file on disk, if any, is left alone.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i == -1 {
		return domain.ErrNotFound
	}

	removed := s.jobs[i]
	s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
	if err := s.persist(); err != nil {
		s.jobs = append(s.jobs[:i], append([]domain.Job{removed}, s.jobs[i:]...)...)
		return err
	}
	return nil
}

// Pending returns copies of all jobs still waiting to be picked up.
func (s *Store) Pending() []domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Job
	for i := range s.jobs {
		if s.jobs[i].Status == domain.JobStatusPending {
			out = append(out, s.jobs[i])
		}
	}
	return out
}

// ResetStuck requeues jobs left in downloading by a previous run. Returns the
// number of jobs requeued.
func (s *Store) ResetStuck() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range s.jobs {
		if s.jobs[i].Status == domain.JobStatusDownloading {
			s.jobs[i].Status = domain.JobStatusPending
			s.jobs[i].UpdatedAt = time.Now()
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.persist(); err != nil {
		return 0, err
	}
	return n, nil
}

// Len returns the number of jobs in the queue.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
