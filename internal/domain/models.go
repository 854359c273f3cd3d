package domain

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusPending     JobStatus = "pending"
	JobStatusDownloading JobStatus = "downloading"
	JobStatusCompleted   JobStatus = "completed"
	JobStatusFailed      JobStatus = "failed"
)

// Terminal reports whether the status is final. Terminal jobs never change
// status again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is one requested track download plus its resolved metadata and current
// status. It is the only persisted entity.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Album     string    `json:"album"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	SourceURL string    `json:"source_url"`
	Format    string    `json:"format"`
	Quality   string    `json:"quality"`
	FilePath  string    `json:"file_path"`
	Progress  float64   `json:"progress"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DownloadName returns the client-facing filename for the finished file.
func (j *Job) DownloadName() string {
	return fmt.Sprintf("%s - %s.%s", j.Title, j.Artist, j.Format)
}

// Metadata is the normalized result of resolving a free-text query against a
// search backend.
type Metadata struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Album     string `json:"album"`
	Thumbnail string `json:"thumbnail,omitempty"`
	SourceURL string `json:"source_url"`
}

// Valid reports whether the metadata is usable for a download job.
func (m *Metadata) Valid() bool {
	return m != nil && m.Title != "" && m.SourceURL != ""
}

// Video is a single entry in a video-platform search result.
type Video struct {
	Title     string `json:"title"`
	VideoID   string `json:"videoId"`
	Duration  int    `json:"duration"`
	Channel   string `json:"channel"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// PlaylistTrack is one track of an external playlist, as reported by the
// playlist backend.
type PlaylistTrack struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	AlbumArtURL string `json:"album_art_url,omitempty"`
}

// JobResult is the completion signal emitted by the worker pool when a job
// reaches a terminal state.
type JobResult struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
	Error  string    `json:"error,omitempty"`
}
