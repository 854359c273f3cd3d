package httpapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/axiolite/internal/app"
	"github.com/cesargomez89/axiolite/internal/constants"
	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/storage"
)

// CreateDownload resolves a query and enqueues a download job. The resolved
// job record comes back immediately; the fetch runs in the background.
func (h *Handler) CreateDownload(w http.ResponseWriter, r *http.Request) {
	var req app.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.Jobs.Enqueue(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			respondError(w, http.StatusNotFound, "no track found for query")
		default:
			h.Logger.Error("Failed to enqueue download", "query", req.Query, "error", err)
			respondError(w, http.StatusBadGateway, "metadata resolution failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

// GetQueue returns every job in insertion order. An empty queue is an empty
// array, never null.
func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	jobs := h.Jobs.List()
	if jobs == nil {
		jobs = []domain.Job{}
	}
	respondJSON(w, http.StatusOK, jobs)
}

// GetFile streams the finished audio file. Only completed jobs have a file;
// anything else is not ready regardless of what exists on disk.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.Jobs.File(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotReady) {
			respondError(w, http.StatusNotFound, "file not ready")
			return
		}
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	name := storage.Sanitize(job.DownloadName())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if mime := formatMIME(job.Format); mime != "" {
		w.Header().Set("Content-Type", mime)
	}
	http.ServeFile(w, r, job.FilePath)
}

func formatMIME(format string) string {
	switch format {
	case constants.FormatMP3:
		return constants.MimeTypeMP3
	case constants.FormatFLAC:
		return constants.MimeTypeFLAC
	case constants.FormatM4A:
		return constants.MimeTypeMP4
	case constants.FormatOpus:
		return constants.MimeTypeOpus
	}
	return ""
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Jobs.Remove(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		h.Logger.Error("Failed to delete job", "job_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete job")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "job deleted"})
}

// DownloadAll wakes the worker so all pending jobs get picked up.
func (h *Handler) DownloadAll(w http.ResponseWriter, r *http.Request) {
	scheduled := h.Jobs.Sweep()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "queue sweep triggered",
		"scheduled": scheduled,
	})
}

func (h *Handler) SearchYouTube(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		req.Query = r.URL.Query().Get("query")
	}
	if req.Query == "" {
		respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	videos, err := h.Search.Search(r.Context(), req.Query, constants.SearchResultLimit)
	if err != nil {
		if errors.Is(err, domain.ErrNoMatch) {
			respondJSON(w, http.StatusOK, []domain.Video{})
			return
		}
		h.Logger.Error("Search failed", "query", req.Query, "error", err)
		respondError(w, http.StatusBadGateway, "search failed")
		return
	}
	if videos == nil {
		videos = []domain.Video{}
	}

	respondJSON(w, http.StatusOK, videos)
}

func (h *Handler) ImportPlaylist(w http.ResponseWriter, r *http.Request) {
	if h.Playlists == nil {
		respondError(w, http.StatusServiceUnavailable, "playlist import is not configured")
		return
	}

	var req struct {
		PlaylistURL string `json:"playlist_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlaylistURL == "" {
		respondError(w, http.StatusBadRequest, "playlist_url is required")
		return
	}

	imported, total, err := h.Playlists.Import(r.Context(), req.PlaylistURL)
	if err != nil {
		if errors.Is(err, domain.ErrNoMatch) || errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "playlist not found")
			return
		}
		h.Logger.Error("Playlist import failed", "playlist", req.PlaylistURL, "error", err)
		respondError(w, http.StatusBadGateway, "playlist import failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"imported": imported,
		"total":    total,
	})
}
