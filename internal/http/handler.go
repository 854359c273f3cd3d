// Package httpapp exposes the job queue over HTTP. Routes live under
// /api/v1 with flat legacy aliases kept for older clients.
package httpapp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/axiolite/internal/app"
	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/logger"
)

// Searcher runs a free-text video search for the search endpoint.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Video, error)
}

type Handler struct {
	Jobs      *app.JobService
	Playlists *app.PlaylistService
	Search    Searcher
	Logger    *logger.Logger
}

func NewHandler(jobs *app.JobService, playlists *app.PlaylistService, search Searcher, log *logger.Logger) *Handler {
	return &Handler{
		Jobs:      jobs,
		Playlists: playlists,
		Search:    search,
		Logger:    log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/downloads/audio", h.CreateDownload)
		r.Get("/downloads/queue", h.GetQueue)
		r.Get("/downloads/file/{id}", h.GetFile)
		r.Delete("/downloads/queue/{id}", h.DeleteJob)
		r.Post("/downloads/all", h.DownloadAll)
		r.Post("/search/youtube", h.SearchYouTube)
		r.Post("/playlists/import", h.ImportPlaylist)
	})

	// Legacy flat routes.
	r.Post("/download-audio", h.CreateDownload)
	r.Get("/download-queue", h.GetQueue)
	r.Get("/download-file/{id}", h.GetFile)
	r.Delete("/download-queue/{id}", h.DeleteJob)
	r.Post("/download-all", h.DownloadAll)
	r.Post("/search-youtube", h.SearchYouTube)
	r.Post("/import-playlist", h.ImportPlaylist)
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
