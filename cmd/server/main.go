package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cesargomez89/axiolite/internal/app"
	"github.com/cesargomez89/axiolite/internal/config"
	"github.com/cesargomez89/axiolite/internal/constants"
	httpapp "github.com/cesargomez89/axiolite/internal/http"
	"github.com/cesargomez89/axiolite/internal/logger"
	"github.com/cesargomez89/axiolite/internal/queue"
	"github.com/cesargomez89/axiolite/internal/resolver"
	"github.com/cesargomez89/axiolite/internal/spotify"
	"github.com/cesargomez89/axiolite/internal/store"
	"github.com/cesargomez89/axiolite/internal/tagging"
	"github.com/cesargomez89/axiolite/internal/worker"
	"github.com/cesargomez89/axiolite/internal/ytdlp"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Open Queue Store
	q, err := queue.Open(cfg.QueuePath)
	if err != nil {
		appLogger.Error("Failed to open queue", "path", cfg.QueuePath, "error", err)
		os.Exit(1)
	}

	// Initialize resolver cache DB
	db, err := store.NewSQLiteDB(cfg.CachePath)
	if err != nil {
		appLogger.Error("Failed to init cache DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Resolver backends: Spotify first when configured, yt-dlp always.
	ytClient := ytdlp.New(cfg.YtdlpBin, appLogger)

	var sp *spotify.Client
	if cfg.SpotifyEnabled() {
		sp = spotify.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	}

	var backends []resolver.Backend
	if sp != nil {
		backends = append(backends, resolver.NewSpotifyBackend(sp))
	}
	backends = append(backends, resolver.NewYouTubeBackend(ytClient))

	var trackResolver resolver.TrackResolver = resolver.New(appLogger, backends...)
	trackResolver = resolver.NewCachedResolver(trackResolver, db, constants.DefaultCacheTTL)

	// Initialize Worker
	tagger := tagging.New(appLogger)
	pool := worker.NewPool(q, ytClient, tagger, cfg.MaxConcurrent, appLogger)
	pool.Start()
	defer pool.Stop()

	// Initialize Services
	jobService := app.NewJobService(q, trackResolver, pool, cfg, appLogger)

	var playlistService *app.PlaylistService
	if sp != nil {
		playlistService = app.NewPlaylistService(q, sp, pool, cfg, appLogger)
	}

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := httpapp.NewHandler(jobService, playlistService, ytClient, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
