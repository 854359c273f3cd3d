package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cesargomez89/axiolite/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port                string
	QueuePath           string
	CachePath           string
	DownloadsDir        string
	Format              string
	Quality             string
	MaxConcurrent       int
	YtdlpBin            string
	LogLevel            string
	LogFormat           string
	SpotifyClientID     string
	SpotifyClientSecret string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", constants.DefaultPort),
		QueuePath:           getEnv("QUEUE_PATH", constants.DefaultQueuePath),
		CachePath:           getEnv("CACHE_PATH", constants.DefaultCachePath),
		DownloadsDir:        getEnv("DOWNLOADS_DIR", constants.DefaultDownloadsDir),
		Format:              getEnv("FORMAT", constants.DefaultFormat),
		Quality:             getEnv("QUALITY", constants.DefaultQuality),
		MaxConcurrent:       getEnvInt("MAX_CONCURRENT", constants.DefaultConcurrency),
		YtdlpBin:            getEnv("YTDLP_BIN", constants.DefaultYtdlpBin),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
	}
}

// ValidFormat reports whether f is a supported output format.
func ValidFormat(f string) bool {
	switch f {
	case constants.FormatMP3, constants.FormatFLAC, constants.FormatM4A, constants.FormatOpus:
		return true
	}
	return false
}

// SpotifyEnabled reports whether Spotify credentials are configured.
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.QueuePath == "" {
		errors = append(errors, "QUEUE_PATH cannot be empty")
	}

	if c.CachePath == "" {
		errors = append(errors, "CACHE_PATH cannot be empty")
	}

	if c.DownloadsDir == "" {
		errors = append(errors, "DOWNLOADS_DIR cannot be empty")
	}

	if !ValidFormat(c.Format) {
		errors = append(errors, fmt.Sprintf("FORMAT must be one of: mp3, flac, m4a, opus, got: %s", c.Format))
	}

	if c.Quality == "" {
		errors = append(errors, "QUALITY cannot be empty")
	}

	if c.MaxConcurrent < 1 {
		errors = append(errors, fmt.Sprintf("MAX_CONCURRENT must be at least 1, got: %d", c.MaxConcurrent))
	}

	if c.YtdlpBin == "" {
		errors = append(errors, "YTDLP_BIN cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	// Spotify credentials are optional but must come as a pair.
	if (c.SpotifyClientID == "") != (c.SpotifyClientSecret == "") {
		errors = append(errors, "SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must both be set or both be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
