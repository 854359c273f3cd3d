// Package ytdlp shells out to the yt-dlp command line tool for video-platform
// search, metadata lookup and audio extraction.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/logger"
)

type Client struct {
	Bin    string
	Logger *logger.Logger
}

func New(bin string, log *logger.Logger) *Client {
	return &Client{
		Bin:    bin,
		Logger: log.WithComponent("ytdlp"),
	}
}

// entry is the subset of yt-dlp's JSON output the backend cares about.
type entry struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Artist    string      `json:"artist"`
	Uploader  string      `json:"uploader"`
	Album     string      `json:"album"`
	Channel   string      `json:"channel"`
	Thumbnail string      `json:"thumbnail"`
	Duration  json.Number `json:"duration"`
}

// Resolve looks up the best match for a free-text query and returns its
// display metadata plus the watch URL the downloader will fetch.
func (c *Client) Resolve(ctx context.Context, query string) (*domain.Metadata, error) {
	out, err := c.run(ctx, fmt.Sprintf("ytsearch1:%s", query), "--print-json", "--skip-download", "--no-warnings")
	if err != nil {
		return nil, err
	}

	line := firstLine(out)
	if line == "" {
		return nil, domain.ErrNoMatch
	}

	var e entry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return nil, fmt.Errorf("failed to decode yt-dlp output: %w", err)
	}
	if e.ID == "" {
		return nil, domain.ErrNoMatch
	}

	return metadataFromEntry(&e), nil
}

// Search runs a video search and returns up to limit results. Malformed
// output lines are skipped.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Video, error) {
	out, err := c.run(ctx, fmt.Sprintf("ytsearch%d:%s", limit, query), "--print-json", "--skip-download", "--no-warnings")
	if err != nil {
		return nil, err
	}
	return ParseVideos(bytes.NewReader(out)), nil
}

// Fetch extracts audio for sourceURL into destPath. sourceURL may be a watch
// URL or a ytsearch expression. destPath must carry the target format's
// extension so the post-processor writes exactly that file.
func (c *Client) Fetch(ctx context.Context, sourceURL, format, quality, destPath string) error {
	args := []string{
		"-x",
		"-f", "bestaudio",
		"--audio-format", format,
		"--audio-quality", quality,
		"--no-playlist",
		"-o", destPath,
		sourceURL,
	}

	cmd := exec.CommandContext(ctx, c.Bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("yt-dlp timed out: %w", ctx.Err())
		}
		return fmt.Errorf("yt-dlp failed: %v: %s", err, tail(out, 400))
	}
	return nil
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp timed out: %w", ctx.Err())
		}
		// yt-dlp exits non-zero when a search finds nothing; with empty
		// stdout that is a no-match rather than a fault.
		if stdout.Len() == 0 {
			c.Logger.Debug("yt-dlp returned nothing", "error", err, "stderr", tail(stderr.Bytes(), 200))
			return nil, domain.ErrNoMatch
		}
	}
	return stdout.Bytes(), nil
}

// ParseVideos decodes one JSON object per line, skipping lines that do not
// parse.
func ParseVideos(r io.Reader) []domain.Video {
	videos := []domain.Video{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		duration, _ := e.Duration.Float64()
		videos = append(videos, domain.Video{
			Title:     e.Title,
			VideoID:   e.ID,
			Duration:  int(duration),
			Channel:   e.Channel,
			Thumbnail: e.Thumbnail,
		})
	}
	return videos
}

func metadataFromEntry(e *entry) *domain.Metadata {
	artist := e.Artist
	if artist == "" {
		artist = e.Uploader
	}
	album := e.Album
	if album == "" {
		album = "Single"
	}
	return &domain.Metadata{
		Title:     e.Title,
		Artist:    artist,
		Album:     album,
		Thumbnail: e.Thumbnail,
		SourceURL: fmt.Sprintf("https://www.youtube.com/watch?v=%s", e.ID),
	}
}

func firstLine(out []byte) string {
	for _, line := range strings.Split(string(out), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func tail(out []byte, n int) string {
	s := strings.TrimSpace(string(out))
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
