// Package tagging embeds display metadata and cover art into downloaded
// audio files. Everything here is best-effort from the worker's point of
// view: a tagging failure never fails the download.
package tagging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"github.com/cesargomez89/axiolite/internal/constants"
	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/logger"
)

// Tagger applies a job's metadata to its downloaded file, fetching cover art
// from the job's thumbnail URL when one is present.
type Tagger struct {
	Logger *logger.Logger
}

func New(log *logger.Logger) *Tagger {
	return &Tagger{Logger: log.WithComponent("tagging")}
}

func (t *Tagger) Tag(path string, job *domain.Job) error {
	var art []byte
	if job.Thumbnail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), constants.ImageHTTPTimeout)
		defer cancel()

		data, err := DownloadImage(ctx, job.Thumbnail)
		if err != nil {
			// Cover art is optional; keep going with text tags only.
			t.Logger.Warn("Failed to fetch cover art", "job_id", job.ID, "url", job.Thumbnail, "error", err)
		} else {
			art = data
		}
	}

	return TagFile(path, job, art)
}

// TagFile writes title/artist/album tags and optional cover art to the audio
// file at path. The format is chosen by file extension.
func TagFile(path string, job *domain.Job, albumArt []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return tagMP3(path, job, albumArt)
	case ".flac":
		return tagFLAC(path, job, albumArt)
	default:
		return fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

func tagMP3(path string, job *domain.Job, albumArt []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	if job.Title != "" {
		tag.SetTitle(job.Title)
	}
	if job.Artist != "" {
		tag.SetArtist(job.Artist)
	}
	if job.Album != "" {
		tag.SetAlbum(job.Album)
	}

	if len(albumArt) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    detectMIME(albumArt),
			PictureType: id3v2.PTFrontCover,
			Description: "Front Cover",
			Picture:     albumArt,
		})
	}

	return tag.Save()
}

func tagFLAC(path string, job *domain.Job, albumArt []byte) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	// Drop any existing comment and picture blocks; they are replaced below.
	kept := f.Meta[:0]
	for _, block := range f.Meta {
		if block.Type == flac.VorbisComment || block.Type == flac.Picture {
			continue
		}
		kept = append(kept, block)
	}
	f.Meta = kept

	cmt := flacvorbis.New()
	addTag := func(key, value string) {
		if value != "" {
			_ = cmt.Add(key, value)
		}
	}
	addTag(flacvorbis.FIELD_TITLE, job.Title)
	addTag(flacvorbis.FIELD_ARTIST, job.Artist)
	addTag(flacvorbis.FIELD_ALBUM, job.Album)

	cmtBlock := cmt.Marshal()
	f.Meta = append(f.Meta, &cmtBlock)

	if len(albumArt) > 0 {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front Cover", albumArt, detectMIME(albumArt))
		if err != nil {
			return fmt.Errorf("failed to build picture block: %w", err)
		}
		picBlock := pic.Marshal()
		f.Meta = append(f.Meta, &picBlock)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}
	return nil
}

// DownloadImage fetches cover art and returns the raw bytes.
func DownloadImage(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36")

	client := &http.Client{Timeout: constants.ImageHTTPTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d (URL: %s)", resp.StatusCode, url)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return buf.Bytes(), nil
}

// detectMIME sniffs the image MIME type so PNG covers aren't labelled as
// image/jpeg.
func detectMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if idx := strings.Index(mime, ";"); idx != -1 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime
}
