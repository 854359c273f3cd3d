package store

import (
	"database/sql"
	"time"

	"github.com/cesargomez89/axiolite/internal/domain"
)

type resolvedRow struct {
	Title     string       `db:"title"`
	Artist    string       `db:"artist"`
	Album     string       `db:"album"`
	Thumbnail string       `db:"thumbnail"`
	SourceURL string       `db:"source_url"`
	ExpiresAt sql.NullTime `db:"expires_at"`
}

// GetMetadata returns the stored resolution for a source and query, or nil
// when nothing is stored. Expired rows are deleted on read and count as a
// miss.
func (db *DB) GetMetadata(source, query string) (*domain.Metadata, error) {
	var row resolvedRow
	err := db.Get(&row, `
		SELECT title, artist, album, thumbnail, source_url, expires_at
		FROM resolved_tracks WHERE source = ? AND query = ?
	`, source, query)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if row.ExpiresAt.Valid && time.Now().After(row.ExpiresAt.Time) {
		_, _ = db.Exec("DELETE FROM resolved_tracks WHERE source = ? AND query = ?", source, query)
		return nil, nil
	}

	return &domain.Metadata{
		Title:     row.Title,
		Artist:    row.Artist,
		Album:     row.Album,
		Thumbnail: row.Thumbnail,
		SourceURL: row.SourceURL,
	}, nil
}

// PutMetadata stores a resolution, replacing any earlier one for the same
// source and query. A zero ttl keeps the row forever.
func (db *DB) PutMetadata(source, query string, meta *domain.Metadata, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	_, err := db.Exec(`
		INSERT INTO resolved_tracks (source, query, title, artist, album, thumbnail, source_url, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, query) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			thumbnail = excluded.thumbnail,
			source_url = excluded.source_url,
			expires_at = excluded.expires_at
	`, source, query, meta.Title, meta.Artist, meta.Album, meta.Thumbnail, meta.SourceURL, expiresAt)
	return err
}

// ClearResolved drops every stored resolution.
func (db *DB) ClearResolved() error {
	_, err := db.Exec("DELETE FROM resolved_tracks")
	return err
}
