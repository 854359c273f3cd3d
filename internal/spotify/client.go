// Package spotify is a thin Spotify Web API client using the client
// credentials flow. It covers exactly what the backend needs: track search
// and playlist track listing.
//
// API response types based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/cesargomez89/axiolite/internal/constants"
	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/httpclient"
)

const (
	TokenURL = "https://accounts.spotify.com/api/token"
	BaseURL  = "https://api.spotify.com/v1"

	playlistPageSize = 100
)

type Client struct {
	BaseURL string
	HTTP    *httpclient.Client
}

// New creates a client that authenticates with the given application
// credentials. Tokens are fetched and refreshed transparently.
func New(clientID, clientSecret string) *Client {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     TokenURL,
	}
	return &Client{
		BaseURL: BaseURL,
		HTTP:    httpclient.NewClient(conf.Client(context.Background()), constants.MinRequestInterval),
	}
}

type image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type artist struct {
	Name string `json:"name"`
}

type album struct {
	Name   string  `json:"name"`
	Images []image `json:"images"`
}

type track struct {
	Name    string   `json:"name"`
	Artists []artist `json:"artists"`
	Album   album    `json:"album"`
}

// SearchTrack returns display metadata for the best catalog match. The
// returned metadata carries no source locator; the caller decides how the
// audio is actually fetched.
func (c *Client) SearchTrack(ctx context.Context, query string) (*domain.Metadata, error) {
	u := fmt.Sprintf("%s/search?q=%s&type=track&limit=1", c.BaseURL, url.QueryEscape(query))

	var resp struct {
		Tracks struct {
			Items []track `json:"items"`
		} `json:"tracks"`
	}
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}

	if len(resp.Tracks.Items) == 0 {
		return nil, domain.ErrNoMatch
	}

	return metadataFromTrack(&resp.Tracks.Items[0]), nil
}

// PlaylistTracks pages through every track of the playlist at playlistURL.
func (c *Client) PlaylistTracks(ctx context.Context, playlistURL string) ([]domain.PlaylistTrack, error) {
	id, err := ParsePlaylistID(playlistURL)
	if err != nil {
		return nil, err
	}

	var tracks []domain.PlaylistTrack
	offset := 0
	for {
		u := fmt.Sprintf("%s/playlists/%s/tracks?offset=%d&limit=%d", c.BaseURL, id, offset, playlistPageSize)

		var resp struct {
			Items []struct {
				Track track `json:"track"`
			} `json:"items"`
			Next *string `json:"next"`
		}
		if err := c.get(ctx, u, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			t := item.Track
			if t.Name == "" {
				continue
			}
			pt := domain.PlaylistTrack{
				Title: t.Name,
				Album: t.Album.Name,
			}
			if len(t.Artists) > 0 {
				pt.Artist = t.Artists[0].Name
			}
			if len(t.Album.Images) > 0 {
				pt.AlbumArtURL = t.Album.Images[0].URL
			}
			tracks = append(tracks, pt)
		}

		if resp.Next == nil || *resp.Next == "" {
			break
		}
		offset += playlistPageSize
	}

	return tracks, nil
}

// ParsePlaylistID extracts the playlist id from a share URL such as
// https://open.spotify.com/playlist/<id>?si=... A bare id passes through.
func ParsePlaylistID(playlistURL string) (string, error) {
	s := playlistURL
	if i := strings.Index(s, "playlist/"); i != -1 {
		s = s[i+len("playlist/"):]
	}
	if i := strings.IndexAny(s, "?/"); i != -1 {
		s = s[:i]
	}
	if s == "" {
		return "", fmt.Errorf("invalid playlist URL: %s", playlistURL)
	}
	return s, nil
}

func (c *Client) get(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("spotify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNoMatch
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode spotify response: %w", err)
	}
	return nil
}

func metadataFromTrack(t *track) *domain.Metadata {
	m := &domain.Metadata{
		Title: t.Name,
		Album: t.Album.Name,
	}
	if len(t.Artists) > 0 {
		m.Artist = t.Artists[0].Name
	}
	if len(t.Album.Images) > 0 {
		m.Thumbnail = t.Album.Images[0].URL
	}
	return m
}
