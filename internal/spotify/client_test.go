package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cesargomez89/axiolite/internal/domain"
	"github.com/cesargomez89/axiolite/internal/httpclient"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{
		BaseURL: srv.URL,
		HTTP:    httpclient.NewClient(srv.Client(), 0),
	}
}

func TestSearchTrack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "artist song" {
			t.Errorf("Unexpected query %q", got)
		}
		if got := r.URL.Query().Get("type"); got != "track" {
			t.Errorf("Unexpected type %q", got)
		}
		fmt.Fprint(w, `{
			"tracks": {
				"items": [{
					"name": "Song",
					"artists": [{"name": "Artist"}],
					"album": {
						"name": "Album",
						"images": [{"url": "https://img.example/a.jpg"}]
					}
				}]
			}
		}`)
	}))
	defer srv.Close()

	meta, err := testClient(srv).SearchTrack(context.Background(), "artist song")
	if err != nil {
		t.Fatalf("SearchTrack failed: %v", err)
	}
	if meta.Title != "Song" || meta.Artist != "Artist" || meta.Album != "Album" {
		t.Errorf("Unexpected metadata: %+v", meta)
	}
	if meta.Thumbnail != "https://img.example/a.jpg" {
		t.Errorf("Unexpected thumbnail: %s", meta.Thumbnail)
	}
	if meta.SourceURL != "" {
		t.Errorf("Spotify must not set a locator, got %s", meta.SourceURL)
	}
}

func TestSearchTrackNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tracks": {"items": []}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv).SearchTrack(context.Background(), "nothing")
	if !errors.Is(err, domain.ErrNoMatch) {
		t.Errorf("Expected ErrNoMatch, got %v", err)
	}
}

func TestSearchTrackServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv).SearchTrack(context.Background(), "q")
	if err == nil || errors.Is(err, domain.ErrNoMatch) {
		t.Errorf("Expected transport error, got %v", err)
	}
}

func TestPlaylistTracksPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playlists/pl123/tracks" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		switch r.URL.Query().Get("offset") {
		case "0":
			fmt.Fprintf(w, `{
				"items": [
					{"track": {"name": "One", "artists": [{"name": "A"}], "album": {"name": "X", "images": [{"url": "https://img/x.jpg"}]}}},
					{"track": {"name": ""}}
				],
				"next": "%s/playlists/pl123/tracks?offset=100&limit=100"
			}`, srv.URL)
		case "100":
			fmt.Fprint(w, `{
				"items": [
					{"track": {"name": "Two", "artists": [{"name": "B"}], "album": {"name": "Y"}}}
				],
				"next": null
			}`)
		default:
			t.Errorf("Unexpected offset %s", r.URL.Query().Get("offset"))
		}
	}))
	defer srv.Close()

	tracks, err := testClient(srv).PlaylistTracks(context.Background(), "https://open.spotify.com/playlist/pl123?si=xyz")
	if err != nil {
		t.Fatalf("PlaylistTracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("Expected 2 tracks (unnamed skipped), got %d", len(tracks))
	}
	if tracks[0].Title != "One" || tracks[0].Artist != "A" || tracks[0].AlbumArtURL != "https://img/x.jpg" {
		t.Errorf("Unexpected first track: %+v", tracks[0])
	}
	if tracks[1].Title != "Two" || tracks[1].Album != "Y" {
		t.Errorf("Unexpected second track: %+v", tracks[1])
	}
}

func TestPlaylistTracksNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv).PlaylistTracks(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNoMatch) {
		t.Errorf("Expected ErrNoMatch, got %v", err)
	}
}

func TestParsePlaylistID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc", "37i9dQZF1DXcBWIGoYBM5M"},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
	}
	for _, c := range cases {
		got, err := ParsePlaylistID(c.in)
		if err != nil {
			t.Errorf("ParsePlaylistID(%q) failed: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParsePlaylistID(%q) = %s, expected %s", c.in, got, c.want)
		}
	}

	if _, err := ParsePlaylistID("https://open.spotify.com/playlist/"); err == nil {
		t.Error("Expected error for empty playlist id")
	}
}
