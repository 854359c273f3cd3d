package domain

import "testing"

func TestStatusTerminal(t *testing.T) {
	cases := []struct {
		status JobStatus
		want   bool
	}{
		{JobStatusPending, false},
		{JobStatusDownloading, false},
		{JobStatusCompleted, true},
		{JobStatusFailed, true},
	}
	for _, c := range cases {
		if got := c.status.Terminal(); got != c.want {
			t.Errorf("%s.Terminal() = %v, expected %v", c.status, got, c.want)
		}
	}
}

func TestDownloadName(t *testing.T) {
	j := &Job{Title: "Song", Artist: "Artist", Format: "mp3"}
	if got := j.DownloadName(); got != "Song - Artist.mp3" {
		t.Errorf("Unexpected download name: %s", got)
	}
}

func TestMetadataValid(t *testing.T) {
	if (&Metadata{Title: "x", SourceURL: "y"}).Valid() != true {
		t.Error("Expected valid")
	}
	if (&Metadata{Title: "x"}).Valid() {
		t.Error("Expected invalid without locator")
	}
	if (&Metadata{SourceURL: "y"}).Valid() {
		t.Error("Expected invalid without title")
	}
	var m *Metadata
	if m.Valid() {
		t.Error("Expected nil metadata invalid")
	}
}
