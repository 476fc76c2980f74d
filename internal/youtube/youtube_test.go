package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestVideoID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=QIFmJ1Pg73w", "QIFmJ1Pg73w"},
		{"https://youtube.com/watch?v=abc123", "abc123"},
		{"https://youtu.be/xyz789", "xyz789"},
	}
	for _, tc := range cases {
		got, err := VideoID(tc.url)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.url, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.url, tc.want, got)
		}
	}

	for _, bad := range []string{"https://vimeo.com/123", "https://www.youtube.com/playlist?list=x", "not a url ://"} {
		if _, err := VideoID(bad); err == nil {
			t.Fatalf("%q: expected an error", bad)
		}
	}
}

func newDataAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "@GeopoliticsReport" {
			fmt.Fprint(w, `{"items":[]}`)
			return
		}
		fmt.Fprint(w, `{"items":[{"id":{"channelId":"UC123"}}]}`)
	})
	mux.HandleFunc("/channels", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UU123"}}}]}`)
	})
	mux.HandleFunc("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[
			{"snippet":{"title":"Newest","publishedAt":"2024-03-14T10:00:00Z","resourceId":{"videoId":"vid1"}}},
			{"snippet":{"title":"Older","publishedAt":"2024-02-01T08:30:00Z","resourceId":{"videoId":"vid2"}}},
			{"snippet":{"title":"Broken date","publishedAt":"not-a-date","resourceId":{"videoId":"vid3"}}}
		]}`)
	})
	return httptest.NewServer(mux)
}

func TestResolveChannel(t *testing.T) {
	srv := newDataAPIServer(t)
	defer srv.Close()
	c := &Client{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()}

	id, err := c.ResolveChannel(context.Background(), "https://www.youtube.com/@GeopoliticsReport")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "UC123" {
		t.Fatalf("expected UC123, got %q", id)
	}

	if _, err := c.ResolveChannel(context.Background(), "https://www.youtube.com/@NoSuchHandle"); !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("expected ErrChannelNotFound, got %v", err)
	}
	if _, err := c.ResolveChannel(context.Background(), "https://www.youtube.com/channel/UCplain"); !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("expected ErrChannelNotFound for non-handle URL, got %v", err)
	}
}

func TestListRecentUploads(t *testing.T) {
	srv := newDataAPIServer(t)
	defer srv.Close()
	c := &Client{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()}

	uploads, err := c.ListRecentUploads(context.Background(), "UC123", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(uploads) != 2 {
		t.Fatalf("expected 2 uploads (bad date skipped), got %d", len(uploads))
	}
	if uploads[0].VideoID != "vid1" || uploads[0].URL != "https://www.youtube.com/watch?v=vid1" {
		t.Fatalf("unexpected first upload: %+v", uploads[0])
	}
	want := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	if !uploads[0].PublishedAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, uploads[0].PublishedAt)
	}
}

func TestListRecentUploads_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()
	c := &Client{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()}

	if _, err := c.ListRecentUploads(context.Background(), "UC123", 10); !errors.Is(err, ErrMetadata) {
		t.Fatalf("expected ErrMetadata, got %v", err)
	}
}

func TestTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "vid1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?><transcript>`+
			`<text start="0" dur="1.5">hello there</text>`+
			`<text start="1.5" dur="2.0">it&amp;#39;s a test</text>`+
			`<text start="3.5" dur="1.0">  </text>`+
			`</transcript>`)
	}))
	defer srv.Close()
	c := &Client{TimedTextURL: srv.URL, HTTPClient: srv.Client()}

	segments, err := c.Transcript(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %v", len(segments), segments)
	}
	if segments[0] != "hello there" {
		t.Fatalf("unexpected first segment: %q", segments[0])
	}

	if _, err := c.Transcript(context.Background(), "missing"); !errors.Is(err, ErrTranscriptUnavailable) {
		t.Fatalf("expected ErrTranscriptUnavailable, got %v", err)
	}
}
