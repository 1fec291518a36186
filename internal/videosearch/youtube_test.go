package videosearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestYouTubeClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "python tutorial" {
			t.Errorf("query: got %q", q.Get("q"))
		}
		if q.Get("maxResults") != "20" {
			t.Errorf("maxResults: got %q", q.Get("maxResults"))
		}
		if q.Get("key") != "test-key" {
			t.Errorf("key: got %q", q.Get("key"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{
					"id": {"videoId": "abc123"},
					"snippet": {
						"title": "Python Tutorial",
						"description": "learn python",
						"channelTitle": "PyChannel",
						"publishedAt": "2024-01-15T00:00:00Z",
						"thumbnails": {"high": {"url": "http://img/abc.jpg"}}
					}
				},
				{
					"id": {},
					"snippet": {"title": "not a video"}
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewYouTubeClient("test-key", srv.URL)
	candidates, err := client.Search(context.Background(), "python tutorial", 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidates: got %d (items without a videoId must be skipped)", len(candidates))
	}
	c := candidates[0]
	if c.VideoID != "abc123" || c.Title != "Python Tutorial" || c.ChannelName != "PyChannel" {
		t.Errorf("candidate: got %+v", c)
	}
	if c.ThumbnailURL != "http://img/abc.jpg" {
		t.Errorf("thumbnail: got %q", c.ThumbnailURL)
	}
}

func TestYouTubeClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": 403, "message": "quota exceeded"}}`))
	}))
	defer srv.Close()

	client := NewYouTubeClient("k", srv.URL)
	if _, err := client.Search(context.Background(), "anything", 5); err == nil {
		t.Error("expected error for API failure")
	}
}

func TestYouTubeClientUnreachable(t *testing.T) {
	client := NewYouTubeClient("k", "http://127.0.0.1:1")
	if _, err := client.Search(context.Background(), "anything", 5); err == nil {
		t.Error("expected error for unreachable server")
	}
}
